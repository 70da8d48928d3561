package consumer

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/auction-escrow-platform-poc/internal/auction-processor/pubsub"
	skafka "github.com/radieske/auction-escrow-platform-poc/internal/shared/kafka"
	"github.com/radieske/auction-escrow-platform-poc/pkg/contracts/events"
)

type Leaderboard interface {
	RecordBid(ctx context.Context, b events.BidPlaced) error
	IncrAuctions(ctx context.Context) error
	IncrUsers(ctx context.Context) error
}

type History interface {
	InsertHistory(ctx context.Context, e events.Envelope) error
}

type Broadcaster interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

type DLQWriter = skafka.MessageWriter

// Metrics recebe os callbacks por etapa (ver shared/metrics.Processor)
type Metrics interface {
	Consumed()
	Stage(stage string)
	Error(stage string)
}

type nopMetrics struct{}

func (nopMetrics) Consumed()     {}
func (nopMetrics) Stage(string) {}
func (nopMetrics) Error(string) {}

// Processor consome auction_events do Kafka, atualiza o leaderboard no Redis,
// persiste o histórico e retransmite cada envelope para o feed ao vivo
type Processor struct {
	Log         *zap.Logger
	Reader      skafka.MessageReader
	Leaderboard Leaderboard
	History     History
	Broadcaster Broadcaster
	Channel     string
	DLQ         DLQWriter // opcional: mensagens que não desserializam
	Metrics     Metrics
}

// Run inicia o loop principal de consumo e processamento das mensagens Kafka
func (p *Processor) Run(ctx context.Context) error {
	if p.Metrics == nil {
		p.Metrics = nopMetrics{}
	}
	for {
		env, raw, err := skafka.ReadEnvelope(ctx, p.Reader)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // encerra se o contexto for cancelado
			}
			if raw != nil {
				p.Metrics.Consumed()
				p.deadLetter(ctx, raw, err)
				continue
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			p.Metrics.Error("read")
			time.Sleep(500 * time.Millisecond)
			continue
		}

		p.Metrics.Consumed()
		p.Handle(ctx, env)
	}
}

// Handle processa um envelope. Falha no leaderboard não impede a persistência,
// e falha na persistência não impede o broadcast.
func (p *Processor) Handle(ctx context.Context, env events.Envelope) {
	if p.Metrics == nil {
		p.Metrics = nopMetrics{}
	}
	log := p.Log.With(zap.String("type", env.Type), zap.Uint64("auction_id", env.AuctionID))

	if err := p.updateLeaderboard(ctx, env); err != nil {
		log.Warn("leaderboard update failed", zap.Error(err))
		p.Metrics.Error("leaderboard")
	} else {
		p.Metrics.Stage("leaderboard")
	}

	if err := p.History.InsertHistory(ctx, env); err != nil {
		log.Warn("db insert history failed", zap.Error(err))
		p.Metrics.Error("history")
	} else {
		p.Metrics.Stage("history")
	}

	msg, err := json.Marshal(pubsub.WSUpdate{AuctionID: env.AuctionID, Type: env.Type, Payload: env.Data})
	if err != nil {
		p.Metrics.Error("broadcast")
		return
	}
	bctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	if err := p.Broadcaster.Publish(bctx, p.Channel, msg); err != nil {
		log.Warn("ws broadcast publish failed", zap.Error(err))
		p.Metrics.Error("broadcast")
		return
	}
	p.Metrics.Stage("broadcast")
}

func (p *Processor) updateLeaderboard(ctx context.Context, env events.Envelope) error {
	switch env.Type {
	case events.TypeBidPlaced:
		var b events.BidPlaced
		if err := env.Decode(&b); err != nil {
			return err
		}
		return p.Leaderboard.RecordBid(ctx, b)
	case events.TypeAuctionCreated:
		return p.Leaderboard.IncrAuctions(ctx)
	case events.TypeUserRegistered:
		return p.Leaderboard.IncrUsers(ctx)
	}
	return nil
}

func (p *Processor) deadLetter(ctx context.Context, raw []byte, cause error) {
	p.Log.Warn("invalid message", zap.Error(cause))
	p.Metrics.Error("decode")
	if p.DLQ == nil {
		return
	}
	if err := skafka.WriteJSON(ctx, p.DLQ, "", raw); err != nil {
		p.Log.Error("dlq write failed", zap.Error(err))
		p.Metrics.Error("dlq")
	}
}
