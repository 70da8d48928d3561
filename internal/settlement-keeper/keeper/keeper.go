// Package keeper dispara o settlement dos leilões vencidos e repete os
// pagamentos que falharam. Na partida o schedule é carregado da API do
// auction-service; depois ele acompanha o tópico auction_events a partir do
// offset do consumer group. O settlement é feito em nome do dono de cada leilão.
package keeper

import (
	"context"
	"errors"
	"time"

	"go.uber.org/ratelimit"
	"go.uber.org/zap"

	"github.com/radieske/auction-escrow-platform-poc/internal/auction-service/engine"
	"github.com/radieske/auction-escrow-platform-poc/internal/settlement-keeper/client"
	"github.com/radieske/auction-escrow-platform-poc/internal/settlement-keeper/schedule"
	skafka "github.com/radieske/auction-escrow-platform-poc/internal/shared/kafka"
)

type AuctionAPI interface {
	Settle(ctx context.Context, auctionID uint64, caller string) error
	RetryPayout(ctx context.Context, auctionID uint64, caller string) error
	AuctionIDs(ctx context.Context, offset, limit int) ([]uint64, error)
	Auction(ctx context.Context, auctionID uint64) (engine.Auction, error)
}

const bootstrapPage = 100

type Metrics interface {
	Action(action, result string)
	Scheduled(state string, n int)
}

type nopMetrics struct{}

func (nopMetrics) Action(string, string)  {}
func (nopMetrics) Scheduled(string, int) {}

type Keeper struct {
	Log      *zap.Logger
	Reader   skafka.MessageReader
	Schedule *schedule.Schedule
	API      AuctionAPI
	Limiter  ratelimit.Limiter
	Metrics  Metrics
	Now      func() time.Time

	Interval time.Duration // período do ticker
	Backoff  time.Duration // espera após uma tentativa que falhou
}

func (k *Keeper) defaults() {
	if k.Now == nil {
		k.Now = time.Now
	}
	if k.Metrics == nil {
		k.Metrics = nopMetrics{}
	}
	if k.Limiter == nil {
		k.Limiter = ratelimit.NewUnlimited()
	}
	if k.Interval <= 0 {
		k.Interval = 5 * time.Second
	}
	if k.Backoff <= 0 {
		k.Backoff = 30 * time.Second
	}
}

// Run carrega o schedule, consome as notificações em background e roda o
// ticker até ctx terminar
func (k *Keeper) Run(ctx context.Context) error {
	k.defaults()
	for {
		err := k.Bootstrap(ctx)
		if err == nil {
			break
		}
		k.Log.Warn("bootstrap schedule", zap.Error(err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(k.Interval):
		}
	}
	go k.consume(ctx)

	t := time.NewTicker(k.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			k.Tick(ctx)
		}
	}
}

// Bootstrap inclui no schedule os leilões abertos e os encerrados com proceeds
// não pagos. Cobre o que foi publicado antes do offset commitado do consumer.
func (k *Keeper) Bootstrap(ctx context.Context) error {
	k.defaults()
	tracked := 0
	for offset := 0; ; offset += bootstrapPage {
		ids, err := k.API.AuctionIDs(ctx, offset, bootstrapPage)
		if err != nil {
			return err
		}
		for _, id := range ids {
			k.Limiter.Take()
			a, err := k.API.Auction(ctx, id)
			if err != nil {
				return err
			}
			e := schedule.Entry{AuctionID: a.ID, Owner: a.Owner, EndTime: a.EndTime}
			switch {
			case !a.Ended():
			case a.PendingProceeds() > 0:
				e.State = schedule.Unpaid
			default:
				continue
			}
			k.Schedule.Track(e)
			tracked++
		}
		if len(ids) < bootstrapPage {
			break
		}
	}
	k.Log.Info("schedule bootstrapped", zap.Int("tracked", tracked))
	return nil
}

func (k *Keeper) consume(ctx context.Context) {
	for {
		env, _, err := skafka.ReadEnvelope(ctx, k.Reader)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			k.Log.Warn("kafka read", zap.Error(err))
			time.Sleep(500 * time.Millisecond)
			continue
		}
		if err := k.Schedule.Apply(env); err != nil {
			k.Log.Warn("invalid notification", zap.String("type", env.Type), zap.Error(err))
		}
	}
}

// Tick trata todas as entradas vencidas do schedule
func (k *Keeper) Tick(ctx context.Context) {
	k.defaults()
	for _, e := range k.Schedule.Due(k.Now()) {
		if ctx.Err() != nil {
			return
		}
		k.Limiter.Take()
		if e.State == schedule.Unpaid {
			k.retry(ctx, e)
		} else {
			k.settle(ctx, e)
		}
	}
	for state, n := range k.Schedule.Counts() {
		k.Metrics.Scheduled(state.String(), n)
	}
}

func (k *Keeper) settle(ctx context.Context, e schedule.Entry) {
	err := k.API.Settle(ctx, e.AuctionID, e.Owner)
	result := "success"
	switch {
	case err == nil:
		k.Schedule.Remove(e.AuctionID)
	case errors.Is(err, engine.ErrAuctionEnded):
		// encerrado por outra chamada; RetryPayout descobre se ainda há o que pagar
		result = "already_ended"
		k.Schedule.MarkUnpaid(e.AuctionID)
	case errors.Is(err, engine.ErrAuctionNotFound):
		result = "not_found"
		k.Schedule.Remove(e.AuctionID)
	case errors.Is(err, engine.ErrDeadlineNotReached):
		// a extensão ainda não chegou pelo tópico
		result = "not_due"
		k.Schedule.Defer(e.AuctionID, k.Now().Add(k.Backoff))
	case isTransferFailure(err):
		result = "transfer_failed"
		k.Schedule.MarkUnpaid(e.AuctionID)
		k.Schedule.Defer(e.AuctionID, k.Now().Add(k.Backoff))
	default:
		result = "error"
		k.Schedule.Defer(e.AuctionID, k.Now().Add(k.Backoff))
	}
	k.Metrics.Action("settle", result)
	k.logOutcome("settle", e, result, err)
}

func (k *Keeper) retry(ctx context.Context, e schedule.Entry) {
	err := k.API.RetryPayout(ctx, e.AuctionID, e.Owner)
	result := "success"
	switch {
	case err == nil:
		k.Schedule.Remove(e.AuctionID)
	case errors.Is(err, engine.ErrNothingToPay), errors.Is(err, engine.ErrAuctionNotFound):
		result = "nothing_to_pay"
		k.Schedule.Remove(e.AuctionID)
	default:
		result = "error"
		k.Schedule.Defer(e.AuctionID, k.Now().Add(k.Backoff))
	}
	k.Metrics.Action("retry_payout", result)
	k.logOutcome("retry_payout", e, result, err)
}

func (k *Keeper) logOutcome(action string, e schedule.Entry, result string, err error) {
	fields := []zap.Field{
		zap.String("action", action),
		zap.Uint64("auction_id", e.AuctionID),
		zap.String("owner", e.Owner),
		zap.String("result", result),
	}
	if err == nil {
		k.Log.Info("keeper action", fields...)
		return
	}
	k.Log.Warn("keeper action", append(fields, zap.Error(err))...)
}

func isTransferFailure(err error) bool {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind == "transfer_failed"
	}
	return errors.Is(err, engine.ErrTransferFailed)
}
