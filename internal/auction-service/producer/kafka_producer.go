package producer

import (
	"context"
	"encoding/json"
	"time"

	skafka "github.com/radieske/auction-escrow-platform-poc/internal/shared/kafka"
	"github.com/radieske/auction-escrow-platform-poc/pkg/contracts/events"
)

type MessageWriter = skafka.MessageWriter

// KafkaPublisher publica as notificações do engine no tópico de eventos de leilão.
// Implementa engine.Notifier.
type KafkaPublisher struct {
	Writer  MessageWriter
	Topic   string
	Timeout time.Duration
}

func NewKafkaPublisher(w MessageWriter, topic string) *KafkaPublisher {
	return &KafkaPublisher{Writer: w, Topic: topic, Timeout: 3 * time.Second}
}

// Publish usa env.Key como chave da mensagem para manter a ordem por leilão.
// O contexto da requisição não cancela a publicação: a operação já foi aplicada.
func (p *KafkaPublisher) Publish(ctx context.Context, env events.Envelope) error {
	b, err := json.Marshal(env)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.Timeout)
	defer cancel()

	return skafka.WriteJSON(ctx, p.Writer, env.Key, b)
}
