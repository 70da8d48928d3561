package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/radieske/auction-escrow-platform-poc/pkg/contracts/events"
)

type Writer = kafka.Writer

// MessageWriter é o lado de escrita do *kafka.Writer
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// MessageReader é o lado de leitura do *kafka.Reader
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// Brokers converte "a:9092,b:9092" na lista usada pelo kafka-go
func Brokers(csv string) []string {
	var out []string
	for _, b := range strings.Split(csv, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

func NewWriter(brokers string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(Brokers(brokers)...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{}, // mesma chave (auction id) -> mesma partição
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           10 * time.Second,
	}
}

func NewReader(brokers string, topic string, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        Brokers(brokers),
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
	})
}

// helper pra enviar mensagem simples; key vazia vai sem chave
func WriteJSON(ctx context.Context, w MessageWriter, key string, payload []byte) error {
	msg := kafka.Message{
		Value: payload,
		Time:  time.Now(),
	}
	if key != "" {
		msg.Key = []byte(key)
	}

	return w.WriteMessages(ctx, msg)
}

// ReadEnvelope lê a próxima mensagem e desserializa como events.Envelope.
// Mensagens inválidas retornam erro junto com o valor cru (para DLQ).
func ReadEnvelope(ctx context.Context, r MessageReader) (events.Envelope, []byte, error) {
	m, err := r.ReadMessage(ctx)
	if err != nil {
		return events.Envelope{}, nil, fmt.Errorf("read kafka message: %w", err)
	}
	var env events.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return events.Envelope{}, m.Value, fmt.Errorf("decode envelope: %w", err)
	}
	return env, m.Value, nil
}
