package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/auction-escrow-platform-poc/pkg/contracts/events"
)

func TestBrokers(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, Brokers("a:9092, b:9092,"))
	assert.Empty(t, Brokers(""))
}

type sliceReader struct{ msgs []kafka.Message }

func (s *sliceReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(s.msgs) == 0 {
		return kafka.Message{}, context.Canceled
	}
	m := s.msgs[0]
	s.msgs = s.msgs[1:]
	return m, nil
}

func TestReadEnvelope(t *testing.T) {
	env, err := events.New(events.TypeBidPlaced, 3, "bob", events.BidPlaced{AuctionID: 3, Bidder: "bob", Amount: 10}, time.Now())
	require.NoError(t, err)
	good, err := json.Marshal(env)
	require.NoError(t, err)

	r := &sliceReader{msgs: []kafka.Message{{Value: good}, {Value: []byte("{not json")}}}

	got, raw, err := ReadEnvelope(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, "3", got.Key)
	assert.Equal(t, good, raw)

	_, raw, err = ReadEnvelope(context.Background(), r)
	require.Error(t, err)
	assert.Equal(t, []byte("{not json"), raw)

	_, raw, err = ReadEnvelope(context.Background(), r)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, raw)
}

type sliceWriter struct{ msgs []kafka.Message }

func (s *sliceWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	s.msgs = append(s.msgs, msgs...)
	return nil
}

func TestWriteJSON(t *testing.T) {
	w := &sliceWriter{}
	require.NoError(t, WriteJSON(context.Background(), w, "auction-1", []byte(`{"a":1}`)))
	require.NoError(t, WriteJSON(context.Background(), w, "", []byte(`{"b":2}`)))

	require.Len(t, w.msgs, 2)
	assert.Equal(t, []byte("auction-1"), w.msgs[0].Key)
	assert.JSONEq(t, `{"a":1}`, string(w.msgs[0].Value))
	assert.Nil(t, w.msgs[1].Key)
	assert.False(t, w.msgs[1].Time.IsZero())
}
