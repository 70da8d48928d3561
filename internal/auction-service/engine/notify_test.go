package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/auction-escrow-platform-poc/internal/auction-service/registry"
	"github.com/radieske/auction-escrow-platform-poc/pkg/contracts/events"
)

func TestNotifierFailureNeverFailsOperation(t *testing.T) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	transfer := NewMockTransferer(ctrl)
	notifier := NewMockNotifier(ctrl)
	clock := &fakeClock{now: t0}
	eng := New(zap.NewNop(), registry.New("platform"), transfer, notifier, Config{Now: clock.Now})
	ctx := context.Background()

	notifier.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("kafka down")).AnyTimes()

	require.NoError(t, eng.Register(ctx, "owner"))
	require.NoError(t, eng.Register(ctx, "a"))
	id, err := eng.CreateAuction(ctx, "owner", "n", "d", time.Hour, 0)
	require.NoError(t, err)
	_, err = eng.PlaceBid(ctx, id, "a", 300)
	require.NoError(t, err)

	clock.Advance(time.Hour)
	transfer.EXPECT().Transfer(gomock.Any(), "owner", int64(300), gomock.Any()).Return(nil)
	require.NoError(t, eng.Settle(ctx, id, "owner"))
}

func TestBidPlacedNotificationPayload(t *testing.T) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	notifier := NewMockNotifier(ctrl)
	clock := &fakeClock{now: t0}
	eng := New(zap.NewNop(), registry.New("platform"), NewMockTransferer(ctrl), notifier, Config{Now: clock.Now})
	ctx := context.Background()

	var got []events.Envelope
	notifier.EXPECT().Publish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, env events.Envelope) error {
			got = append(got, env)
			return nil
		}).AnyTimes()

	require.NoError(t, eng.Register(ctx, "a"))
	id, err := eng.CreateAuction(ctx, "a", "n", "d", time.Hour, 0)
	require.NoError(t, err)
	_, err = eng.PlaceBid(ctx, id, "a", 40)
	require.NoError(t, err)
	_, err = eng.PlaceBid(ctx, id, "a", 45)
	require.NoError(t, err)

	last := got[len(got)-1]
	assert.Equal(t, events.TypeBidPlaced, last.Type)
	assert.Equal(t, "1", last.Key)
	assert.Equal(t, t0.UnixMilli(), last.TsUnixMs)

	var placed events.BidPlaced
	require.NoError(t, last.Decode(&placed))
	assert.Equal(t, events.BidPlaced{
		AuctionID:   id,
		Bidder:      "a",
		Amount:      45,
		BidderTotal: 85,
		EndTime:     t0.Add(time.Hour),
		Leader:      true,
	}, placed)
}

func TestRegistryConsultedOnEveryBid(t *testing.T) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	reg := NewMockRegistry(ctrl)
	eng := New(zap.NewNop(), reg, NewMockTransferer(ctrl), nil, Config{Now: func() time.Time { return t0 }})
	ctx := context.Background()

	reg.EXPECT().Register("a").Return(nil)
	reg.EXPECT().IsRegistered("a").Return(true).Times(2)
	require.NoError(t, eng.Register(ctx, "a"))
	id, err := eng.CreateAuction(ctx, "a", "n", "d", time.Hour, 0)
	require.NoError(t, err)
	_, err = eng.PlaceBid(ctx, id, "a", 1)
	require.NoError(t, err)

	// registro revogado externamente
	reg.EXPECT().IsRegistered("a").Return(false)
	_, err = eng.PlaceBid(ctx, id, "a", 2)
	assert.ErrorIs(t, err, ErrNotRegistered)
}

func TestBidPlacedCarriesLeaderFlag(t *testing.T) {
	h := newHarness(t, "owner", "a", "b")
	x := h.auction(t, "owner", time.Hour, 0)
	y := h.auction(t, "owner", time.Hour, 0)

	h.bid(t, x, "a", 100)
	h.bid(t, y, "b", 30) // b fica atrás de a no gasto acumulado
	h.bid(t, y, "b", 90) // 120 > 100: b passa a liderar

	var leaders []bool
	for _, env := range h.notes.envs {
		if env.Type != events.TypeBidPlaced {
			continue
		}
		var b events.BidPlaced
		require.NoError(t, env.Decode(&b))
		leaders = append(leaders, b.Leader)
	}
	assert.Equal(t, []bool{true, false, true}, leaders)

	st, ok := h.eng.Standing("b")
	require.True(t, ok)
	assert.Equal(t, int64(1), st.Leads)
}
