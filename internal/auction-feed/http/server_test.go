package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/auction-escrow-platform-poc/internal/auction-feed/cache"
	"github.com/radieske/auction-escrow-platform-poc/internal/auction-feed/dto"
)

type fakeBoard struct {
	gotBy    string
	gotLimit int
}

func (f *fakeBoard) Leaderboard(_ context.Context, by string, limit int) ([]dto.LeaderboardEntry, error) {
	f.gotBy, f.gotLimit = by, limit
	if by == "nope" {
		return nil, fmt.Errorf("%w: %q", cache.ErrUnknownBoard, by)
	}
	return []dto.LeaderboardEntry{{Rank: 1, Identity: "carol", Score: 200}}, nil
}

func (f *fakeBoard) Stats(context.Context) (dto.Stats, error) {
	return dto.Stats{TotalBids: 2, TotalValueBid: 350, AverageBid: 175}, nil
}

type fakeHistory struct {
	calls int
	rows  []dto.HistoryEntry
}

func (f *fakeHistory) History(context.Context, uint64, int) ([]dto.HistoryEntry, error) {
	f.calls++
	return f.rows, nil
}

type mapCache struct{ m map[uint64][]byte }

func (c *mapCache) GetHistory(_ context.Context, id uint64, dst any) (bool, error) {
	b, ok := c.m[id]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *mapCache) SetHistory(_ context.Context, id uint64, v any, _ time.Duration) error {
	b, err := json.Marshal(v)
	c.m[id] = b
	return err
}

func newAPI() (*API, *fakeBoard, *fakeHistory) {
	board := &fakeBoard{}
	hist := &fakeHistory{rows: []dto.HistoryEntry{{
		Type:       "bid_placed",
		Key:        "1",
		Payload:    json.RawMessage(`{"amount":150}`),
		OccurredAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}}}
	return &API{
		Log:          zap.NewNop(),
		Board:        board,
		History:      hist,
		HistoryCache: &mapCache{m: map[uint64][]byte{}},
	}, board, hist
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestLeaderboardParams(t *testing.T) {
	api, board, _ := newAPI()
	h := api.Router()

	rec := get(h, "/v1/leaderboard?by=bids&limit=3")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "bids", board.gotBy)
	assert.Equal(t, 3, board.gotLimit)

	rec = get(h, "/v1/leaderboard")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10, board.gotLimit)

	assert.Equal(t, http.StatusBadRequest, get(h, "/v1/leaderboard?by=nope").Code)
	assert.Equal(t, http.StatusBadRequest, get(h, "/v1/leaderboard?limit=x").Code)
}

func TestStats(t *testing.T) {
	api, _, _ := newAPI()
	rec := get(api.Router(), "/v1/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	var s dto.Stats
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&s))
	assert.Equal(t, int64(175), s.AverageBid)
}

func TestHistoryIsCached(t *testing.T) {
	api, _, hist := newAPI()
	h := api.Router()

	require.Equal(t, http.StatusOK, get(h, "/v1/auctions/1/history").Code)
	rec := get(h, "/v1/auctions/1/history")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, hist.calls)

	var rows []dto.HistoryEntry
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "bid_placed", rows[0].Type)
	assert.JSONEq(t, `{"amount":150}`, string(rows[0].Payload))
}

func TestHistoryErrors(t *testing.T) {
	api, _, hist := newAPI()
	hist.rows = nil
	h := api.Router()

	assert.Equal(t, http.StatusBadRequest, get(h, "/v1/auctions/x/history").Code)
	assert.Equal(t, http.StatusNotFound, get(h, "/v1/auctions/2/history").Code)
}
