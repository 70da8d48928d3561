package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/auction-escrow-platform-poc/internal/auction-feed/dto"
	"github.com/radieske/auction-escrow-platform-poc/pkg/contracts/keys"
)

// ErrUnknownBoard é retornado para um ranking diferente de spend/bids
var ErrUnknownBoard = errors.New("unknown leaderboard")

type Cache struct{ R *redis.Client }

func New(r *redis.Client) *Cache { return &Cache{R: r} }

func keyHistory(auctionID uint64) string { return "auction:history:" + strconv.FormatUint(auctionID, 10) }

func (c *Cache) GetHistory(ctx context.Context, auctionID uint64, dst any) (bool, error) {
	b, err := c.R.Get(ctx, keyHistory(auctionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(b, dst)
}

func (c *Cache) SetHistory(ctx context.Context, auctionID uint64, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.R.Set(ctx, keyHistory(auctionID), b, ttl).Err()
}

// Leaderboard lê o top-n do ranking "spend" ou "bids" (lideranças, como Standing.Leads).
// Empate de score: identidade em ordem crescente.
func (c *Cache) Leaderboard(ctx context.Context, by string, limit int) ([]dto.LeaderboardEntry, error) {
	var key string
	switch by {
	case "", "spend":
		key = keys.LeaderboardSpend
	case "bids":
		key = keys.LeaderboardBids
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBoard, by)
	}

	zs, err := c.R.ZRangeArgsWithScores(ctx, redis.ZRangeArgs{
		Key:   key,
		Start: 0,
		Stop:  -1,
		Rev:   true,
	}).Result()
	if err != nil {
		return nil, err
	}
	return rank(zs, limit), nil
}

// Stats lê o hash de agregados; média derivada por divisão inteira
func (c *Cache) Stats(ctx context.Context) (dto.Stats, error) {
	h, err := c.R.HGetAll(ctx, keys.Stats).Result()
	if err != nil {
		return dto.Stats{}, err
	}
	num := func(field string) int64 {
		v, _ := strconv.ParseInt(h[field], 10, 64)
		return v
	}
	s := dto.Stats{
		TotalAuctions: num(keys.FieldTotalAuctions),
		TotalUsers:    num(keys.FieldTotalUsers),
		TotalBids:     num(keys.FieldTotalBids),
		TotalValueBid: num(keys.FieldTotalValueBid),
		HighestBid:    num(keys.FieldHighestBid),
		HighestBidder: h[keys.FieldHighestBidder],
	}
	if s.TotalBids > 0 {
		s.AverageBid = s.TotalValueBid / s.TotalBids
	}
	return s, nil
}
