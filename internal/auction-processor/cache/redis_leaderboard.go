package cache

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/auction-escrow-platform-poc/pkg/contracts/events"
	"github.com/radieske/auction-escrow-platform-poc/pkg/contracts/keys"
)

// RedisLeaderboard espelha o ranking e as estatísticas globais no Redis
type RedisLeaderboard struct {
	Client *redis.Client
}

func NewRedisLeaderboard(c *redis.Client) *RedisLeaderboard {
	return &RedisLeaderboard{Client: c}
}

// setHighest troca o maior lance só quando o novo valor é estritamente maior
var setHighest = redis.NewScript(`
local cur = tonumber(redis.call('HGET', KEYS[1], ARGV[1]) or '0')
if tonumber(ARGV[3]) > cur then
  redis.call('HSET', KEYS[1], ARGV[1], ARGV[3], ARGV[2], ARGV[4])
  return 1
end
return 0
`)

// RecordBid aplica um bid_placed: score de gasto acumulado, lideranças e agregados.
// O bidder entra no ZSET de lideranças mesmo com zero, como no ranking do engine.
func (r *RedisLeaderboard) RecordBid(ctx context.Context, b events.BidPlaced) error {
	var lead float64
	if b.Leader {
		lead = 1
	}
	_, err := r.Client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.ZAdd(ctx, keys.LeaderboardSpend, redis.Z{Score: float64(b.BidderTotal), Member: b.Bidder})
		p.ZIncrBy(ctx, keys.LeaderboardBids, lead, b.Bidder)
		p.HIncrBy(ctx, keys.Stats, keys.FieldTotalBids, 1)
		p.HIncrBy(ctx, keys.Stats, keys.FieldTotalValueBid, b.Amount)
		return nil
	})
	if err != nil {
		return err
	}
	return setHighest.Run(ctx, r.Client, []string{keys.Stats},
		keys.FieldHighestBid, keys.FieldHighestBidder, b.Amount, b.Bidder).Err()
}

func (r *RedisLeaderboard) IncrAuctions(ctx context.Context) error {
	return r.Client.HIncrBy(ctx, keys.Stats, keys.FieldTotalAuctions, 1).Err()
}

func (r *RedisLeaderboard) IncrUsers(ctx context.Context) error {
	return r.Client.HIncrBy(ctx, keys.Stats, keys.FieldTotalUsers, 1).Err()
}
