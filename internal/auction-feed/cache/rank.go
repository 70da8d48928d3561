package cache

import (
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/auction-escrow-platform-poc/internal/auction-feed/dto"
)

// rank ordena por score desc e identidade asc (o ZREVRANGE do Redis desempata
// em ordem lexicográfica reversa) e corta em limit (<= 0: todos)
func rank(zs []redis.Z, limit int) []dto.LeaderboardEntry {
	out := make([]dto.LeaderboardEntry, 0, len(zs))
	for _, z := range zs {
		id, _ := z.Member.(string)
		out = append(out, dto.LeaderboardEntry{Identity: id, Score: int64(z.Score)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Identity < out[j].Identity
	})
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}
