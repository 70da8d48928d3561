package repo

import (
	"context"
	"database/sql"

	"github.com/radieske/auction-escrow-platform-poc/internal/auction-feed/dto"
)

type ReadRepo struct {
	DB *sql.DB
}

// History retorna as notificações de um leilão em ordem cronológica
func (r *ReadRepo) History(ctx context.Context, auctionID uint64, limit int) ([]dto.HistoryEntry, error) {
	const q = `
		SELECT event_type, event_key, payload, occurred_at
		FROM auction_event_history
		WHERE auction_id = $1
		ORDER BY occurred_at, id
		LIMIT $2;
	`
	rows, err := r.DB.QueryContext(ctx, q, int64(auctionID), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []dto.HistoryEntry{}
	for rows.Next() {
		var h dto.HistoryEntry
		var payload []byte
		if err := rows.Scan(&h.Type, &h.Key, &payload, &h.OccurredAt); err != nil {
			return nil, err
		}
		h.Payload = payload
		out = append(out, h)
	}
	return out, rows.Err()
}
