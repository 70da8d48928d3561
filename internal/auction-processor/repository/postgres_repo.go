package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/radieske/auction-escrow-platform-poc/pkg/contracts/events"
)

// PostgresRepo persiste o histórico de notificações de leilão
type PostgresRepo struct {
	DB *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{DB: db}
}

// InsertHistory grava o envelope completo em auction_event_history
func (r *PostgresRepo) InsertHistory(ctx context.Context, e events.Envelope) error {
	const q = `
		INSERT INTO auction_event_history
		  (auction_id, event_type, event_key, payload, occurred_at)
		VALUES
		  ($1,$2,$3,$4,$5)
	`
	_, err := r.DB.ExecContext(ctx, q,
		int64(e.AuctionID), e.Type, e.Key, string(e.Data), time.UnixMilli(e.TsUnixMs).UTC(),
	)
	return err
}
