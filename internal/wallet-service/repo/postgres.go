package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

// Postgres implementa operações de carteira em banco
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotFound          = errors.New("not found")
	ErrHoldClosed        = errors.New("hold already closed")
)

// Status de um hold: HELD -> CAPTURED | RELEASED
const (
	HoldHeld     = "HELD"
	HoldCaptured = "CAPTURED"
	HoldReleased = "RELEASED"
)

// GetOrCreateWallet retorna o walletId e saldo de um usuário, criando a carteira se não existir
func (p *Postgres) GetOrCreateWallet(ctx context.Context, userID string) (walletID string, balance int64, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", 0, err
	}
	defer tx.Rollback()

	if walletID, err = lockWallet(ctx, tx, userID, true); err != nil {
		return "", 0, err
	}
	if err = tx.QueryRowContext(ctx, `SELECT balance_cents FROM wallets WHERE id=$1`, walletID).Scan(&balance); err != nil {
		return "", 0, err
	}
	if err = tx.Commit(); err != nil {
		return "", 0, err
	}
	return walletID, balance, nil
}

// Deposit incrementa o saldo da carteira e registra a operação no ledger
func (p *Postgres) Deposit(ctx context.Context, userID string, amount int64, externalRef string) (walletID string, newBalance int64, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", 0, err
	}
	defer tx.Rollback()

	if walletID, err = lockWallet(ctx, tx, userID, true); err != nil {
		return "", 0, err
	}
	if newBalance, err = credit(ctx, tx, walletID, amount, "CREDIT", "deposit:"+externalRef); err != nil {
		return "", 0, err
	}
	if err = tx.Commit(); err != nil {
		return "", 0, err
	}
	return walletID, newBalance, nil
}

// Hold bloqueia amount (debita o saldo disponível) sob externalRef.
// Idempotente por (wallet_id, external_ref): repetir devolve o hold existente.
func (p *Postgres) Hold(ctx context.Context, userID string, amount int64, externalRef string) (holdID string, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	walletID, err := lockWallet(ctx, tx, userID, true)
	if err != nil {
		return "", err
	}

	err = tx.QueryRowContext(ctx, `SELECT id FROM wallet_holds WHERE wallet_id=$1 AND external_ref=$2`, walletID, externalRef).Scan(&holdID)
	if err == nil {
		return holdID, nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}

	var balance int64
	if err = tx.QueryRowContext(ctx, `SELECT balance_cents FROM wallets WHERE id=$1`, walletID).Scan(&balance); err != nil {
		return "", err
	}
	if balance < amount {
		return "", ErrInsufficientFunds
	}

	if _, err = tx.ExecContext(ctx, `UPDATE wallets SET balance_cents = balance_cents - $1, version = version + 1 WHERE id=$2`, amount, walletID); err != nil {
		return "", err
	}

	holdID = uuid.New().String()
	if _, err = tx.ExecContext(ctx, `INSERT INTO wallet_holds(id, wallet_id, external_ref, amount_cents, status) VALUES($1,$2,$3,$4,$5)`,
		holdID, walletID, externalRef, amount, HoldHeld); err != nil {
		return "", err
	}
	if err = journal(ctx, tx, walletID, "HOLD", amount, "hold:"+externalRef); err != nil {
		return "", err
	}

	if err = tx.Commit(); err != nil {
		return "", err
	}
	return holdID, nil
}

// Capture consome um hold HELD. Repetir sobre um hold já capturado é no-op.
func (p *Postgres) Capture(ctx context.Context, userID, externalRef string) error {
	return p.closeHold(ctx, userID, externalRef, HoldCaptured)
}

// Release devolve ao saldo um hold HELD. Repetir sobre um hold já liberado é no-op.
func (p *Postgres) Release(ctx context.Context, userID, externalRef string) error {
	return p.closeHold(ctx, userID, externalRef, HoldReleased)
}

func (p *Postgres) closeHold(ctx context.Context, userID, externalRef, to string) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var walletID, holdID, status string
	var amount int64
	err = tx.QueryRowContext(ctx, `
		SELECT wh.id, wh.wallet_id, wh.amount_cents, wh.status
		FROM wallet_holds wh
		JOIN wallets w ON w.id = wh.wallet_id
		WHERE w.user_id=$1 AND wh.external_ref=$2
		FOR UPDATE`, userID, externalRef).Scan(&holdID, &walletID, &amount, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	} else if err != nil {
		return err
	}

	switch status {
	case to:
		return nil
	case HoldHeld:
	default:
		return ErrHoldClosed
	}

	if _, err = tx.ExecContext(ctx, `UPDATE wallet_holds SET status=$1, updated_at=NOW() WHERE id=$2`, to, holdID); err != nil {
		return err
	}

	if to == HoldReleased {
		if _, err = credit(ctx, tx, walletID, amount, "RELEASE", "release:"+externalRef); err != nil {
			return err
		}
	} else if err = journal(ctx, tx, walletID, "DEBIT", amount, "capture:"+externalRef); err != nil {
		return err
	}

	return tx.Commit()
}

// Payout credita amount na carteira de userID (criando-a se preciso).
// Idempotente por (wallet_id, external_ref): o mesmo ref nunca credita duas vezes.
func (p *Postgres) Payout(ctx context.Context, userID string, amount int64, externalRef string) (newBalance int64, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	walletID, err := lockWallet(ctx, tx, userID, true)
	if err != nil {
		return 0, err
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO wallet_payouts(id, wallet_id, external_ref, amount_cents) VALUES($1,$2,$3,$4)
		ON CONFLICT (wallet_id, external_ref) DO NOTHING`,
		uuid.New().String(), walletID, externalRef, amount)
	if err != nil {
		return 0, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		err = tx.QueryRowContext(ctx, `SELECT balance_cents FROM wallets WHERE id=$1`, walletID).Scan(&newBalance)
		return newBalance, err
	}

	if newBalance, err = credit(ctx, tx, walletID, amount, "PAYOUT", "payout:"+externalRef); err != nil {
		return 0, err
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return newBalance, nil
}

// lockWallet trava a linha da carteira (lock pessimista); create=true cria se não existir
func lockWallet(ctx context.Context, tx *sql.Tx, userID string, create bool) (string, error) {
	if create {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO wallets(id, user_id, balance_cents, version) VALUES($1,$2,0,1) ON CONFLICT (user_id) DO NOTHING`,
			uuid.New().String(), userID); err != nil {
			return "", err
		}
	}
	var id string
	err := tx.QueryRowContext(ctx, `SELECT id FROM wallets WHERE user_id=$1 FOR UPDATE`, userID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return id, err
}

func credit(ctx context.Context, tx *sql.Tx, walletID string, amount int64, op, desc string) (int64, error) {
	var bal int64
	if err := tx.QueryRowContext(ctx,
		`UPDATE wallets SET balance_cents = balance_cents + $1, version = version + 1 WHERE id=$2 RETURNING balance_cents`,
		amount, walletID).Scan(&bal); err != nil {
		return 0, err
	}
	return bal, journal(ctx, tx, walletID, op, amount, desc)
}

func journal(ctx context.Context, tx *sql.Tx, walletID, op string, amount int64, desc string) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO wallet_ledger(wallet_id, operation_type, amount_cents, description) VALUES($1,$2,$3,$4)`,
		walletID, op, amount, desc)
	return err
}
