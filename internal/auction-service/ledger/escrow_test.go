package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscrow_CreditDebit(t *testing.T) {
	e := NewEscrow()

	require.NoError(t, e.Credit(1, "alice", 150))
	require.NoError(t, e.Credit(1, "alice", 50))
	require.NoError(t, e.Credit(2, "bob", 70))

	assert.Equal(t, int64(200), e.Balance(1, "alice"))
	assert.Equal(t, int64(0), e.Balance(1, "bob"))
	assert.Equal(t, int64(270), e.Outstanding())

	assert.Equal(t, int64(200), e.Debit(1, "alice"))
	assert.Equal(t, int64(0), e.Balance(1, "alice"))
	assert.Equal(t, int64(0), e.Debit(1, "alice"))
	assert.Equal(t, int64(70), e.Outstanding())
}

func TestEscrow_RejectsNonPositiveCredit(t *testing.T) {
	e := NewEscrow()

	assert.ErrorIs(t, e.Credit(1, "alice", 0), ErrInvalidAmount)
	assert.ErrorIs(t, e.Credit(1, "alice", -5), ErrInvalidAmount)
	assert.Equal(t, int64(0), e.Outstanding())
}

func TestEscrow_HoldersIsACopy(t *testing.T) {
	e := NewEscrow()
	require.NoError(t, e.Credit(3, "carol", 10))

	h := e.Holders(3)
	h["carol"] = 999

	assert.Equal(t, int64(10), e.Balance(3, "carol"))
	assert.Empty(t, e.Holders(42))
}

func TestEscrow_WithdrawalKeepsSeqUntilCompleted(t *testing.T) {
	e := NewEscrow()
	require.NoError(t, e.Credit(1, "alice", 150))

	w, ok := e.BeginWithdrawal(1, "alice")
	require.True(t, ok)
	assert.Equal(t, Withdrawal{Seq: 1, Amount: 150}, w)
	assert.Equal(t, int64(0), e.Balance(1, "alice"))

	// falha: valor volta ao saldo e um crédito novo se soma a ele
	require.NoError(t, e.FailWithdrawal(1, "alice", w))
	require.NoError(t, e.Credit(1, "alice", 250))
	assert.Equal(t, int64(400), e.Balance(1, "alice"))

	// a repetição usa a mesma seq e o mesmo valor
	again, ok := e.BeginWithdrawal(1, "alice")
	require.True(t, ok)
	assert.Equal(t, w, again)
	assert.Equal(t, int64(250), e.Balance(1, "alice"))
	e.CompleteWithdrawal(1, "alice")

	next, ok := e.BeginWithdrawal(1, "alice")
	require.True(t, ok)
	assert.Equal(t, Withdrawal{Seq: 2, Amount: 250}, next)
	e.CompleteWithdrawal(1, "alice")

	_, ok = e.BeginWithdrawal(1, "alice")
	assert.False(t, ok)
	assert.Equal(t, int64(0), e.Outstanding())
}
