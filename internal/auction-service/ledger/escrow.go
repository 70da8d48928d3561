// Package ledger guarda os valores devidos a bidders superados (escrow).
//
// O mapa auction id -> identidade -> valor só é alterado por Credit e Debit;
// nenhuma referência mutável sai do pacote.
package ledger

import "errors"

var ErrInvalidAmount = errors.New("escrow amount must be positive")

// Escrow é o livro de reembolsos por leilão.
// Não é thread-safe: o engine serializa o acesso.
type Escrow struct {
	balances    map[uint64]map[string]int64
	outstanding int64

	// saques em andamento ou com resultado incerto, por (leilão, identidade)
	pending map[holder]Withdrawal
	seq     map[holder]uint64
}

type holder struct {
	auctionID uint64
	who       string
}

// Withdrawal é um saque com número de sequência estável.
// Seq só avança depois que o saque anterior foi confirmado.
type Withdrawal struct {
	Seq    uint64
	Amount int64
}

func NewEscrow() *Escrow {
	return &Escrow{
		balances: make(map[uint64]map[string]int64),
		pending:  make(map[holder]Withdrawal),
		seq:      make(map[holder]uint64),
	}
}

// Credit soma amount ao saldo de who no leilão auctionID
func (e *Escrow) Credit(auctionID uint64, who string, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	m, ok := e.balances[auctionID]
	if !ok {
		m = make(map[string]int64)
		e.balances[auctionID] = m
	}
	m[who] += amount
	e.outstanding += amount
	return nil
}

// Debit zera o saldo de who e retorna o valor debitado (0 se não havia saldo)
func (e *Escrow) Debit(auctionID uint64, who string) int64 {
	m, ok := e.balances[auctionID]
	if !ok {
		return 0
	}
	amount := m[who]
	if amount == 0 {
		return 0
	}
	delete(m, who)
	if len(m) == 0 {
		delete(e.balances, auctionID)
	}
	e.outstanding -= amount
	return amount
}

// BeginWithdrawal tira do saldo o próximo saque de who.
// Um saque que falhou antes é repetido com a mesma Seq e o mesmo valor, mesmo
// que o saldo tenha crescido depois; o restante fica para o saque seguinte.
func (e *Escrow) BeginWithdrawal(auctionID uint64, who string) (Withdrawal, bool) {
	k := holder{auctionID, who}
	if w, ok := e.pending[k]; ok {
		e.take(auctionID, who, w.Amount)
		return w, true
	}
	amount := e.Debit(auctionID, who)
	if amount == 0 {
		return Withdrawal{}, false
	}
	e.seq[k]++
	w := Withdrawal{Seq: e.seq[k], Amount: amount}
	e.pending[k] = w
	return w, true
}

// CompleteWithdrawal confirma o saque; o próximo usa uma nova Seq
func (e *Escrow) CompleteWithdrawal(auctionID uint64, who string) {
	delete(e.pending, holder{auctionID, who})
}

// FailWithdrawal devolve o valor ao saldo (somando) e mantém o saque pendente
func (e *Escrow) FailWithdrawal(auctionID uint64, who string, w Withdrawal) error {
	return e.Credit(auctionID, who, w.Amount)
}

// take remove amount do saldo de who; o saldo sempre cobre um saque pendente
func (e *Escrow) take(auctionID uint64, who string, amount int64) {
	m := e.balances[auctionID]
	m[who] -= amount
	if m[who] == 0 {
		delete(m, who)
	}
	if len(m) == 0 {
		delete(e.balances, auctionID)
	}
	e.outstanding -= amount
}

// Balance retorna o saldo reembolsável de who no leilão
func (e *Escrow) Balance(auctionID uint64, who string) int64 {
	return e.balances[auctionID][who]
}

// Outstanding é a soma de todos os saldos em escrow
func (e *Escrow) Outstanding() int64 {
	return e.outstanding
}

// Holders retorna uma cópia dos saldos de um leilão
func (e *Escrow) Holders(auctionID uint64) map[string]int64 {
	out := make(map[string]int64, len(e.balances[auctionID]))
	for who, amount := range e.balances[auctionID] {
		out[who] = amount
	}
	return out
}
