// Package schedule mantém, a partir das notificações de leilão, quais leilões
// precisam de settlement e quais ficaram com proceeds não pagos.
package schedule

import (
	"sort"
	"sync"
	"time"

	"github.com/radieske/auction-escrow-platform-poc/pkg/contracts/events"
)

type State int

const (
	// Pending: aguardando o prazo para o settlement
	Pending State = iota
	// Unpaid: encerrado, mas a transferência ao dono falhou
	Unpaid
)

func (s State) String() string {
	if s == Unpaid {
		return "unpaid"
	}
	return "pending"
}

type Entry struct {
	AuctionID uint64
	Owner     string
	EndTime   time.Time
	State     State
	// NotBefore adia a próxima tentativa (backoff após erro)
	NotBefore time.Time
}

type Schedule struct {
	mu      sync.Mutex
	entries map[uint64]*Entry
}

func New() *Schedule {
	return &Schedule{entries: make(map[uint64]*Entry)}
}

// Apply atualiza o schedule com uma notificação. Tipos irrelevantes são ignorados.
func (s *Schedule) Apply(env events.Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch env.Type {
	case events.TypeAuctionCreated:
		var c events.AuctionCreated
		if err := env.Decode(&c); err != nil {
			return err
		}
		s.entries[c.AuctionID] = &Entry{AuctionID: c.AuctionID, Owner: c.Owner, EndTime: c.EndTime}

	case events.TypeDeadlineExtended:
		var d events.DeadlineExtended
		if err := env.Decode(&d); err != nil {
			return err
		}
		if e, ok := s.entries[d.AuctionID]; ok {
			e.EndTime = d.EndTime
		}

	case events.TypeBidPlaced:
		var b events.BidPlaced
		if err := env.Decode(&b); err != nil {
			return err
		}
		if e, ok := s.entries[b.AuctionID]; ok && b.EndTime.After(e.EndTime) {
			e.EndTime = b.EndTime
		}

	case events.TypeSettlementSucceeded:
		delete(s.entries, env.AuctionID)

	case events.TypeSettlementFailed:
		if e, ok := s.entries[env.AuctionID]; ok {
			e.State = Unpaid
		}
	}
	return nil
}

// Due retorna, por ordem de prazo, as entradas que já podem ser tratadas em now
func (s *Schedule) Due(now time.Time) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Entry
	for _, e := range s.entries {
		if now.Before(e.NotBefore) {
			continue
		}
		if e.State == Unpaid || !now.Before(e.EndTime) {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EndTime.Equal(out[j].EndTime) {
			return out[i].EndTime.Before(out[j].EndTime)
		}
		return out[i].AuctionID < out[j].AuctionID
	})
	return out
}

// Track inclui e se o leilão ainda não está no schedule.
// Uma entrada vinda das notificações é mais recente e não é sobrescrita.
func (s *Schedule) Track(e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[e.AuctionID]; ok {
		return
	}
	s.entries[e.AuctionID] = &e
}

func (s *Schedule) Remove(auctionID uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, auctionID)
}

func (s *Schedule) MarkUnpaid(auctionID uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[auctionID]; ok {
		e.State = Unpaid
	}
}

// Defer adia a entrada até until
func (s *Schedule) Defer(auctionID uint64, until time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[auctionID]; ok {
		e.NotBefore = until
	}
}

// Counts devolve o tamanho do schedule por estado
func (s *Schedule) Counts() map[State]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[State]int{Pending: 0, Unpaid: 0}
	for _, e := range s.entries {
		out[e.State]++
	}
	return out
}

func (s *Schedule) Get(auctionID uint64) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[auctionID]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}
