package engine

import (
	"fmt"
	"time"
)

// State é o ciclo de vida do leilão: Open -> Ended, sem volta
type State int

const (
	StateOpen State = iota
	StateEnded
)

func (s State) String() string {
	if s == StateEnded {
		return "ENDED"
	}
	return "OPEN"
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *State) UnmarshalText(b []byte) error {
	switch string(b) {
	case "OPEN":
		*s = StateOpen
	case "ENDED":
		*s = StateEnded
	default:
		return fmt.Errorf("unknown auction state %q", b)
	}
	return nil
}

// Auction é o registro mutável de um leilão.
// O escrow do leilão fica no ledger, não aqui.
type Auction struct {
	ID              uint64        `json:"id"`
	Owner           string        `json:"owner"`
	Name            string        `json:"name"`
	Description     string        `json:"description"`
	ReservePrice    int64         `json:"reserve_price"`
	BiddingDuration time.Duration `json:"bidding_duration"`
	AdditionalTime  time.Duration `json:"additional_time"`
	CreatedAt       time.Time     `json:"created_at"`
	EndTime         time.Time     `json:"end_time"`
	HighestBid      int64         `json:"highest_bid"`
	HighestBidder   string        `json:"highest_bidder,omitempty"`
	TotalValueBid   int64         `json:"total_value_bid"`
	BidCount        int64         `json:"bid_count"`
	Winner          string        `json:"winner,omitempty"`
	// FinalPrice guarda o lance vencedor; HighestBid é zerado no settlement
	FinalPrice int64 `json:"final_price"`
	State      State `json:"state"`
}

func (a *Auction) Ended() bool { return a.State == StateEnded }

// end faz a única transição permitida, Open -> Ended
func (a *Auction) end(now time.Time) error {
	if a.State == StateEnded {
		return ErrAuctionEnded
	}
	if now.Before(a.EndTime) {
		return ErrDeadlineNotReached
	}
	a.State = StateEnded
	a.Winner = a.HighestBidder
	a.FinalPrice = a.HighestBid
	return nil
}

// PendingProceeds é o valor ainda não pago ao dono após o settlement
func (a *Auction) PendingProceeds() int64 {
	if a.State != StateEnded {
		return 0
	}
	return a.HighestBid
}
