package events

import "time"

type UserRegistered struct {
	Identity string `json:"identity"`
}

type AuctionCreated struct {
	AuctionID    uint64    `json:"auction_id"`
	Owner        string    `json:"owner"`
	Name         string    `json:"name"`
	ReservePrice int64     `json:"reserve_price"`
	EndTime      time.Time `json:"end_time"`
}

// BidPlaced é emitido a cada lance aceito.
// BidderTotal é o valor acumulado já ofertado pelo bidder em todos os leilões
// (usado pelo processor para o leaderboard).
type BidPlaced struct {
	AuctionID   uint64    `json:"auction_id"`
	Bidder      string    `json:"bidder"`
	Amount      int64     `json:"amount"`
	BidderTotal int64     `json:"bidder_total"`
	EndTime     time.Time `json:"end_time"`
	// Leader indica que o lance deixou o bidder em primeiro no ranking de gasto
	Leader bool `json:"leader"`
}

type DeadlineExtended struct {
	AuctionID      uint64        `json:"auction_id"`
	Bidder         string        `json:"bidder"`
	EndTime        time.Time     `json:"end_time"`
	AdditionalTime time.Duration `json:"additional_time"`
}

// Withdrawal cobre withdrawal_succeeded e withdrawal_failed
type Withdrawal struct {
	AuctionID uint64 `json:"auction_id"`
	Identity  string `json:"identity"`
	Amount    int64  `json:"amount"`
	Reason    string `json:"reason,omitempty"`
}

// Settlement cobre settlement_succeeded e settlement_failed
type Settlement struct {
	AuctionID uint64 `json:"auction_id"`
	Owner     string `json:"owner"`
	Winner    string `json:"winner,omitempty"`
	Amount    int64  `json:"amount"`
	Reason    string `json:"reason,omitempty"`
}

type OwnershipTransferred struct {
	PreviousOwner string `json:"previous_owner"`
	NewOwner      string `json:"new_owner"`
}
