package dto

import "time"

type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"` // rejected | reentrant | transfer_failed | error
}

type CreateAuctionResponse struct {
	AuctionID uint64    `json:"auction_id"`
	EndTime   time.Time `json:"end_time"`
}

type PlaceBidResponse struct {
	AuctionID uint64    `json:"auction_id"`
	Bidder    string    `json:"bidder"`
	Amount    int64     `json:"amount"`
	EndTime   time.Time `json:"end_time"`
	Extended  bool      `json:"extended"`
	HoldRef   string    `json:"hold_ref"`
}

type WithdrawResponse struct {
	AuctionID uint64 `json:"auction_id"`
	Amount    int64  `json:"amount"`
	Status    string `json:"status"`
}

type SettleResponse struct {
	AuctionID uint64 `json:"auction_id"`
	Winner    string `json:"winner,omitempty"`
	Amount    int64  `json:"amount"`
	Status    string `json:"status"`
}

type EscrowResponse struct {
	AuctionID uint64 `json:"auction_id"`
	Identity  string `json:"identity"`
	Balance   int64  `json:"balance"`
}

type AuctionIDsResponse struct {
	AuctionIDs []uint64 `json:"auction_ids"`
}

type IdentitiesResponse struct {
	Identities []string `json:"identities"`
}
