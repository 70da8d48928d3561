package dto

type CreateAuctionRequest struct {
	Name                   string `json:"name"`
	Description            string `json:"description"`
	BiddingDurationSeconds int64  `json:"bidding_duration_seconds"`
	ReservePrice           int64  `json:"reserve_price"`
}

// PlaceBidRequest: transferred_value é o valor anexado ao lance e precisa ser igual a amount
type PlaceBidRequest struct {
	Amount           int64 `json:"amount"`
	TransferredValue int64 `json:"transferred_value"`
}

type TransferOwnershipRequest struct {
	NewOwner string `json:"new_owner"`
}
