package dto

import (
	"encoding/json"
	"time"
)

// LeaderboardEntry é uma posição do ranking espelhado no Redis
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	Identity string `json:"identity"`
	Score    int64  `json:"score"`
}

type Stats struct {
	TotalAuctions int64  `json:"total_auctions"`
	TotalUsers    int64  `json:"total_users"`
	TotalBids     int64  `json:"total_bids"`
	TotalValueBid int64  `json:"total_value_bid"`
	HighestBid    int64  `json:"highest_bid"`
	HighestBidder string `json:"highest_bidder,omitempty"`
	AverageBid    int64  `json:"average_bid"`
}

type HistoryEntry struct {
	Type       string          `json:"type"`
	Key        string          `json:"key"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt time.Time       `json:"occurred_at"`
}
