package engine

// Ratio é a divisão inteira usada em todas as médias derivadas:
// trunca em direção a zero e den == 0 vale 0.
func Ratio(num, den int64) int64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// GlobalStats são os agregados de todos os lances em todos os leilões
type GlobalStats struct {
	TotalAuctions int64  `json:"total_auctions"`
	TotalUsers    int64  `json:"total_users"`
	TotalBids     int64  `json:"total_bids"`
	TotalValueBid int64  `json:"total_value_bid"`
	HighestBid    int64  `json:"highest_bid"`
	HighestBidder string `json:"highest_bidder,omitempty"`
	AverageBid    int64  `json:"average_bid"`
}

func (s *GlobalStats) recordBid(bidder string, amount int64) {
	if amount > s.HighestBid {
		s.HighestBid = amount
		s.HighestBidder = bidder
	}
	s.TotalBids++
	s.TotalValueBid += amount
	s.AverageBid = Ratio(s.TotalValueBid, s.TotalBids)
}
