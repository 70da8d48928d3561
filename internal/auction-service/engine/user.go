package engine

// PointsPerBid é a reputação ganha por lance aceito
const PointsPerBid = 10

// User agrega a atividade de uma identidade registrada
type User struct {
	Identity             string `json:"identity"`
	Points               int64  `json:"points"`
	BidCount             int64  `json:"bid_count"`
	TotalValueBid        int64  `json:"total_value_bid"`
	AuctionsCreated      int64  `json:"auctions_created"`
	AuctionsParticipated int64  `json:"auctions_participated"`
	AuctionsWon          int64  `json:"auctions_won"`
	AverageBid           int64  `json:"average_bid"`
	WinRate              int64  `json:"win_rate"`
}

func (u *User) recordBid(amount int64) {
	u.BidCount++
	u.TotalValueBid += amount
	u.AuctionsParticipated++
	u.Points += PointsPerBid
	u.AverageBid = Ratio(u.TotalValueBid, u.BidCount)
}

// recordWin conta um settlement para quem chamou.
// WinRate segue a regra herdada: participações / vitórias.
func (u *User) recordWin() {
	u.AuctionsWon++
	u.WinRate = Ratio(u.AuctionsParticipated, u.AuctionsWon)
}
