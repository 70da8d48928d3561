// Package keys define as chaves Redis compartilhadas entre o processor (escrita)
// e o feed (leitura).
package keys

const (
	// ZSET identidade -> valor acumulado ofertado
	LeaderboardSpend = "auction:leaderboard:spend"
	// ZSET identidade -> quantos lances a deixaram em primeiro (top bidder)
	LeaderboardBids = "auction:leaderboard:bids"
	// HASH com os agregados globais
	Stats = "auction:stats"
)

// Campos do hash Stats
const (
	FieldTotalAuctions = "total_auctions"
	FieldTotalUsers    = "total_users"
	FieldTotalBids     = "total_bids"
	FieldTotalValueBid = "total_value_bid"
	FieldHighestBid    = "highest_bid"
	FieldHighestBidder = "highest_bidder"
)

// Canal Redis Pub/Sub usado para o feed ao vivo (ver REDIS_PUBSUB_CHANNEL)
const ChannelAuctionBroadcast = "auction_events_broadcast"
