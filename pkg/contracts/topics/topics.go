package topics

const (
	// Leilões: todas as notificações do engine vão para um único tópico,
	// particionado pelo id do leilão para manter a ordem por leilão
	AuctionEvents = "auction_events"

	// DLQ
	AuctionEventsDLQ = "auction_events_dlq"
)
