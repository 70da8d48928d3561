package ws

import "encoding/json"

// ClientMsg representa uma mensagem recebida do cliente WebSocket
type ClientMsg struct {
	Type      string `json:"type"`      // subscribe | unsubscribe | ping
	AuctionID uint64 `json:"auctionId"` // requerido em subscribe/unsubscribe
}

// Update é a notificação de leilão enviada aos clientes inscritos
type Update struct {
	AuctionID uint64          `json:"auctionId"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
}
