package events

import (
	"encoding/json"
	"strconv"
	"time"
)

// Tipos de notificação emitidos pelo auction-service
const (
	TypeUserRegistered       = "user_registered"
	TypeAuctionCreated       = "auction_created"
	TypeBidPlaced            = "bid_placed"
	TypeDeadlineExtended     = "deadline_extended"
	TypeWithdrawalSucceeded  = "withdrawal_succeeded"
	TypeWithdrawalFailed     = "withdrawal_failed"
	TypeSettlementSucceeded  = "settlement_succeeded"
	TypeSettlementFailed     = "settlement_failed"
	TypeOwnershipTransferred = "ownership_transferred"
)

// Envelope é o formato publicado no tópico "auction_events".
// Data carrega o payload específico do tipo (ver auction.go).
type Envelope struct {
	Type      string          `json:"type"`
	AuctionID uint64          `json:"auction_id,omitempty"`
	Key       string          `json:"key"`
	TsUnixMs  int64           `json:"ts_unix_ms"`
	Data      json.RawMessage `json:"data"`
}

// New monta um envelope serializando o payload.
// A chave é o id do leilão quando existe, senão a identidade envolvida.
func New(typ string, auctionID uint64, identity string, payload any, ts time.Time) (Envelope, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	key := identity
	if auctionID != 0 {
		key = strconv.FormatUint(auctionID, 10)
	}
	return Envelope{
		Type:      typ,
		AuctionID: auctionID,
		Key:       key,
		TsUnixMs:  ts.UnixMilli(),
		Data:      b,
	}, nil
}

// Decode desserializa o payload no destino informado
func (e Envelope) Decode(dst any) error {
	return json.Unmarshal(e.Data, dst)
}
