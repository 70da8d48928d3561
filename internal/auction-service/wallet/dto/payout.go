package dto

// PayoutRequest credita valor vindo do auction engine (reembolso ou proceeds).
type PayoutRequest struct {
	UserID      string `json:"userId"`
	AmountCents int64  `json:"amount_cents"`
	ExternalRef string `json:"external_ref"`
}
