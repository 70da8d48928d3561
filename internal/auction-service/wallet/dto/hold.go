package dto

// HoldRequest representa o payload para bloquear saldo no wallet-service.
type HoldRequest struct {
	UserID      string `json:"userId"`
	AmountCents int64  `json:"amount_cents"`
	ExternalRef string `json:"external_ref"`
}

// HoldResponse representa a resposta do endpoint de hold do wallet-service.
type HoldResponse struct {
	HoldID string `json:"hold_id"`
	Status string `json:"status"`
}

// HoldRefRequest é usado em capture e release.
type HoldRefRequest struct {
	UserID      string `json:"userId"`
	ExternalRef string `json:"external_ref"`
}
