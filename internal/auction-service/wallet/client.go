// Package wallet é o cliente HTTP do wallet-service usado pelo auction-service:
// hold/capture/release do valor anexado aos lances e payout das transferências
// do engine (reembolsos e proceeds).
package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	walletdto "github.com/radieske/auction-escrow-platform-poc/internal/auction-service/wallet/dto"
)

// ErrInsufficientFunds é retornado quando o wallet recusa o hold por saldo
var ErrInsufficientFunds = errors.New("wallet: insufficient funds")

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(base string) *Client {
	return &Client{
		BaseURL: base,
		HTTP:    &http.Client{Timeout: 2 * time.Second},
	}
}

// Hold bloqueia cents no wallet de userID, idempotente por externalRef
func (c *Client) Hold(ctx context.Context, userID string, cents int64, externalRef string) (string, error) {
	var out walletdto.HoldResponse
	err := c.post(ctx, "/wallet/hold", walletdto.HoldRequest{UserID: userID, AmountCents: cents, ExternalRef: externalRef}, &out)
	if err != nil {
		return "", err
	}
	return out.HoldID, nil
}

// Capture consome o hold (o valor passa a estar custodiado pelo leilão)
func (c *Client) Capture(ctx context.Context, userID, externalRef string) error {
	return c.post(ctx, "/wallet/capture", walletdto.HoldRefRequest{UserID: userID, ExternalRef: externalRef}, nil)
}

// Release devolve o hold ao saldo disponível
func (c *Client) Release(ctx context.Context, userID, externalRef string) error {
	return c.post(ctx, "/wallet/release", walletdto.HoldRefRequest{UserID: userID, ExternalRef: externalRef}, nil)
}

// Transfer credita amount no wallet de to. Implementa engine.Transferer.
func (c *Client) Transfer(ctx context.Context, to string, amount int64, ref string) error {
	return c.post(ctx, "/wallet/payout", walletdto.PayoutRequest{UserID: to, AmountCents: amount, ExternalRef: ref}, nil)
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusPaymentRequired:
		return ErrInsufficientFunds
	case res.StatusCode >= 300:
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("wallet %s http %d: %s", path, res.StatusCode, bytes.TrimSpace(msg))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}
