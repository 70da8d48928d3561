// Package client chama o auction-service em nome do keeper
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/radieske/auction-escrow-platform-poc/internal/auction-service/dto"
	"github.com/radieske/auction-escrow-platform-poc/internal/auction-service/engine"
	httpapi "github.com/radieske/auction-escrow-platform-poc/internal/auction-service/http"
)

// APIError é uma resposta de erro do auction-service
type APIError struct {
	Status  int
	Kind    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("auction-service http %d (%s): %s", e.Status, e.Kind, e.Message)
}

// Is compara com os sentinelas do engine pela mensagem
func (e *APIError) Is(target error) bool {
	return target != nil && e.Message == target.Error()
}

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(base string) *Client {
	return &Client{
		BaseURL: base,
		HTTP:    &http.Client{Timeout: 5 * time.Second},
	}
}

// Settle encerra o leilão agindo como caller (o dono do leilão)
func (c *Client) Settle(ctx context.Context, auctionID uint64, caller string) error {
	return c.post(ctx, fmt.Sprintf("/auctions/%d/settle", auctionID), caller)
}

// RetryPayout repete o pagamento dos proceeds ao dono
func (c *Client) RetryPayout(ctx context.Context, auctionID uint64, caller string) error {
	return c.post(ctx, fmt.Sprintf("/auctions/%d/payout/retry", auctionID), caller)
}

// AuctionIDs lê uma página dos ids de leilão
func (c *Client) AuctionIDs(ctx context.Context, offset, limit int) ([]uint64, error) {
	var out dto.AuctionIDsResponse
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/auctions?offset=%d&limit=%d", offset, limit), "", &out)
	return out.AuctionIDs, err
}

func (c *Client) Auction(ctx context.Context, auctionID uint64) (engine.Auction, error) {
	var out engine.Auction
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/auctions/%d", auctionID), "", &out)
	return out, err
}

func (c *Client) post(ctx context.Context, path, caller string) error {
	return c.do(ctx, http.MethodPost, path, caller, nil)
}

// do executa a chamada; out == nil descarta o corpo de sucesso
func (c *Client) do(ctx context.Context, method, path, caller string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, http.NoBody)
	if err != nil {
		return err
	}
	if caller != "" {
		req.Header.Set(httpapi.CallerHeader, caller)
	}
	res, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 300 {
		if out == nil {
			_, _ = io.Copy(io.Discard, res.Body)
			return nil
		}
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
		return nil
	}
	apiErr := &APIError{Status: res.StatusCode}
	var body dto.ErrorResponse
	if json.NewDecoder(io.LimitReader(res.Body, 4096)).Decode(&body) == nil {
		apiErr.Kind, apiErr.Message = body.Kind, body.Error
	}
	return apiErr
}
