package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	walletdto "github.com/radieske/auction-escrow-platform-poc/internal/auction-service/wallet/dto"
)

func TestHoldSendsRequestAndReturnsHoldID(t *testing.T) {
	var got walletdto.HoldRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wallet/hold", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(walletdto.HoldResponse{HoldID: "h-1", Status: "HELD"})
	}))
	defer srv.Close()

	id, err := New(srv.URL).Hold(context.Background(), "alice", 150, "bid:1")
	require.NoError(t, err)
	assert.Equal(t, "h-1", id)
	assert.Equal(t, walletdto.HoldRequest{UserID: "alice", AmountCents: 150, ExternalRef: "bid:1"}, got)
}

func TestHoldInsufficientFunds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "insufficient funds", http.StatusPaymentRequired)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Hold(context.Background(), "alice", 150, "bid:1")
	assert.True(t, errors.Is(err, ErrInsufficientFunds))
}

func TestTransferPostsPayout(t *testing.T) {
	var got walletdto.PayoutRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wallet/payout", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	require.NoError(t, New(srv.URL).Transfer(context.Background(), "bob", 90, "withdraw:1:bob:x"))
	assert.Equal(t, walletdto.PayoutRequest{UserID: "bob", AmountCents: 90, ExternalRef: "withdraw:1:bob:x"}, got)
}

func TestCaptureAndReleaseErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/wallet/release" {
			http.Error(w, "hold not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL)
	assert.NoError(t, c.Capture(context.Background(), "alice", "bid:1"))

	err := c.Release(context.Background(), "alice", "bid:2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http 404")
	assert.Contains(t, err.Error(), "hold not found")
}
