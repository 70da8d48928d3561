// Package httpapi expõe o engine de leilões via REST.
// A identidade de quem chama vem do header X-Caller-Identity, preenchido pelo gateway.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/auction-escrow-platform-poc/internal/auction-service/dto"
	"github.com/radieske/auction-escrow-platform-poc/internal/auction-service/engine"
)

const CallerHeader = "X-Caller-Identity"

// Engine é o subconjunto do engine usado pelos handlers
type Engine interface {
	Register(ctx context.Context, identity string) error
	CreateAuction(ctx context.Context, caller, name, description string, duration time.Duration, reserve int64) (uint64, error)
	PlaceBid(ctx context.Context, auctionID uint64, caller string, amount int64) (engine.BidReceipt, error)
	Withdraw(ctx context.Context, auctionID uint64, caller string) (int64, error)
	Settle(ctx context.Context, auctionID uint64, caller string) error
	RetryPayout(ctx context.Context, auctionID uint64, caller string) error
	TransferOwnership(ctx context.Context, caller, newOwner string) error
	Identities(offset, limit int) ([]string, error)
	AuctionIDs(offset, limit int) ([]uint64, error)
	Auction(id uint64) (engine.Auction, error)
	User(identity string) (engine.User, error)
	Stats() engine.GlobalStats
	EscrowBalance(auctionID uint64, identity string) (int64, error)
	Leaderboard(n int) []engine.Standing
	Standing(identity string) (engine.Standing, bool)
}

// Wallet custodia o valor anexado a cada lance
type Wallet interface {
	Hold(ctx context.Context, userID string, cents int64, externalRef string) (string, error)
	Capture(ctx context.Context, userID, externalRef string) error
	Release(ctx context.Context, userID, externalRef string) error
}

type Server struct {
	log    *zap.Logger
	engine Engine
	wallet Wallet
}

func NewServer(log *zap.Logger, e Engine, w Wallet) *Server {
	return &Server{log: log, engine: e, wallet: w}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /users/register", s.register)
	mux.HandleFunc("GET /users", s.listUsers)
	mux.HandleFunc("GET /users/{identity}", s.getUser)
	mux.HandleFunc("POST /ownership", s.transferOwnership)

	mux.HandleFunc("POST /auctions", s.createAuction)
	mux.HandleFunc("GET /auctions", s.listAuctions)
	mux.HandleFunc("GET /auctions/{id}", s.getAuction)
	mux.HandleFunc("POST /auctions/{id}/bids", s.placeBid)
	mux.HandleFunc("POST /auctions/{id}/withdraw", s.withdraw)
	mux.HandleFunc("POST /auctions/{id}/settle", s.settle)
	mux.HandleFunc("POST /auctions/{id}/payout/retry", s.retryPayout)
	mux.HandleFunc("GET /auctions/{id}/escrow", s.escrowBalance)

	mux.HandleFunc("GET /stats", s.stats)
	mux.HandleFunc("GET /leaderboard", s.leaderboard)
	mux.HandleFunc("GET /leaderboard/{identity}", s.standing)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, kind string, err error) {
	writeJSON(w, status, dto.ErrorResponse{Error: err.Error(), Kind: kind})
}

// writeEngineErr traduz os erros do engine para status HTTP
func (s *Server) writeEngineErr(w http.ResponseWriter, err error) {
	kind := engine.Classify(err)
	switch {
	case errors.Is(err, engine.ErrAuctionNotFound):
		writeErr(w, http.StatusNotFound, kind, err)
	case errors.Is(err, engine.ErrInvalidDuration),
		errors.Is(err, engine.ErrInvalidReserve),
		errors.Is(err, engine.ErrInvalidIdentity),
		errors.Is(err, engine.ErrOutOfRange):
		writeErr(w, http.StatusBadRequest, kind, err)
	case errors.Is(err, engine.ErrReentrantCall), engine.IsPrecondition(err):
		writeErr(w, http.StatusConflict, kind, err)
	case errors.Is(err, engine.ErrTransferFailed):
		writeErr(w, http.StatusBadGateway, kind, err)
	default:
		s.log.Error("unexpected engine error", zap.Error(err))
		writeErr(w, http.StatusInternalServerError, kind, err)
	}
}

var (
	errNoCaller  = errors.New("missing " + CallerHeader + " header")
	errBadID     = errors.New("invalid auction id")
	errBadJSON   = errors.New("bad json")
	errBadPaging = errors.New("offset and limit must be integers")
)

// caller lê a identidade do header; responde 401 quando ausente
func caller(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.Header.Get(CallerHeader)
	if id == "" {
		writeErr(w, http.StatusUnauthorized, "rejected", errNoCaller)
		return "", false
	}
	return id, true
}

func auctionID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "rejected", errBadID)
		return 0, false
	}
	return id, true
}

// paging lê offset/limit da query; defaults 0 e 50
func paging(w http.ResponseWriter, r *http.Request) (offset, limit int, ok bool) {
	q := r.URL.Query()
	offset, limit = 0, 50
	var err error
	if v := q.Get("offset"); v != "" {
		if offset, err = strconv.Atoi(v); err != nil {
			writeErr(w, http.StatusBadRequest, "rejected", errBadPaging)
			return 0, 0, false
		}
	}
	if v := q.Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil {
			writeErr(w, http.StatusBadRequest, "rejected", errBadPaging)
			return 0, 0, false
		}
	}
	return offset, limit, true
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeErr(w, http.StatusBadRequest, "rejected", errBadJSON)
		return false
	}
	return true
}
