package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/radieske/auction-escrow-platform-poc/internal/auction-feed/cache"
	"github.com/radieske/auction-escrow-platform-poc/internal/auction-feed/dto"
)

// Leaderboard lê o ranking e as estatísticas espelhados no Redis
type Leaderboard interface {
	Leaderboard(ctx context.Context, by string, limit int) ([]dto.LeaderboardEntry, error)
	Stats(ctx context.Context) (dto.Stats, error)
}

// HistoryCache guarda o histórico de um leilão por alguns segundos
type HistoryCache interface {
	GetHistory(ctx context.Context, auctionID uint64, dst any) (bool, error)
	SetHistory(ctx context.Context, auctionID uint64, v any, ttl time.Duration) error
}

type HistoryRepo interface {
	History(ctx context.Context, auctionID uint64, limit int) ([]dto.HistoryEntry, error)
}

// API expõe os endpoints REST de leitura do feed de leilões
type API struct {
	Log          *zap.Logger
	Board        Leaderboard
	History      HistoryRepo
	HistoryCache HistoryCache
	WS           http.HandlerFunc
}

// Router retorna o roteador HTTP com os endpoints REST e o /ws
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/v1/leaderboard", a.leaderboard)               // ?by=spend|bids&limit=n
	r.Get("/v1/stats", a.stats)                           // agregados globais
	r.Get("/v1/auctions/{id}/history", a.auctionHistory) // notificações do leilão
	if a.WS != nil {
		r.Get("/ws", a.WS)
	}
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func intParam(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

func (a *API) leaderboard(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", 10)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
		return
	}
	out, err := a.Board.Leaderboard(r.Context(), r.URL.Query().Get("by"), limit)
	if err != nil {
		if errors.Is(err, cache.ErrUnknownBoard) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) stats(w http.ResponseWriter, r *http.Request) {
	s, err := a.Board.Stats(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// auctionHistory retorna o histórico do leilão, preferencialmente do cache
func (a *API) auctionHistory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid auction id"})
		return
	}

	var fromCache []dto.HistoryEntry
	if ok, _ := a.HistoryCache.GetHistory(r.Context(), id, &fromCache); ok {
		writeJSON(w, http.StatusOK, fromCache)
		return
	}

	h, err := a.History.History(r.Context(), id, 500)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if len(h) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	if err := a.HistoryCache.SetHistory(r.Context(), id, h, 10*time.Second); err != nil {
		a.Log.Warn("history cache set failed", zap.Uint64("auction_id", id), zap.Error(err))
	}
	writeJSON(w, http.StatusOK, h)
}
