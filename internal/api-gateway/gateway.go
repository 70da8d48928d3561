// Package gateway monta o roteamento público: cada prefixo /api/* é um
// reverse proxy para o serviço interno correspondente, com CORS na borda.
package gateway

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/rs/cors"
	"go.uber.org/zap"
)

type Targets struct {
	Auction string
	Wallet  string
	Feed    string
}

func rp(log *zap.Logger, name, to string) (*httputil.ReverseProxy, error) {
	u, err := url.Parse(to)
	if err != nil {
		return nil, fmt.Errorf("%s url: %w", name, err)
	}
	p := httputil.NewSingleHostReverseProxy(u)
	p.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Warn("upstream failed", zap.String("upstream", name), zap.String("path", r.URL.Path), zap.Error(err))
		http.Error(w, name+" unavailable", http.StatusBadGateway)
	}
	return p, nil
}

// NewHandler devolve o handler do gateway
func NewHandler(log *zap.Logger, t Targets) (http.Handler, error) {
	auction, err := rp(log, "auction", t.Auction)
	if err != nil {
		return nil, err
	}
	wallet, err := rp(log, "wallet", t.Wallet)
	if err != nil {
		return nil, err
	}
	feed, err := rp(log, "feed", t.Feed)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()

	// auctions (ex.: /api/auctions/* -> auction-service)
	mux.Handle("/api/auctions/", http.StripPrefix("/api/auctions", auction))

	// wallet (ex.: /api/wallet/* -> wallet-service)
	mux.Handle("/api/wallet/", http.StripPrefix("/api/wallet", wallet))

	// feed (ex.: /api/feed/v1/leaderboard, /api/feed/ws -> auction-feed-service)
	mux.Handle("/api/feed/", http.StripPrefix("/api/feed", feed))

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Caller-Identity"},
	})
	return c.Handler(mux), nil
}
