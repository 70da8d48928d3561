package main

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	gateway "github.com/radieske/auction-escrow-platform-poc/internal/api-gateway"
	"github.com/radieske/auction-escrow-platform-poc/internal/shared/config"
	"github.com/radieske/auction-escrow-platform-poc/internal/shared/logger"
	"github.com/radieske/auction-escrow-platform-poc/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	h, err := gateway.NewHandler(log, gateway.Targets{
		Auction: cfg.AuctionURL,
		Wallet:  cfg.WalletURL,
		Feed:    cfg.FeedURL,
	})
	if err != nil {
		log.Fatal("gateway targets", zap.Error(err))
	}

	metrics.StartMetricsServer(cfg.MetricsPort, nil, log)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Info("api-gateway listening",
		zap.String("addr", srv.Addr),
		zap.String("auction", cfg.AuctionURL),
		zap.String("wallet", cfg.WalletURL),
		zap.String("feed", cfg.FeedURL),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("gateway failed", zap.Error(err))
	}
}
