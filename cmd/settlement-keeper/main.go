package main

import (
	"context"
	"os/signal"
	"syscall"

	"go.uber.org/ratelimit"
	"go.uber.org/zap"

	"github.com/radieske/auction-escrow-platform-poc/internal/settlement-keeper/client"
	"github.com/radieske/auction-escrow-platform-poc/internal/settlement-keeper/keeper"
	"github.com/radieske/auction-escrow-platform-poc/internal/settlement-keeper/schedule"
	"github.com/radieske/auction-escrow-platform-poc/internal/shared/config"
	"github.com/radieske/auction-escrow-platform-poc/internal/shared/kafka"
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

	// Consumer próprio; o que veio antes do offset commitado é carregado da API no Bootstrap
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicAuctionEvents, "settlement-keeper")
	defer reader.Close()

	k := &keeper.Keeper{
		Log:      log,
		Reader:   reader,
		Schedule: schedule.New(),
		API:      client.New(cfg.AuctionURL),
		Limiter:  ratelimit.New(cfg.KeeperRPS),
		Metrics:  metrics.NewKeeper(),
		Interval: cfg.KeeperInterval,
	}

	metrics.StartMetricsServer(cfg.MetricsPort, nil, log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("settlement-keeper started",
		zap.String("consume", cfg.TopicAuctionEvents),
		zap.String("auction_url", cfg.AuctionURL),
		zap.Duration("interval", cfg.KeeperInterval),
		zap.Int("rps", cfg.KeeperRPS),
	)
	if err := k.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("keeper stopped with error", zap.Error(err))
	}
	log.Info("settlement-keeper stopped")
}
