package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/auction-escrow-platform-poc/internal/auction-service/engine"
	httpapi "github.com/radieske/auction-escrow-platform-poc/internal/auction-service/http"
	kpub "github.com/radieske/auction-escrow-platform-poc/internal/auction-service/producer"
	"github.com/radieske/auction-escrow-platform-poc/internal/auction-service/registry"
	"github.com/radieske/auction-escrow-platform-poc/internal/auction-service/wallet"
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Kafka writer (tópico auction_events, chave = auction id)
	writer := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicAuctionEvents)
	defer writer.Close()

	wcli := wallet.New(cfg.WalletURL) // wallet-service
	publ := kpub.NewKafkaPublisher(writer, cfg.TopicAuctionEvents)

	eng := engine.New(log, registry.New(cfg.OwnerIdentity), wcli, publ, engine.Config{
		Policy: engine.Policy{
			Window:    cfg.AntiSnipeWindow,
			Extension: cfg.AntiSnipeExtension,
		},
		Observer: metrics.NewEngine(engine.Classify),
	})

	api := httpapi.NewServer(log, eng, wcli)
	apiSrv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, nil, log)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = apiSrv.Shutdown(shutdownCtx)
		_ = metricsSrv.Shutdown(shutdownCtx)
	}()

	log.Info("auction-service listening",
		zap.String("addr", apiSrv.Addr),
		zap.String("owner", cfg.OwnerIdentity),
		zap.Duration("anti_snipe_window", cfg.AntiSnipeWindow),
	)
	if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("api", zap.Error(err))
	}
}
