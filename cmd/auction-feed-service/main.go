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

	feedcache "github.com/radieske/auction-escrow-platform-poc/internal/auction-feed/cache"
	httpapi "github.com/radieske/auction-escrow-platform-poc/internal/auction-feed/http"
	"github.com/radieske/auction-escrow-platform-poc/internal/auction-feed/repo"
	"github.com/radieske/auction-escrow-platform-poc/internal/auction-feed/ws"
	"github.com/radieske/auction-escrow-platform-poc/internal/shared/cache"
	"github.com/radieske/auction-escrow-platform-poc/internal/shared/config"
	"github.com/radieske/auction-escrow-platform-poc/internal/shared/db"
	"github.com/radieske/auction-escrow-platform-poc/internal/shared/logger"
	"github.com/radieske/auction-escrow-platform-poc/internal/shared/metrics"
)

func main() {
	// carrega config
	cfg := config.Load()

	// inicia logger
	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	log.Info("starting service", zap.String("service", cfg.ServiceName), zap.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// conecta com db Postgres
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()
	log.Info("postgres connected")

	// conecta com cache Redis
	redisClient, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("failed to connect redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("redis connected")

	// WebSocket hub alimentado pelo Pub/Sub do processor
	hub := ws.NewHub(func(*http.Request) bool { return true }) // CORS fica no gateway
	ws.StartRedisSubscriber(ctx, log, redisClient, cfg.RedisPubSubChannel, hub)

	fc := feedcache.New(redisClient)
	api := &httpapi.API{
		Log:          log,
		Board:        fc,
		History:      &repo.ReadRepo{DB: pg},
		HistoryCache: fc,
		WS:           hub.HandleWS,
	}
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// sobe servidor de métricas e health
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		return nil
	}, log)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		_ = metricsSrv.Shutdown(shutdownCtx)
	}()

	log.Info("feed api listening", zap.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("feed api failed", zap.Error(err))
	}
}
