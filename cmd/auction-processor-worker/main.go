package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/auction-escrow-platform-poc/internal/auction-processor/cache"
	"github.com/radieske/auction-escrow-platform-poc/internal/auction-processor/consumer"
	"github.com/radieske/auction-escrow-platform-poc/internal/auction-processor/pubsub"
	"github.com/radieske/auction-escrow-platform-poc/internal/auction-processor/repository"
	sharedcache "github.com/radieske/auction-escrow-platform-poc/internal/shared/cache"
	"github.com/radieske/auction-escrow-platform-poc/internal/shared/config"
	"github.com/radieske/auction-escrow-platform-poc/internal/shared/db"
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

	// Inicializa dependências: Postgres e Redis
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	// Consumer Kafka (consumer group auction-processor) e DLQ
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicAuctionEvents, "auction-processor")
	defer reader.Close()
	dlq := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicAuctionEventsDLQ)
	defer dlq.Close()

	proc := &consumer.Processor{
		Log:         log,
		Reader:      reader,
		Leaderboard: cache.NewRedisLeaderboard(redisClient),
		History:     repository.NewPostgresRepo(pg),
		Broadcaster: pubsub.NewRedisBroadcaster(redisClient),
		Channel:     cfg.RedisPubSubChannel,
		DLQ:         dlq,
		Metrics:     metrics.NewProcessor(),
	}

	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return redisClient.Ping(ctx).Err()
	}, log)

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("auction-processor started", zap.String("topic", cfg.TopicAuctionEvents))
	start := time.Now()
	if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("processor stopped with error", zap.Error(err))
	}
	log.Info("auction-processor stopped", zap.Duration("uptime", time.Since(start)))
}
