package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/instasocial/social-api/internal/config"
	"github.com/instasocial/social-api/internal/repository"
	"github.com/instasocial/social-api/internal/services"
	"github.com/instasocial/social-api/internal/workers"
	"github.com/instasocial/social-api/pkg/cache"
	"github.com/instasocial/social-api/pkg/logger"
	"github.com/instasocial/social-api/pkg/queue"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logger.NewLogger(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting InstaSocial counter reconciler...")

	if !cfg.Kafka.Enabled {
		logger.Fatal("Kafka is disabled, the reconciler has no event stream to follow")
	}

	db, err := repository.NewDatabase(&cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := db.Ping(ctx); err != nil {
		logger.WithError(err).Fatal("Database is not reachable")
	}

	var followingCache cache.Cache = cache.NopCache{}
	if cfg.Redis.Enabled {
		redisClient := cache.NewRedisClient(
			cfg.Redis.Addr(),
			cfg.Redis.Password,
			cfg.Redis.DB,
			cfg.Redis.PoolSize,
			cfg.Redis.MinIdleConns,
		)
		defer redisClient.Close()

		if err := redisClient.Ping(ctx); err != nil {
			logger.WithError(err).Warn("Redis is not reachable, cache invalidation will be skipped")
		}
		followingCache = redisClient
	}

	consumer := queue.NewKafkaConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID, logger)

	following := services.NewFollowingSet(repository.NewFollowRepository(db.DB), followingCache, cfg.Redis.FollowingTTL, logger)
	reconciler := services.NewReconciler(db, following, logger)
	worker := workers.NewReconcileWorker(reconciler, consumer, logger)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := worker.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.WithError(err).Error("Reconcile worker stopped with error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-done:
	}

	logger.Info("Shutting down worker...")
	cancel()

	select {
	case <-done:
	case <-time.After(30 * time.Second):
		logger.Warn("Worker did not stop in time")
	}

	if err := worker.Stop(); err != nil {
		logger.WithError(err).Error("Failed to stop reconcile worker")
	}

	logger.Info("Worker exited")
}
