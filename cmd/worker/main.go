package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/campuskart/marketplace/internal/bootstrap"
	infraRedis "github.com/campuskart/marketplace/internal/infrastructure/redis"
	"github.com/campuskart/marketplace/internal/repository/postgres"
	"github.com/campuskart/marketplace/internal/worker"
	"golang.org/x/sync/errgroup"
)

const idempotencyCleanupInterval = 1 * time.Hour

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := bootstrap.New(ctx, "marketplace-worker", "marketplace_worker")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	outboxRepo := postgres.NewOutboxRepository(app.Pool)
	notificationRepo := postgres.NewNotificationRepository(app.Pool)
	idempotencyRepo := postgres.NewIdempotencyRepository(app.Pool)
	txManager := postgres.NewTxManager(app.Pool)
	producer := infraRedis.NewStreamProducer(app.Redis)

	workerCfg := app.Config.Worker
	dispatcher := worker.NewDispatcher(worker.Config{
		TxManager:        txManager,
		OutboxRepo:       outboxRepo,
		NotificationRepo: notificationRepo,
		Producer:         producer,
		RedisClient:      app.Redis,
		BatchSize:        workerCfg.BatchSize,
		PollInterval:     workerCfg.OutboxPollInterval,
		LockTTL:          workerCfg.LockTTL,
		Metrics:          app.Metrics,
		Logger:           app.Logger,
	})

	streamConsumer := infraRedis.NewStreamConsumer(
		app.Redis,
		infraRedis.NotificationStream,
		workerCfg.ConsumerGroup,
		app.Config.InstanceID,
		int64(workerCfg.BatchSize),
		workerCfg.BlockDuration,
	)
	deliveryConsumer := worker.NewDeliveryConsumer(streamConsumer, app.Metrics, app.Logger)

	app.Logger.Info().
		Str("stream", infraRedis.NotificationStream).
		Str("group", workerCfg.ConsumerGroup).
		Str("instance", app.Config.InstanceID).
		Msg("Worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	g, gCtx := errgroup.WithContext(ctx)

	// 1. Outbox dispatcher: materializes notifications and publishes
	// delivery events.
	g.Go(func() error {
		return dispatcher.Run(gCtx)
	})

	// 2. Delivery confirmation: acks dispatched notification events off the
	// stream.
	g.Go(func() error {
		return deliveryConsumer.Run(gCtx)
	})

	// 3. Expired idempotency key cleanup.
	g.Go(func() error {
		ticker := time.NewTicker(idempotencyCleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gCtx.Done():
				return nil
			case <-ticker.C:
			}
			removed, err := idempotencyRepo.Cleanup(gCtx)
			if err != nil {
				app.Logger.Error().Err(err).Msg("Idempotency cleanup failed")
				continue
			}
			if removed > 0 {
				app.Logger.Info().Int64("removed", removed).Msg("Cleaned up expired idempotency keys")
			}
		}
	})

	// 4. Wait for shutdown signal.
	g.Go(func() error {
		select {
		case <-gCtx.Done():
			return gCtx.Err()
		case <-quit:
			app.Logger.Info().Msg("Shutting down worker...")
			cancel()
			return nil
		}
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		app.Logger.Error().Err(err).Msg("Worker error")
	}
	app.Logger.Info().Msg("Worker exited")
}
