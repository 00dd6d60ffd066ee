package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/campuskart/marketplace/internal/domain/notification"
	"github.com/campuskart/marketplace/internal/domain/outbox"
	"github.com/campuskart/marketplace/internal/infrastructure/observability"
	infraRedis "github.com/campuskart/marketplace/internal/infrastructure/redis"
	"github.com/campuskart/marketplace/internal/service"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const dispatchLockKey = "outbox:dispatch"

// notificationNamespace seeds the deterministic notification ids derived
// from outbox entry ids, so a retried entry materializes the same row.
var notificationNamespace = uuid.MustParse("f5f8c1de-3a97-4f2b-9c41-7b1d2a6e8c53")

// NotificationPublisher is the stream side of dispatch: materialized
// notifications are handed to it for real-time delivery.
type NotificationPublisher interface {
	PublishNotification(ctx context.Context, notificationID, recipientID, notificationType string, data map[string]any) error
}

// Dispatcher drains the outbox: each pending entry becomes a notification
// row plus a redis stream event for the real-time delivery layer. A
// distributed lock keeps one instance draining at a time, so the exactly-once
// guarantees made by the committing transaction carry through to delivery.
type Dispatcher struct {
	txManager        service.TransactionManager
	outboxRepo       outbox.Repository
	notificationRepo notification.Repository
	producer         NotificationPublisher
	redisClient      *redis.Client
	batchSize        int
	pollInterval     time.Duration
	lockTTL          time.Duration
	metrics          *observability.Metrics
	logger           zerolog.Logger
}

// Config holds the dispatcher's dependencies and tuning.
type Config struct {
	TxManager        service.TransactionManager
	OutboxRepo       outbox.Repository
	NotificationRepo notification.Repository
	Producer         NotificationPublisher
	RedisClient      *redis.Client
	BatchSize        int
	PollInterval     time.Duration
	LockTTL          time.Duration
	Metrics          *observability.Metrics
	Logger           zerolog.Logger
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(cfg Config) *Dispatcher {
	return &Dispatcher{
		txManager:        cfg.TxManager,
		outboxRepo:       cfg.OutboxRepo,
		notificationRepo: cfg.NotificationRepo,
		producer:         cfg.Producer,
		redisClient:      cfg.RedisClient,
		batchSize:        cfg.BatchSize,
		pollInterval:     cfg.PollInterval,
		lockTTL:          cfg.LockTTL,
		metrics:          cfg.Metrics,
		logger:           cfg.Logger.With().Str("component", "dispatcher").Logger(),
	}
}

// Run polls the outbox until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		if err := d.dispatchBatch(ctx); err != nil {
			d.logger.Error().Err(err).Msg("dispatch cycle failed")
		}
	}
}

func (d *Dispatcher) dispatchBatch(ctx context.Context) error {
	lock := infraRedis.NewDistributedLock(d.redisClient, dispatchLockKey, d.lockTTL)
	acquired, err := lock.Acquire(ctx)
	if err != nil {
		return err
	}
	if !acquired {
		// Another instance is draining.
		return nil
	}
	defer lock.Release(ctx)

	return d.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		entries, err := d.outboxRepo.GetPending(txCtx, d.batchSize)
		if err != nil {
			return err
		}
		return d.drainEntries(ctx, txCtx, entries)
	})
}

func (d *Dispatcher) drainEntries(ctx, txCtx context.Context, entries []*outbox.Entry) error {
	for _, entry := range entries {
		if err := d.dispatchEntry(ctx, txCtx, entry); err != nil {
			d.logger.Error().Err(err).
				Str("outbox_id", entry.ID.String()).
				Str("event_type", entry.EventType).
				Msg("failed to dispatch outbox entry")
			if mfErr := d.outboxRepo.MarkFailed(txCtx, entry.ID); mfErr != nil {
				d.logger.Error().Err(mfErr).
					Str("outbox_id", entry.ID.String()).
					Msg("failed to mark outbox entry failed")
			}
			d.metrics.WorkerMessagesProcessed.WithLabelValues(infraRedis.NotificationStream, "failed").Inc()
			continue
		}
		if err := d.outboxRepo.MarkPublished(txCtx, entry.ID); err != nil {
			return err
		}
		d.metrics.WorkerMessagesProcessed.WithLabelValues(infraRedis.NotificationStream, "success").Inc()
	}
	return nil
}

func (d *Dispatcher) dispatchEntry(ctx, txCtx context.Context, entry *outbox.Entry) error {
	n, err := materialize(entry)
	if err != nil {
		return err
	}
	if err := d.notificationRepo.Create(txCtx, n); err != nil {
		return err
	}
	d.metrics.NotificationsCreated.WithLabelValues(string(n.Type)).Inc()

	// Stream publish uses the outer ctx: a delivery-layer hiccup marks the
	// entry failed for retry without poisoning the database transaction.
	return d.producer.PublishNotification(ctx, n.ID.String(), n.UserID.String(), string(n.Type), entry.Payload)
}

// materialize turns an outbox payload into a notification row. The row id
// is derived from the entry id, so redispatching an entry whose batch failed
// after the insert committed produces the same row, not a duplicate.
func materialize(entry *outbox.Entry) (*notification.Notification, error) {
	recipientStr, _ := entry.Payload["recipient_id"].(string)
	recipientID, err := uuid.Parse(recipientStr)
	if err != nil {
		return nil, fmt.Errorf("invalid recipient_id in outbox payload: %w", err)
	}
	typ, _ := entry.Payload["type"].(string)
	title, _ := entry.Payload["title"].(string)
	message, _ := entry.Payload["message"].(string)
	if typ == "" || title == "" {
		return nil, fmt.Errorf("outbox payload missing type or title")
	}

	n := notification.New(recipientID, notification.Type(typ), title, message)
	n.ID = uuid.NewSHA1(notificationNamespace, entry.ID[:])
	if s, ok := entry.Payload["product_id"].(string); ok {
		if id, err := uuid.Parse(s); err == nil {
			n.WithProduct(id)
		}
	}
	if s, ok := entry.Payload["transaction_id"].(string); ok {
		if id, err := uuid.Parse(s); err == nil {
			n.WithTransaction(id)
		}
	}
	return n, nil
}
