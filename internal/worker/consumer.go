package worker

import (
	"context"
	"fmt"

	"github.com/campuskart/marketplace/internal/infrastructure/observability"
	infraRedis "github.com/campuskart/marketplace/internal/infrastructure/redis"
	"github.com/rs/zerolog"
)

// DeliveryConsumer drains the notification stream through a consumer group
// and acknowledges delivered events, so published messages do not pile up in
// the group's pending list. Push transports (websocket, mobile) would hang
// off the delivery hook here.
type DeliveryConsumer struct {
	consumer *infraRedis.StreamConsumer
	metrics  *observability.Metrics
	logger   zerolog.Logger
}

// NewDeliveryConsumer creates a new DeliveryConsumer.
func NewDeliveryConsumer(consumer *infraRedis.StreamConsumer, metrics *observability.Metrics, logger zerolog.Logger) *DeliveryConsumer {
	return &DeliveryConsumer{
		consumer: consumer,
		metrics:  metrics,
		logger:   logger.With().Str("component", "delivery_consumer").Logger(),
	}
}

// DeliveryEvent is a notification event read off the stream.
type DeliveryEvent struct {
	NotificationID string
	RecipientID    string
	Type           string
}

// Run consumes the stream until ctx is cancelled.
func (c *DeliveryConsumer) Run(ctx context.Context) error {
	if err := c.consumer.CreateGroup(ctx); err != nil {
		return err
	}

	for {
		if ctx.Err() != nil {
			return nil
		}
		streams, err := c.consumer.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error().Err(err).Msg("failed to read notification stream")
			continue
		}

		for _, stream := range streams {
			for _, msg := range stream.Messages {
				event, err := parseDeliveryEvent(msg.Values)
				if err != nil {
					// Malformed events are acked so they cannot wedge the group.
					c.logger.Error().Err(err).
						Str("message_id", msg.ID).
						Msg("malformed notification event")
				} else {
					c.metrics.WorkerMessagesProcessed.WithLabelValues(infraRedis.NotificationStream, "delivered").Inc()
					c.logger.Info().
						Str("notification_id", event.NotificationID).
						Str("recipient_id", event.RecipientID).
						Str("type", event.Type).
						Msg("notification delivered")
				}
				if err := c.consumer.Ack(ctx, msg.ID); err != nil {
					c.logger.Error().Err(err).
						Str("message_id", msg.ID).
						Msg("failed to ack notification event")
				}
			}
		}
	}
}

// parseDeliveryEvent extracts the typed event from a raw stream message.
func parseDeliveryEvent(values map[string]any) (DeliveryEvent, error) {
	notificationID, _ := values["notification_id"].(string)
	recipientID, _ := values["recipient_id"].(string)
	typ, _ := values["type"].(string)
	if notificationID == "" || recipientID == "" {
		return DeliveryEvent{}, fmt.Errorf("notification event missing notification_id or recipient_id")
	}
	return DeliveryEvent{
		NotificationID: notificationID,
		RecipientID:    recipientID,
		Type:           typ,
	}, nil
}
