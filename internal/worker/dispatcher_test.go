package worker

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/campuskart/marketplace/internal/domain/notification"
	"github.com/campuskart/marketplace/internal/domain/outbox"
	"github.com/campuskart/marketplace/internal/infrastructure/observability"
	"github.com/campuskart/marketplace/internal/testutil"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubPublisher records published notification ids and fails on demand.
type stubPublisher struct {
	err       error
	published []string
}

func (p *stubPublisher) PublishNotification(ctx context.Context, notificationID, recipientID, notificationType string, data map[string]any) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, notificationID)
	return nil
}

func setupDispatcher(publisher *stubPublisher, outboxRepo *testutil.MockOutboxRepository, logger zerolog.Logger) (*Dispatcher, *testutil.MockNotificationRepository) {
	notificationRepo := testutil.NewMockNotificationRepository()
	d := NewDispatcher(Config{
		TxManager:        testutil.NewMockTransactionManager(),
		OutboxRepo:       outboxRepo,
		NotificationRepo: notificationRepo,
		Producer:         publisher,
		BatchSize:        10,
		Metrics:          observability.NewMetrics("test", prometheus.NewRegistry()),
		Logger:           logger,
	})
	return d, notificationRepo
}

func soldPayload(recipient uuid.UUID) map[string]any {
	return map[string]any{
		"recipient_id": recipient.String(),
		"type":         "product_sold",
		"title":        "Product sold",
		"message":      "m",
	}
}

func TestMaterialize_ProductSold(t *testing.T) {
	recipient := uuid.New()
	productID := uuid.New()
	transactionID := uuid.New()

	entry := outbox.NewEntry("transaction", transactionID, "product.sold", map[string]any{
		"recipient_id":   recipient.String(),
		"type":           "product_sold",
		"title":          "Product sold",
		"message":        `Your product "guitar" has been sold`,
		"product_id":     productID.String(),
		"transaction_id": transactionID.String(),
	})

	n, err := materialize(entry)
	require.NoError(t, err)
	assert.Equal(t, recipient, n.UserID)
	assert.Equal(t, notification.TypeProductSold, n.Type)
	assert.Equal(t, "Product sold", n.Title)
	require.NotNil(t, n.ProductID)
	assert.Equal(t, productID, *n.ProductID)
	require.NotNil(t, n.TransactionID)
	assert.Equal(t, transactionID, *n.TransactionID)
	assert.False(t, n.IsRead)
}

func TestMaterialize_SoldOutWithoutTransactionRef(t *testing.T) {
	recipient := uuid.New()
	productID := uuid.New()

	entry := outbox.NewEntry("product", productID, "product.sold_out", map[string]any{
		"recipient_id": recipient.String(),
		"type":         "product_sold_out",
		"title":        "Product sold out",
		"message":      "no stock left",
		"product_id":   productID.String(),
	})

	n, err := materialize(entry)
	require.NoError(t, err)
	assert.Equal(t, notification.TypeProductSoldOut, n.Type)
	require.NotNil(t, n.ProductID)
	assert.Nil(t, n.TransactionID)
}

func TestMaterialize_RejectsMalformedPayloads(t *testing.T) {
	base := func() map[string]any {
		return map[string]any{
			"recipient_id": uuid.New().String(),
			"type":         "product_sold",
			"title":        "Product sold",
			"message":      "m",
		}
	}

	missingRecipient := base()
	delete(missingRecipient, "recipient_id")
	_, err := materialize(outbox.NewEntry("transaction", uuid.New(), "product.sold", missingRecipient))
	assert.Error(t, err)

	badRecipient := base()
	badRecipient["recipient_id"] = "not-a-uuid"
	_, err = materialize(outbox.NewEntry("transaction", uuid.New(), "product.sold", badRecipient))
	assert.Error(t, err)

	missingType := base()
	delete(missingType, "type")
	_, err = materialize(outbox.NewEntry("transaction", uuid.New(), "product.sold", missingType))
	assert.Error(t, err)
}

func TestMaterialize_DeterministicID(t *testing.T) {
	recipient := uuid.New()
	entry := outbox.NewEntry("product", uuid.New(), "product.sold", soldPayload(recipient))

	first, err := materialize(entry)
	require.NoError(t, err)
	second, err := materialize(entry)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	other, err := materialize(outbox.NewEntry("product", uuid.New(), "product.sold", soldPayload(recipient)))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestDrainEntries_PublishFailureRetriesSameRow(t *testing.T) {
	ctx := context.Background()
	recipient := uuid.New()
	outboxRepo := testutil.NewMockOutboxRepository()
	entry := outbox.NewEntry("product", uuid.New(), "product.sold", soldPayload(recipient))
	require.NoError(t, outboxRepo.Insert(ctx, entry))

	publisher := &stubPublisher{err: errors.New("stream unavailable")}
	d, notificationRepo := setupDispatcher(publisher, outboxRepo, zerolog.Nop())

	require.NoError(t, d.drainEntries(ctx, ctx, []*outbox.Entry{entry}))
	assert.Equal(t, outbox.StatusPending, entry.Status)
	assert.Equal(t, 1, entry.RetryCount)
	assert.Equal(t, 1, notificationRepo.Count())

	// The stream recovers and the entry is redispatched. The notification
	// row id is derived from the entry id, so the count stays at one.
	publisher.err = nil
	require.NoError(t, d.drainEntries(ctx, ctx, []*outbox.Entry{entry}))
	assert.Equal(t, outbox.StatusPublished, entry.Status)
	assert.Equal(t, 1, notificationRepo.Count())
	require.Len(t, publisher.published, 1)
}

func TestDrainEntries_MarkFailedErrorLogged(t *testing.T) {
	ctx := context.Background()
	outboxRepo := testutil.NewMockOutboxRepository()
	entry := outbox.NewEntry("product", uuid.New(), "product.sold", soldPayload(uuid.New()))
	require.NoError(t, outboxRepo.Insert(ctx, entry))
	outboxRepo.MarkFailedFunc = func(ctx context.Context, id uuid.UUID) error {
		return errors.New("connection reset")
	}

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	d, _ := setupDispatcher(&stubPublisher{err: errors.New("stream unavailable")}, outboxRepo, logger)

	require.NoError(t, d.drainEntries(ctx, ctx, []*outbox.Entry{entry}))
	assert.Contains(t, buf.String(), "failed to mark outbox entry failed")
	assert.Contains(t, buf.String(), "connection reset")
}
