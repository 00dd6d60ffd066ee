package worker

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDeliveryEvent(t *testing.T) {
	notificationID := uuid.New().String()
	recipientID := uuid.New().String()

	event, err := parseDeliveryEvent(map[string]any{
		"notification_id": notificationID,
		"recipient_id":    recipientID,
		"type":            "product_sold",
	})
	require.NoError(t, err)
	assert.Equal(t, notificationID, event.NotificationID)
	assert.Equal(t, recipientID, event.RecipientID)
	assert.Equal(t, "product_sold", event.Type)
}

func TestParseDeliveryEvent_MissingFields(t *testing.T) {
	_, err := parseDeliveryEvent(map[string]any{
		"recipient_id": uuid.New().String(),
		"type":         "product_sold",
	})
	assert.Error(t, err)

	_, err = parseDeliveryEvent(map[string]any{
		"notification_id": uuid.New().String(),
		"type":            "product_sold",
	})
	assert.Error(t, err)
}
