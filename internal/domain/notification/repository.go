package notification

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for notification persistence
type Repository interface {
	// Create creates a notification
	Create(ctx context.Context, n *Notification) error

	// ListForUser returns a user's notifications, newest first
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*Notification, error)

	// MarkRead marks one of the user's notifications as read
	MarkRead(ctx context.Context, id, userID uuid.UUID) (*Notification, error)

	// MarkAllRead marks all of the user's unread notifications as read
	MarkAllRead(ctx context.Context, userID uuid.UUID) error

	// DeleteForUser removes all of the user's notifications
	DeleteForUser(ctx context.Context, userID uuid.UUID) error
}
