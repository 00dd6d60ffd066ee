package service

import (
	"context"

	"github.com/campuskart/marketplace/internal/domain/notification"
	"github.com/google/uuid"
)

// NotificationService exposes the recipient-scoped notification operations.
// Notifications are created by the dispatch worker, never through this
// service; the API surface only reads and acknowledges them.
type NotificationService struct {
	notificationRepo notification.Repository
}

func NewNotificationService(notificationRepo notification.Repository) *NotificationService {
	return &NotificationService{notificationRepo: notificationRepo}
}

func (s *NotificationService) List(ctx context.Context, userID uuid.UUID) ([]*notification.Notification, error) {
	return s.notificationRepo.ListForUser(ctx, userID)
}

func (s *NotificationService) MarkRead(ctx context.Context, id, userID uuid.UUID) (*notification.Notification, error) {
	return s.notificationRepo.MarkRead(ctx, id, userID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.notificationRepo.MarkAllRead(ctx, userID)
}

func (s *NotificationService) DeleteAll(ctx context.Context, userID uuid.UUID) error {
	return s.notificationRepo.DeleteForUser(ctx, userID)
}
