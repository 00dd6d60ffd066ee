package postgres

import (
	"context"
	"errors"
	"fmt"

	domainErrors "github.com/campuskart/marketplace/internal/domain/errors"
	"github.com/campuskart/marketplace/internal/domain/notification"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

func (r *NotificationRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

const notificationColumns = `id, user_id, type, title, message, product_id, transaction_id, is_read, created_at`

// Create inserts a notification. Ids are deterministic per outbox entry and
// the insert is conflict-tolerant, so a redispatched entry is a no-op here.
func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	_, err := r.db(ctx).Exec(ctx,
		`INSERT INTO notifications (id, user_id, type, title, message, product_id, transaction_id, is_read, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (id) DO NOTHING`,
		n.ID, n.UserID, string(n.Type), n.Title, n.Message, n.ProductID, n.TransactionID, n.IsRead, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *NotificationRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*notification.Notification, error) {
	rows, err := r.db(ctx).Query(ctx,
		`SELECT `+notificationColumns+` FROM notifications
		 WHERE user_id = $1 ORDER BY created_at DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*notification.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID uuid.UUID) (*notification.Notification, error) {
	n, err := scanNotification(r.db(ctx).QueryRow(ctx,
		`UPDATE notifications SET is_read = TRUE
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+notificationColumns, id, userID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotificationNotFound
		}
		return nil, err
	}
	return n, nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db(ctx).Exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND NOT is_read`, userID,
	)
	if err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	return nil
}

func (r *NotificationRepository) DeleteForUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db(ctx).Exec(ctx,
		`DELETE FROM notifications WHERE user_id = $1`, userID,
	)
	if err != nil {
		return fmt.Errorf("delete notifications: %w", err)
	}
	return nil
}

func scanNotification(s scanner) (*notification.Notification, error) {
	n := &notification.Notification{}
	var typ string
	err := s.Scan(&n.ID, &n.UserID, &typ, &n.Title, &n.Message, &n.ProductID, &n.TransactionID, &n.IsRead, &n.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pgx.ErrNoRows
		}
		return nil, fmt.Errorf("scan notification: %w", err)
	}
	n.Type = notification.Type(typ)
	return n, nil
}
