package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"ham-backend/internal/domain"
)

// NotificationRepository returns (nil, nil) from GetByID when the notification does not exist.
type NotificationRepository interface {
	Create(ctx context.Context, notif *domain.Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkAsRead(ctx context.Context, id uuid.UUID, readAt time.Time) error
	MarkAllAsRead(ctx context.Context, userID string, readAt time.Time) error
	CountUnread(ctx context.Context, userID string) (int64, error)
}

type notificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notif *domain.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, type, title, content, is_read, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		notif.ID, notif.UserID, notif.Type, notif.Title, notif.Content, notif.IsRead, notif.Metadata, notif.CreatedAt,
	)
	return err
}

func (r *notificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	var notif domain.Notification
	query := `SELECT * FROM notifications WHERE id = $1`
	err := r.db.GetContext(ctx, &notif, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &notif, nil
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID string) ([]domain.Notification, error) {
	notifications := []domain.Notification{}
	query := `
		SELECT * FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC`
	err := r.db.SelectContext(ctx, &notifications, query, userID)
	return notifications, err
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, id uuid.UUID, readAt time.Time) error {
	query := `UPDATE notifications SET is_read = true, read_at = $2 WHERE id = $1 AND is_read = false`
	_, err := r.db.ExecContext(ctx, query, id, readAt)
	return err
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, userID string, readAt time.Time) error {
	query := `UPDATE notifications SET is_read = true, read_at = $2 WHERE user_id = $1 AND is_read = false`
	_, err := r.db.ExecContext(ctx, query, userID, readAt)
	return err
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = false`
	err := r.db.GetContext(ctx, &count, query, userID)
	return count, err
}

type memoryNotificationRepository struct {
	store Store[uuid.UUID, domain.Notification]
}

func NewMemoryNotificationRepository(store Store[uuid.UUID, domain.Notification]) NotificationRepository {
	return &memoryNotificationRepository{store: store}
}

func (r *memoryNotificationRepository) Create(ctx context.Context, notif *domain.Notification) error {
	stored := *notif
	stored.Metadata = notif.Metadata.Clone()
	return r.store.Set(ctx, notif.ID, stored)
}

func (r *memoryNotificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	notif, ok, err := r.store.Get(ctx, id)
	if err != nil || !ok {
		return nil, err
	}
	notif.Metadata = notif.Metadata.Clone()
	return &notif, nil
}

func (r *memoryNotificationRepository) ListByUser(ctx context.Context, userID string) ([]domain.Notification, error) {
	notifications, err := r.store.List(ctx, func(n domain.Notification) bool {
		return n.UserID == userID
	})
	if err != nil {
		return nil, err
	}
	for i := range notifications {
		notifications[i].Metadata = notifications[i].Metadata.Clone()
	}
	sortNotificationsNewestFirst(notifications)
	return notifications, nil
}

func (r *memoryNotificationRepository) MarkAsRead(ctx context.Context, id uuid.UUID, readAt time.Time) error {
	notif, ok, err := r.store.Get(ctx, id)
	if err != nil || !ok || notif.IsRead {
		return err
	}
	notif.IsRead = true
	notif.ReadAt = &readAt
	return r.store.Set(ctx, id, notif)
}

func (r *memoryNotificationRepository) MarkAllAsRead(ctx context.Context, userID string, readAt time.Time) error {
	unread, err := r.store.List(ctx, func(n domain.Notification) bool {
		return n.UserID == userID && !n.IsRead
	})
	if err != nil {
		return err
	}
	for _, notif := range unread {
		if err := r.MarkAsRead(ctx, notif.ID, readAt); err != nil {
			return err
		}
	}
	return nil
}

func (r *memoryNotificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	unread, err := r.store.List(ctx, func(n domain.Notification) bool {
		return n.UserID == userID && !n.IsRead
	})
	return int64(len(unread)), err
}
