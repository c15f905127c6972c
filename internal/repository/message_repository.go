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

// MessageRepository returns (nil, nil) from GetByID when the message does not exist.
type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error)
	ListByReceiver(ctx context.Context, userID string) ([]domain.Message, error)
	ListBySender(ctx context.Context, userID string) ([]domain.Message, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkAsRead(ctx context.Context, id uuid.UUID, readAt time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type messageRepository struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, msg *domain.Message) error {
	query := `
		INSERT INTO messages (id, sender_id, receiver_id, subject, content, is_read, parent_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		msg.ID, msg.SenderID, msg.ReceiverID, msg.Subject, msg.Content, msg.IsRead, msg.ParentID, msg.CreatedAt,
	)
	return err
}

func (r *messageRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	var msg domain.Message
	query := `SELECT * FROM messages WHERE id = $1`
	err := r.db.GetContext(ctx, &msg, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepository) ListByReceiver(ctx context.Context, userID string) ([]domain.Message, error) {
	messages := []domain.Message{}
	query := `SELECT * FROM messages WHERE receiver_id = $1 ORDER BY created_at DESC`
	err := r.db.SelectContext(ctx, &messages, query, userID)
	return messages, err
}

func (r *messageRepository) ListBySender(ctx context.Context, userID string) ([]domain.Message, error) {
	messages := []domain.Message{}
	query := `SELECT * FROM messages WHERE sender_id = $1 ORDER BY created_at DESC`
	err := r.db.SelectContext(ctx, &messages, query, userID)
	return messages, err
}

func (r *messageRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM messages WHERE receiver_id = $1 AND is_read = false`
	err := r.db.GetContext(ctx, &count, query, userID)
	return count, err
}

func (r *messageRepository) MarkAsRead(ctx context.Context, id uuid.UUID, readAt time.Time) error {
	query := `UPDATE messages SET is_read = true, read_at = $2 WHERE id = $1 AND is_read = false`
	_, err := r.db.ExecContext(ctx, query, id, readAt)
	return err
}

func (r *messageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM messages WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

type memoryMessageRepository struct {
	store Store[uuid.UUID, domain.Message]
}

func NewMemoryMessageRepository(store Store[uuid.UUID, domain.Message]) MessageRepository {
	return &memoryMessageRepository{store: store}
}

func (r *memoryMessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	return r.store.Set(ctx, msg.ID, *msg)
}

func (r *memoryMessageRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	msg, ok, err := r.store.Get(ctx, id)
	if err != nil || !ok {
		return nil, err
	}
	return &msg, nil
}

func (r *memoryMessageRepository) ListByReceiver(ctx context.Context, userID string) ([]domain.Message, error) {
	messages, err := r.store.List(ctx, func(m domain.Message) bool {
		return m.ReceiverID == userID
	})
	if err != nil {
		return nil, err
	}
	sortMessagesNewestFirst(messages)
	return messages, nil
}

func (r *memoryMessageRepository) ListBySender(ctx context.Context, userID string) ([]domain.Message, error) {
	messages, err := r.store.List(ctx, func(m domain.Message) bool {
		return m.SenderID == userID
	})
	if err != nil {
		return nil, err
	}
	sortMessagesNewestFirst(messages)
	return messages, nil
}

func (r *memoryMessageRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	messages, err := r.store.List(ctx, func(m domain.Message) bool {
		return m.ReceiverID == userID && !m.IsRead
	})
	return int64(len(messages)), err
}

func (r *memoryMessageRepository) MarkAsRead(ctx context.Context, id uuid.UUID, readAt time.Time) error {
	msg, ok, err := r.store.Get(ctx, id)
	if err != nil || !ok || msg.IsRead {
		return err
	}
	msg.IsRead = true
	msg.ReadAt = &readAt
	return r.store.Set(ctx, id, msg)
}

func (r *memoryMessageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.store.Delete(ctx, id)
	return err
}
