package repository

import (
	"context"
	_ "embed"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"ham-backend/internal/domain"
)

//go:embed schema.sql
var schema string

type Repositories struct {
	Message              MessageRepository
	Notification         NotificationRepository
	NotificationSettings NotificationSettingsRepository
}

func NewRepositories(db *sqlx.DB) *Repositories {
	return &Repositories{
		Message:              NewMessageRepository(db),
		Notification:         NewNotificationRepository(db),
		NotificationSettings: NewNotificationSettingsRepository(db),
	}
}

// NewMemoryRepositories backs every repository with a process-local Store.
func NewMemoryRepositories() *Repositories {
	return &Repositories{
		Message:              NewMemoryMessageRepository(NewMemoryStore[uuid.UUID, domain.Message]()),
		Notification:         NewMemoryNotificationRepository(NewMemoryStore[uuid.UUID, domain.Notification]()),
		NotificationSettings: NewMemoryNotificationSettingsRepository(NewMemoryStore[string, domain.NotificationSettings]()),
	}
}

// EnsureSchema creates the tables used by the PostgreSQL repositories.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
