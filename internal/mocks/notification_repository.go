package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"ham-backend/internal/domain"
)

type NotificationRepository struct {
	mock.Mock
}

func (m *NotificationRepository) Create(ctx context.Context, notif *domain.Notification) error {
	args := m.Called(ctx, notif)
	return args.Error(0)
}

func (m *NotificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Notification), args.Error(1)
}

func (m *NotificationRepository) ListByUser(ctx context.Context, userID string) ([]domain.Notification, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Notification), args.Error(1)
}

func (m *NotificationRepository) MarkAsRead(ctx context.Context, id uuid.UUID, readAt time.Time) error {
	args := m.Called(ctx, id, readAt)
	return args.Error(0)
}

func (m *NotificationRepository) MarkAllAsRead(ctx context.Context, userID string, readAt time.Time) error {
	args := m.Called(ctx, userID, readAt)
	return args.Error(0)
}

func (m *NotificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type NotificationSettingsRepository struct {
	mock.Mock
}

func (m *NotificationSettingsRepository) GetByUserID(ctx context.Context, userID string) (*domain.NotificationSettings, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.NotificationSettings), args.Error(1)
}

func (m *NotificationSettingsRepository) Upsert(ctx context.Context, settings *domain.NotificationSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}
