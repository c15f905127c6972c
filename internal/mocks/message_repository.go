package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"ham-backend/internal/domain"
)

type MessageRepository struct {
	mock.Mock
}

func (m *MessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MessageRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}

func (m *MessageRepository) ListByReceiver(ctx context.Context, userID string) ([]domain.Message, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Message), args.Error(1)
}

func (m *MessageRepository) ListBySender(ctx context.Context, userID string) ([]domain.Message, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Message), args.Error(1)
}

func (m *MessageRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MessageRepository) MarkAsRead(ctx context.Context, id uuid.UUID, readAt time.Time) error {
	args := m.Called(ctx, id, readAt)
	return args.Error(0)
}

func (m *MessageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
