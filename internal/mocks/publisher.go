package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ham-backend/internal/pkg/realtime"
)

type Publisher struct {
	mock.Mock
}

func (m *Publisher) Publish(ctx context.Context, userID string, ev realtime.Event) error {
	args := m.Called(ctx, userID, ev)
	return args.Error(0)
}
