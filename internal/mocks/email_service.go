package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ham-backend/internal/domain"
)

type EmailService struct {
	mock.Mock
}

func (m *EmailService) SendNotificationEmail(ctx context.Context, notif *domain.Notification) error {
	args := m.Called(ctx, notif)
	return args.Error(0)
}
