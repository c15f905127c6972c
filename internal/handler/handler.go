package handler

import "ham-backend/internal/service"

type Handlers struct {
	Message      *MessageHandler
	Notification *NotificationHandler
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Message:      NewMessageHandler(services.Message),
		Notification: NewNotificationHandler(services.Notification, services.Hub),
	}
}
