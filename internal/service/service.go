package service

import (
	"github.com/redis/go-redis/v9"

	"ham-backend/internal/config"
	"ham-backend/internal/pkg/realtime"
	"ham-backend/internal/repository"
	"ham-backend/internal/service/auth"
	"ham-backend/internal/service/email"
	"ham-backend/internal/service/message"
	"ham-backend/internal/service/notification"
)

type Services struct {
	Auth         auth.Service
	Email        email.Service
	Message      message.Service
	Notification notification.Service

	Contacts *email.ContactBook
	Hub      *realtime.Hub
	// Bridge is nil when Redis is not configured.
	Bridge *realtime.RedisBridge
}

// NewServices wires every service. redis may be nil; without it unread counts
// are not cached and push events stay on this instance.
func NewServices(repos *repository.Repositories, redis *redis.Client, cfg *config.Config) *Services {
	hub := realtime.NewHub()
	var publisher realtime.Publisher = hub
	var bridge *realtime.RedisBridge
	if redis != nil {
		bridge = realtime.NewRedisBridge(redis, cfg.EventsChannel, hub)
		publisher = bridge
	}

	contacts := email.NewContactBook()
	emailService := email.NewService(cfg, contacts)
	authService := auth.NewService(cfg)
	messageService := message.NewService(repos.Message, redis, cfg.UnreadCacheTTL)
	notificationService := notification.NewService(repos.Notification, repos.NotificationSettings, publisher, emailService)

	return &Services{
		Auth:         authService,
		Email:        emailService,
		Message:      messageService,
		Notification: notificationService,
		Contacts:     contacts,
		Hub:          hub,
		Bridge:       bridge,
	}
}
