package notification

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"ham-backend/internal/domain"
	"ham-backend/internal/pkg/logger"
	"ham-backend/internal/pkg/realtime"
	"ham-backend/internal/pkg/validator"
	"ham-backend/internal/repository"
	"ham-backend/internal/service/email"
)

const EventCreated = "notification.created"

type Service interface {
	FindAll(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkAsRead(ctx context.Context, id uuid.UUID, userID string) (*domain.Notification, error)
	MarkAllAsRead(ctx context.Context, userID string) error
	GetUnreadCount(ctx context.Context, userID string) (int64, error)

	// Create is for other domain flows (purchase completion, reviews, ...),
	// never for end users directly.
	Create(ctx context.Context, input domain.CreateNotificationInput) (*domain.Notification, error)

	GetSettings(ctx context.Context, userID string) (*domain.NotificationSettings, error)
	UpdateSettings(ctx context.Context, userID string, input domain.NotificationSettingsInput) (*domain.NotificationSettings, error)
}

type service struct {
	notifRepo    repository.NotificationRepository
	settingsRepo repository.NotificationSettingsRepository
	publisher    realtime.Publisher
	emailSvc     email.Service
	now          func() time.Time
}

// NewService wires the notification service. publisher and emailSvc may be
// nil to switch the corresponding delivery channel off.
func NewService(
	notifRepo repository.NotificationRepository,
	settingsRepo repository.NotificationSettingsRepository,
	publisher realtime.Publisher,
	emailSvc email.Service,
) Service {
	return &service{
		notifRepo:    notifRepo,
		settingsRepo: settingsRepo,
		publisher:    publisher,
		emailSvc:     emailSvc,
		now:          time.Now,
	}
}

func (s *service) FindAll(ctx context.Context, userID string) ([]domain.Notification, error) {
	return s.notifRepo.ListByUser(ctx, userID)
}

// MarkAsRead reports another user's notification as not found so that ids
// cannot be probed.
func (s *service) MarkAsRead(ctx context.Context, id uuid.UUID, userID string) (*domain.Notification, error) {
	notif, err := s.notifRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if notif == nil || notif.UserID != userID {
		return nil, domain.ErrNotificationNotFound
	}

	if notif.IsRead {
		return notif, nil
	}

	readAt := s.now()
	if err := s.notifRepo.MarkAsRead(ctx, notif.ID, readAt); err != nil {
		return nil, err
	}
	notif.IsRead = true
	notif.ReadAt = &readAt

	return notif, nil
}

func (s *service) MarkAllAsRead(ctx context.Context, userID string) error {
	return s.notifRepo.MarkAllAsRead(ctx, userID, s.now())
}

func (s *service) GetUnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.notifRepo.CountUnread(ctx, userID)
}

func (s *service) Create(ctx context.Context, input domain.CreateNotificationInput) (*domain.Notification, error) {
	if err := validator.Struct(input); err != nil {
		return nil, err
	}

	notif := &domain.Notification{
		ID:        uuid.New(),
		UserID:    input.UserID,
		Type:      input.Type,
		Title:     input.Title,
		Content:   input.Content,
		IsRead:    false,
		Metadata:  input.Metadata.Clone(),
		CreatedAt: s.now(),
	}

	if err := s.notifRepo.Create(ctx, notif); err != nil {
		return nil, err
	}

	s.deliver(ctx, notif)

	return notif, nil
}

// deliver pushes and mails notif according to the owner's settings. Failures
// are logged only.
func (s *service) deliver(ctx context.Context, notif *domain.Notification) {
	if s.publisher == nil && s.emailSvc == nil {
		return
	}

	log := logger.WithUserID(notif.UserID)

	settings, err := s.GetSettings(ctx, notif.UserID)
	if err != nil {
		log.Warn().Err(err).Msg("notification: settings lookup failed, skipping delivery")
		return
	}
	if !settings.Types.Enabled(notif.Type) {
		return
	}

	if s.publisher != nil && settings.PushEnabled {
		ev := realtime.Event{Type: EventCreated, Data: *notif}
		if err := s.publisher.Publish(ctx, notif.UserID, ev); err != nil {
			log.Warn().Err(err).Str("notification_id", notif.ID.String()).Msg("notification: push failed")
		}
	}

	if s.emailSvc != nil && settings.EmailEnabled {
		err := s.emailSvc.SendNotificationEmail(ctx, notif)
		switch {
		case err == nil:
		case errors.Is(err, email.ErrDisabled), errors.Is(err, email.ErrNoRecipient):
			log.Debug().Err(err).Str("notification_id", notif.ID.String()).Msg("notification: email skipped")
		default:
			log.Warn().Err(err).Str("notification_id", notif.ID.String()).Msg("notification: email failed")
		}
	}
}

// GetSettings never persists the synthesized default.
func (s *service) GetSettings(ctx context.Context, userID string) (*domain.NotificationSettings, error) {
	settings, err := s.settingsRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		def := domain.DefaultNotificationSettings(userID)
		return &def, nil
	}
	return settings, nil
}

func (s *service) UpdateSettings(ctx context.Context, userID string, input domain.NotificationSettingsInput) (*domain.NotificationSettings, error) {
	current, err := s.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}

	merged := current.Merge(input)
	merged.UserID = userID

	if err := s.settingsRepo.Upsert(ctx, &merged); err != nil {
		return nil, err
	}

	return &merged, nil
}
