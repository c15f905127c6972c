package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"ham-backend/internal/domain"
)

// NotificationSettingsRepository returns (nil, nil) from GetByUserID when the
// user has never saved settings.
type NotificationSettingsRepository interface {
	GetByUserID(ctx context.Context, userID string) (*domain.NotificationSettings, error)
	Upsert(ctx context.Context, settings *domain.NotificationSettings) error
}

type settingsRow struct {
	UserID        string `db:"user_id"`
	EmailEnabled  bool   `db:"email_enabled"`
	PushEnabled   bool   `db:"push_enabled"`
	TypePurchase  bool   `db:"type_purchase"`
	TypeReview    bool   `db:"type_review"`
	TypeSystem    bool   `db:"type_system"`
	TypePromotion bool   `db:"type_promotion"`
}

func (r settingsRow) toDomain() *domain.NotificationSettings {
	return &domain.NotificationSettings{
		UserID:       r.UserID,
		EmailEnabled: r.EmailEnabled,
		PushEnabled:  r.PushEnabled,
		Types: domain.NotificationTypeSettings{
			Purchase:  r.TypePurchase,
			Review:    r.TypeReview,
			System:    r.TypeSystem,
			Promotion: r.TypePromotion,
		},
	}
}

type notificationSettingsRepository struct {
	db *sqlx.DB
}

func NewNotificationSettingsRepository(db *sqlx.DB) NotificationSettingsRepository {
	return &notificationSettingsRepository{db: db}
}

func (r *notificationSettingsRepository) GetByUserID(ctx context.Context, userID string) (*domain.NotificationSettings, error) {
	var row settingsRow
	query := `
		SELECT user_id, email_enabled, push_enabled, type_purchase, type_review, type_system, type_promotion
		FROM notification_settings WHERE user_id = $1`
	err := r.db.GetContext(ctx, &row, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *notificationSettingsRepository) Upsert(ctx context.Context, settings *domain.NotificationSettings) error {
	query := `
		INSERT INTO notification_settings
			(user_id, email_enabled, push_enabled, type_purchase, type_review, type_system, type_promotion, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			email_enabled = EXCLUDED.email_enabled,
			push_enabled = EXCLUDED.push_enabled,
			type_purchase = EXCLUDED.type_purchase,
			type_review = EXCLUDED.type_review,
			type_system = EXCLUDED.type_system,
			type_promotion = EXCLUDED.type_promotion,
			updated_at = NOW()`

	_, err := r.db.ExecContext(ctx, query,
		settings.UserID, settings.EmailEnabled, settings.PushEnabled,
		settings.Types.Purchase, settings.Types.Review, settings.Types.System, settings.Types.Promotion,
	)
	return err
}

type memoryNotificationSettingsRepository struct {
	store Store[string, domain.NotificationSettings]
}

func NewMemoryNotificationSettingsRepository(store Store[string, domain.NotificationSettings]) NotificationSettingsRepository {
	return &memoryNotificationSettingsRepository{store: store}
}

func (r *memoryNotificationSettingsRepository) GetByUserID(ctx context.Context, userID string) (*domain.NotificationSettings, error) {
	settings, ok, err := r.store.Get(ctx, userID)
	if err != nil || !ok {
		return nil, err
	}
	return &settings, nil
}

func (r *memoryNotificationSettingsRepository) Upsert(ctx context.Context, settings *domain.NotificationSettings) error {
	return r.store.Set(ctx, settings.UserID, *settings)
}
