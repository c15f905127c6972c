package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID        uuid.UUID        `json:"id" db:"id"`
	UserID    string           `json:"userId" db:"user_id"`
	Type      NotificationType `json:"type" db:"type"`
	Title     string           `json:"title" db:"title"`
	Content   string           `json:"content" db:"content"`
	IsRead    bool             `json:"isRead" db:"is_read"`
	ReadAt    *time.Time       `json:"readAt,omitempty" db:"read_at"`
	Metadata  Metadata         `json:"metadata,omitempty" db:"metadata"`
	CreatedAt time.Time        `json:"createdAt" db:"created_at"`
}

type NotificationType string

const (
	NotifPurchase  NotificationType = "purchase"
	NotifReview    NotificationType = "review"
	NotifSystem    NotificationType = "system"
	NotifPromotion NotificationType = "promotion"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotifPurchase, NotifReview, NotifSystem, NotifPromotion:
		return true
	}
	return false
}

// Metadata is an open key/value map stored as JSON.
type Metadata map[string]interface{}

func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *Metadata) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("metadata: unsupported source type")
	}

	var decoded Metadata
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	*m = decoded
	return nil
}

// Clone deep-copies nested maps and slices. Other values are copied as is.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return map[string]interface{}(Metadata(t).Clone())
	case Metadata:
		return t.Clone()
	case []interface{}:
		if t == nil {
			return t
		}
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	}
	return v
}

type CreateNotificationInput struct {
	UserID   string           `json:"userId" validate:"required,max=128"`
	Type     NotificationType `json:"type" validate:"required,oneof=purchase review system promotion"`
	Title    string           `json:"title" validate:"required,min=1,max=200"`
	Content  string           `json:"content" validate:"required,min=1,max=2000"`
	Metadata Metadata         `json:"metadata"`
}

type NotificationTypeSettings struct {
	Purchase  bool `json:"purchase"`
	Review    bool `json:"review"`
	System    bool `json:"system"`
	Promotion bool `json:"promotion"`
}

// Enabled reports whether notifications of type t are switched on.
func (s NotificationTypeSettings) Enabled(t NotificationType) bool {
	switch t {
	case NotifPurchase:
		return s.Purchase
	case NotifReview:
		return s.Review
	case NotifSystem:
		return s.System
	case NotifPromotion:
		return s.Promotion
	}
	return false
}

type NotificationSettings struct {
	UserID       string                   `json:"userId" db:"user_id"`
	EmailEnabled bool                     `json:"emailEnabled" db:"email_enabled"`
	PushEnabled  bool                     `json:"pushEnabled" db:"push_enabled"`
	Types        NotificationTypeSettings `json:"types" db:"-"`
}

// DefaultNotificationSettings is what a user without a stored row gets.
// Promotions are opt-in.
func DefaultNotificationSettings(userID string) NotificationSettings {
	return NotificationSettings{
		UserID:       userID,
		EmailEnabled: true,
		PushEnabled:  true,
		Types: NotificationTypeSettings{
			Purchase:  true,
			Review:    true,
			System:    true,
			Promotion: false,
		},
	}
}

type NotificationSettingsInput struct {
	EmailEnabled *bool                          `json:"emailEnabled"`
	PushEnabled  *bool                          `json:"pushEnabled"`
	Types        *NotificationTypeSettingsInput `json:"types"`
}

type NotificationTypeSettingsInput struct {
	Purchase  *bool `json:"purchase"`
	Review    *bool `json:"review"`
	System    *bool `json:"system"`
	Promotion *bool `json:"promotion"`
}

// Merge applies the fields present in input on top of s. Absent fields,
// including absent keys inside types, keep their current value.
func (s NotificationSettings) Merge(input NotificationSettingsInput) NotificationSettings {
	merged := s
	if input.EmailEnabled != nil {
		merged.EmailEnabled = *input.EmailEnabled
	}
	if input.PushEnabled != nil {
		merged.PushEnabled = *input.PushEnabled
	}
	if t := input.Types; t != nil {
		if t.Purchase != nil {
			merged.Types.Purchase = *t.Purchase
		}
		if t.Review != nil {
			merged.Types.Review = *t.Review
		}
		if t.System != nil {
			merged.Types.System = *t.System
		}
		if t.Promotion != nil {
			merged.Types.Promotion = *t.Promotion
		}
	}
	return merged
}
