package domain

import (
	"time"

	"github.com/google/uuid"
)

type Message struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	SenderID   string     `json:"senderId" db:"sender_id"`
	ReceiverID string     `json:"receiverId" db:"receiver_id"`
	Subject    string     `json:"subject" db:"subject"`
	Content    string     `json:"content" db:"content"`
	IsRead     bool       `json:"isRead" db:"is_read"`
	ReadAt     *time.Time `json:"readAt,omitempty" db:"read_at"`
	ParentID   *uuid.UUID `json:"parentId,omitempty" db:"parent_id"`
	CreatedAt  time.Time  `json:"createdAt" db:"created_at"`
}

// IsParticipant reports whether userID sent or received the message.
func (m *Message) IsParticipant(userID string) bool {
	return m.SenderID == userID || m.ReceiverID == userID
}

type CreateMessageInput struct {
	ReceiverID string  `json:"receiverId" validate:"required,uuid"`
	Subject    string  `json:"subject" validate:"required,min=1,max=100"`
	Content    string  `json:"content" validate:"required,min=1,max=5000"`
	ParentID   *string `json:"parentId" validate:"omitempty,uuid"`
}
