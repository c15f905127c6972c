package message

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"ham-backend/internal/domain"
	"ham-backend/internal/pkg/logger"
	"ham-backend/internal/pkg/validator"
	"ham-backend/internal/repository"
)

type Service interface {
	GetInbox(ctx context.Context, userID string) ([]domain.Message, error)
	GetSent(ctx context.Context, userID string) ([]domain.Message, error)
	GetUnreadCount(ctx context.Context, userID string) (int64, error)
	FindOne(ctx context.Context, id uuid.UUID, userID string) (*domain.Message, error)
	Create(ctx context.Context, senderID string, input domain.CreateMessageInput) (*domain.Message, error)
	MarkAsRead(ctx context.Context, id uuid.UUID, userID string) (*domain.Message, error)
	Delete(ctx context.Context, id uuid.UUID, userID string) error
}

type service struct {
	messageRepo repository.MessageRepository
	redis       *redis.Client
	cacheTTL    time.Duration
	now         func() time.Time
}

// NewService builds the message service. redis may be nil, in which case
// unread counts are always read from the repository.
func NewService(messageRepo repository.MessageRepository, redis *redis.Client, cacheTTL time.Duration) Service {
	return &service{
		messageRepo: messageRepo,
		redis:       redis,
		cacheTTL:    cacheTTL,
		now:         time.Now,
	}
}

const unreadGenerationTTL = 24 * time.Hour

func unreadCacheKey(userID string) string {
	return fmt.Sprintf("messages:unread:%s", userID)
}

// unreadGenerationKey is bumped on every invalidation. Cached counts carry the
// generation they were computed under and are ignored once it moves on.
func unreadGenerationKey(userID string) string {
	return fmt.Sprintf("messages:unread:%s:gen", userID)
}

func (s *service) GetInbox(ctx context.Context, userID string) ([]domain.Message, error) {
	return s.messageRepo.ListByReceiver(ctx, userID)
}

func (s *service) GetSent(ctx context.Context, userID string) ([]domain.Message, error) {
	return s.messageRepo.ListBySender(ctx, userID)
}

func (s *service) GetUnreadCount(ctx context.Context, userID string) (int64, error) {
	cacheKey := unreadCacheKey(userID)
	generation := ""

	if s.redis != nil {
		vals, err := s.redis.MGet(ctx, cacheKey, unreadGenerationKey(userID)).Result()
		if err == nil && len(vals) == 2 {
			generation = "0"
			if gen, ok := vals[1].(string); ok {
				generation = gen
			}
			if cached, ok := vals[0].(string); ok {
				if count, ok := parseCachedCount(cached, generation); ok {
					return count, nil
				}
			}
		}
	}

	count, err := s.messageRepo.CountUnread(ctx, userID)
	if err != nil {
		return 0, err
	}

	if s.redis != nil && generation != "" {
		value := generation + ":" + strconv.FormatInt(count, 10)
		_ = s.redis.Set(ctx, cacheKey, value, s.cacheTTL).Err()
	}

	return count, nil
}

// parseCachedCount reads a "<generation>:<count>" cache entry.
func parseCachedCount(cached, generation string) (int64, bool) {
	gen, raw, found := strings.Cut(cached, ":")
	if !found || gen != generation {
		return 0, false
	}
	count, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return count, true
}

func (s *service) FindOne(ctx context.Context, id uuid.UUID, userID string) (*domain.Message, error) {
	msg, err := s.messageRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, domain.ErrMessageNotFound
	}

	if !msg.IsParticipant(userID) {
		return nil, fmt.Errorf("%w: you do not have access to this message", domain.ErrForbidden)
	}

	return msg, nil
}

func (s *service) Create(ctx context.Context, senderID string, input domain.CreateMessageInput) (*domain.Message, error) {
	if err := validator.Struct(input); err != nil {
		return nil, err
	}

	msg := &domain.Message{
		ID:         uuid.New(),
		SenderID:   senderID,
		ReceiverID: input.ReceiverID,
		Subject:    input.Subject,
		Content:    input.Content,
		IsRead:     false,
		CreatedAt:  s.now(),
	}
	if input.ParentID != nil {
		parentID, err := uuid.Parse(*input.ParentID)
		if err != nil {
			return nil, domain.NewValidationError("parentId", "must be a valid UUID")
		}
		msg.ParentID = &parentID
	}

	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, err
	}

	s.invalidateUnread(ctx, msg.ReceiverID)

	return msg, nil
}

func (s *service) MarkAsRead(ctx context.Context, id uuid.UUID, userID string) (*domain.Message, error) {
	msg, err := s.FindOne(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if msg.ReceiverID != userID {
		return nil, fmt.Errorf("%w: only the receiver can mark a message as read", domain.ErrForbidden)
	}

	if msg.IsRead {
		return msg, nil
	}

	readAt := s.now()
	if err := s.messageRepo.MarkAsRead(ctx, msg.ID, readAt); err != nil {
		return nil, err
	}
	msg.IsRead = true
	msg.ReadAt = &readAt

	s.invalidateUnread(ctx, msg.ReceiverID)

	return msg, nil
}

// Delete removes the message for both parties.
func (s *service) Delete(ctx context.Context, id uuid.UUID, userID string) error {
	msg, err := s.FindOne(ctx, id, userID)
	if err != nil {
		return err
	}

	if err := s.messageRepo.Delete(ctx, msg.ID); err != nil {
		return err
	}

	s.invalidateUnread(ctx, msg.ReceiverID)
	return nil
}

func (s *service) invalidateUnread(ctx context.Context, userID string) {
	if s.redis == nil {
		return
	}
	genKey := unreadGenerationKey(userID)
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, unreadGenerationTTL)
		pipe.Del(ctx, unreadCacheKey(userID))
		return nil
	})
	if err != nil {
		logger.GetLogger().Warn().Err(err).Str("user_id", userID).Msg("message: unread cache invalidation failed")
	}
}
