package message

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ham-backend/internal/domain"
	"ham-backend/internal/mocks"
	"ham-backend/internal/repository"
)

// newTestService returns a service over in-memory storage whose clock
// advances one second per call, so ordering by createdAt is deterministic.
func newTestService(t *testing.T, rdb *redis.Client) *service {
	t.Helper()
	svc := NewService(repository.NewMemoryRepositories().Message, rdb, time.Minute).(*service)
	clock := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return svc
}

func send(t *testing.T, svc Service, from, to, subject string) *domain.Message {
	t.Helper()
	msg, err := svc.Create(context.Background(), from, domain.CreateMessageInput{
		ReceiverID: to,
		Subject:    subject,
		Content:    "Hello there",
	})
	require.NoError(t, err)
	return msg
}

func TestMessageService_Scenario(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)
	u1, u2 := uuid.NewString(), uuid.NewString()

	a, err := svc.Create(ctx, u1, domain.CreateMessageInput{ReceiverID: u2, Subject: "Hi", Content: "Hello there"})
	require.NoError(t, err)
	assert.False(t, a.IsRead)
	assert.Equal(t, u1, a.SenderID)
	assert.NotEqual(t, uuid.Nil, a.ID)

	inbox, err := svc.GetInbox(ctx, u2)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, a.ID, inbox[0].ID)
	assert.False(t, inbox[0].IsRead)

	sent, err := svc.GetSent(ctx, u1)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, a.ID, sent[0].ID)

	read, err := svc.MarkAsRead(ctx, a.ID, u2)
	require.NoError(t, err)
	assert.True(t, read.IsRead)

	_, err = svc.MarkAsRead(ctx, a.ID, u1)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestMessageService_GetInbox(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)
	u1, u2, u3 := uuid.NewString(), uuid.NewString(), uuid.NewString()

	t.Run("Empty", func(t *testing.T) {
		inbox, err := svc.GetInbox(ctx, u2)
		require.NoError(t, err)
		assert.NotNil(t, inbox)
		assert.Empty(t, inbox)
	})

	t.Run("Newest First", func(t *testing.T) {
		first := send(t, svc, u1, u2, "first")
		second := send(t, svc, u3, u2, "second")
		send(t, svc, u2, u1, "not in inbox")

		inbox, err := svc.GetInbox(ctx, u2)
		require.NoError(t, err)
		require.Len(t, inbox, 2)
		assert.Equal(t, second.ID, inbox[0].ID)
		assert.Equal(t, first.ID, inbox[1].ID)
	})
}

func TestMessageService_UnreadCountMatchesInbox(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)
	u1, u2 := uuid.NewString(), uuid.NewString()

	a := send(t, svc, u1, u2, "a")
	send(t, svc, u1, u2, "b")
	send(t, svc, u2, u1, "c")
	_, err := svc.MarkAsRead(ctx, a.ID, u2)
	require.NoError(t, err)

	for _, user := range []string{u1, u2} {
		inbox, err := svc.GetInbox(ctx, user)
		require.NoError(t, err)
		var unread int64
		for _, m := range inbox {
			if !m.IsRead {
				unread++
			}
		}

		count, err := svc.GetUnreadCount(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, unread, count)
	}
}

func TestMessageService_FindOne(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)
	u1, u2 := uuid.NewString(), uuid.NewString()
	a := send(t, svc, u1, u2, "Hi")

	t.Run("Sender And Receiver", func(t *testing.T) {
		for _, user := range []string{u1, u2} {
			got, err := svc.FindOne(ctx, a.ID, user)
			require.NoError(t, err)
			assert.Equal(t, a.ID, got.ID)
		}
	})

	t.Run("Outsider Forbidden", func(t *testing.T) {
		_, err := svc.FindOne(ctx, a.ID, uuid.NewString())
		assert.ErrorIs(t, err, domain.ErrForbidden)
		assert.NotErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Missing Not Found", func(t *testing.T) {
		_, err := svc.FindOne(ctx, uuid.New(), u1)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestMessageService_Create(t *testing.T) {
	ctx := context.Background()
	u1, u2 := uuid.NewString(), uuid.NewString()

	t.Run("With Parent", func(t *testing.T) {
		svc := newTestService(t, nil)
		parent := send(t, svc, u2, u1, "question")
		parentID := parent.ID.String()

		reply, err := svc.Create(ctx, u1, domain.CreateMessageInput{
			ReceiverID: u2, Subject: "Re: question", Content: "answer", ParentID: &parentID,
		})
		require.NoError(t, err)
		require.NotNil(t, reply.ParentID)
		assert.Equal(t, parent.ID, *reply.ParentID)
	})

	t.Run("Validation Happens Before Storage", func(t *testing.T) {
		mockRepo := new(mocks.MessageRepository)
		svc := NewService(mockRepo, nil, time.Minute)

		cases := []domain.CreateMessageInput{
			{ReceiverID: "u2", Subject: "Hi", Content: "x"},
			{ReceiverID: u2, Subject: "", Content: "x"},
			{ReceiverID: u2, Subject: strings.Repeat("s", 101), Content: "x"},
			{ReceiverID: u2, Subject: "Hi", Content: ""},
			{ReceiverID: u2, Subject: "Hi", Content: strings.Repeat("c", 5001)},
		}
		for _, in := range cases {
			msg, err := svc.Create(ctx, u1, in)
			assert.Nil(t, msg)
			var verr *domain.ValidationError
			assert.True(t, errors.As(err, &verr), "expected validation error for %+v", in)
		}

		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Repository Error", func(t *testing.T) {
		mockRepo := new(mocks.MessageRepository)
		svc := NewService(mockRepo, nil, time.Minute)
		mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.Message")).Return(errors.New("db down")).Once()

		msg, err := svc.Create(ctx, u1, domain.CreateMessageInput{ReceiverID: u2, Subject: "Hi", Content: "x"})
		assert.Nil(t, msg)
		assert.EqualError(t, err, "db down")
		mockRepo.AssertExpectations(t)
	})
}

func TestMessageService_MarkAsRead(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)
	u1, u2 := uuid.NewString(), uuid.NewString()
	a := send(t, svc, u1, u2, "Hi")

	t.Run("Idempotent", func(t *testing.T) {
		first, err := svc.MarkAsRead(ctx, a.ID, u2)
		require.NoError(t, err)
		second, err := svc.MarkAsRead(ctx, a.ID, u2)
		require.NoError(t, err)

		assert.True(t, second.IsRead)
		require.NotNil(t, first.ReadAt)
		require.NotNil(t, second.ReadAt)
		assert.True(t, first.ReadAt.Equal(*second.ReadAt))
	})

	t.Run("Sender Forbidden", func(t *testing.T) {
		_, err := svc.MarkAsRead(ctx, a.ID, u1)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("Outsider Forbidden", func(t *testing.T) {
		_, err := svc.MarkAsRead(ctx, a.ID, uuid.NewString())
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("Missing Not Found", func(t *testing.T) {
		_, err := svc.MarkAsRead(ctx, uuid.New(), u2)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestMessageService_Delete(t *testing.T) {
	ctx := context.Background()
	u1, u2 := uuid.NewString(), uuid.NewString()

	t.Run("Receiver Deletes For Both", func(t *testing.T) {
		svc := newTestService(t, nil)
		a := send(t, svc, u1, u2, "Hi")

		require.NoError(t, svc.Delete(ctx, a.ID, u2))

		_, err := svc.FindOne(ctx, a.ID, u1)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.NotErrorIs(t, err, domain.ErrForbidden)

		sent, err := svc.GetSent(ctx, u1)
		require.NoError(t, err)
		assert.Empty(t, sent)
	})

	t.Run("Sender May Delete", func(t *testing.T) {
		svc := newTestService(t, nil)
		a := send(t, svc, u1, u2, "Hi")
		assert.NoError(t, svc.Delete(ctx, a.ID, u1))
	})

	t.Run("Outsider Forbidden", func(t *testing.T) {
		svc := newTestService(t, nil)
		a := send(t, svc, u1, u2, "Hi")

		err := svc.Delete(ctx, a.ID, uuid.NewString())
		assert.ErrorIs(t, err, domain.ErrForbidden)

		_, err = svc.FindOne(ctx, a.ID, u1)
		assert.NoError(t, err)
	})

	t.Run("Missing Not Found", func(t *testing.T) {
		svc := newTestService(t, nil)
		assert.ErrorIs(t, svc.Delete(ctx, uuid.New(), u1), domain.ErrNotFound)
	})
}

func TestMessageService_UnreadCache(t *testing.T) {
	ctx := context.Background()
	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer rdb.Close()

	svc := newTestService(t, rdb)
	u1, u2 := uuid.NewString(), uuid.NewString()

	count, err := svc.GetUnreadCount(ctx, u2)
	require.NoError(t, err)
	assert.Zero(t, count)

	cached, err := s.Get(unreadCacheKey(u2))
	require.NoError(t, err)
	assert.Equal(t, "0:0", cached)

	a := send(t, svc, u1, u2, "Hi")
	assert.False(t, s.Exists(unreadCacheKey(u2)), "create must invalidate the receiver's count")

	count, err = svc.GetUnreadCount(ctx, u2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	_, err = svc.MarkAsRead(ctx, a.ID, u2)
	require.NoError(t, err)
	count, err = svc.GetUnreadCount(ctx, u2)
	require.NoError(t, err)
	assert.Zero(t, count)

	send(t, svc, u1, u2, "again")
	_, err = svc.GetUnreadCount(ctx, u2)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, a.ID, u1))
	assert.False(t, s.Exists(unreadCacheKey(u2)), "delete must invalidate the receiver's count")
}

func TestMessageService_UnreadCacheHit(t *testing.T) {
	ctx := context.Background()
	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer rdb.Close()

	mockRepo := new(mocks.MessageRepository)
	svc := NewService(mockRepo, rdb, time.Minute)

	require.NoError(t, s.Set(unreadCacheKey("u2"), "0:7"))

	count, err := svc.GetUnreadCount(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
	mockRepo.AssertNotCalled(t, "CountUnread", mock.Anything, mock.Anything)
}

func TestMessageService_UnreadCacheStaleGeneration(t *testing.T) {
	ctx := context.Background()
	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer rdb.Close()

	mockRepo := new(mocks.MessageRepository)
	mockRepo.On("CountUnread", mock.Anything, "u2").Return(int64(2), nil).Once()
	svc := NewService(mockRepo, rdb, time.Minute)

	require.NoError(t, s.Set(unreadCacheKey("u2"), "3:7"))
	require.NoError(t, s.Set(unreadGenerationKey("u2"), "4"))

	count, err := svc.GetUnreadCount(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	cached, err := s.Get(unreadCacheKey("u2"))
	require.NoError(t, err)
	assert.Equal(t, "4:2", cached)
	mockRepo.AssertExpectations(t)
}

func TestMessageService_UnreadCacheInvalidatedDuringCount(t *testing.T) {
	ctx := context.Background()
	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer rdb.Close()

	mockRepo := new(mocks.MessageRepository)
	svc := NewService(mockRepo, rdb, time.Minute).(*service)

	// A message arrives while the first count is in flight.
	mockRepo.On("CountUnread", mock.Anything, "u2").
		Run(func(mock.Arguments) { svc.invalidateUnread(ctx, "u2") }).
		Return(int64(0), nil).Once()
	mockRepo.On("CountUnread", mock.Anything, "u2").Return(int64(1), nil).Once()

	count, err := svc.GetUnreadCount(ctx, "u2")
	require.NoError(t, err)
	assert.Zero(t, count)

	count, err = svc.GetUnreadCount(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = svc.GetUnreadCount(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	mockRepo.AssertExpectations(t)
}
