package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"ham-backend/internal/pkg/logger"
)

type envelope struct {
	UserID string          `json:"user_id"`
	Type   string          `json:"type"`
	Data   json.RawMessage `json:"data,omitempty"`
	SentAt time.Time       `json:"sent_at"`
}

// RedisBridge publishes events on a shared Redis channel and replays every
// envelope it receives into the local Hub, so a subscriber connected to any
// instance sees events produced on all of them.
type RedisBridge struct {
	client  *redis.Client
	channel string
	hub     *Hub
}

func NewRedisBridge(client *redis.Client, channel string, hub *Hub) *RedisBridge {
	return &RedisBridge{client: client, channel: channel, hub: hub}
}

func (b *RedisBridge) Publish(ctx context.Context, userID string, ev Event) error {
	data, err := json.Marshal(ev.Data)
	if err != nil {
		return err
	}

	body, err := json.Marshal(envelope{
		UserID: userID,
		Type:   ev.Type,
		Data:   data,
		SentAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	return b.client.Publish(ctx, b.channel, body).Err()
}

// Start subscribes to the channel and returns once the subscription is
// confirmed. Envelopes are replayed until ctx is cancelled.
func (b *RedisBridge) Start(ctx context.Context) error {
	pubsub := b.client.Subscribe(ctx, b.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return err
	}

	go func() {
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				b.replay(msg.Payload)
			}
		}
	}()

	logger.GetLogger().Info().Str("channel", b.channel).Msg("realtime: redis bridge subscribed")
	return nil
}

func (b *RedisBridge) replay(payload string) {
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		logger.GetLogger().Error().Err(err).Str("channel", b.channel).Msg("realtime: decode envelope")
		return
	}
	if env.UserID == "" || env.Type == "" {
		return
	}
	b.hub.Deliver(env.UserID, Event{Type: env.Type, Data: env.Data})
}
