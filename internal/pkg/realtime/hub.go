package realtime

import (
	"context"
	"sync"
)

const subscriberBuffer = 16

// Event is one server-sent event. Type becomes the SSE "event:" name and
// Data is JSON-encoded into the "data:" line.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Publisher delivers an event to every live subscriber of a user.
type Publisher interface {
	Publish(ctx context.Context, userID string, ev Event) error
}

// Hub keeps the process-local subscribers grouped by user id.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{subscribers: make(map[string]map[chan Event]struct{})}
}

// Subscribe registers a subscriber for userID. The returned func must be
// called on disconnect; it closes the channel.
func (h *Hub) Subscribe(userID string) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	set, ok := h.subscribers[userID]
	if !ok {
		set = make(map[chan Event]struct{})
		h.subscribers[userID] = set
	}
	set[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(set, ch)
			if len(set) == 0 {
				delete(h.subscribers, userID)
			}
			h.mu.Unlock()
			close(ch)
		})
	}

	return ch, unsubscribe
}

// Deliver fans ev out to the local subscribers of userID. Subscribers whose
// buffer is full miss the event.
func (h *Hub) Deliver(userID string, ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers[userID] {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (h *Hub) Publish(_ context.Context, userID string, ev Event) error {
	h.Deliver(userID, ev)
	return nil
}

// Subscribers returns how many live subscribers userID has.
func (h *Hub) Subscribers(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[userID])
}
