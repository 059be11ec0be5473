// Package realtime holds the registry of open notification streams. One
// user may hold several subscriptions at once (multiple tabs); publishing
// to a user without subscribers drops the event, since the notification
// row itself is durable.
package realtime

import (
	"sync"

	"github.com/google/uuid"

	"viagens-crm/internal/domain"
)

const subscriberBuffer = 16

type Subscriber struct {
	UserID uuid.UUID
	C      chan domain.Notification
}

type Hub struct {
	mu     sync.RWMutex
	subs   map[uuid.UUID]map[*Subscriber]struct{}
	closed bool
}

func NewHub() *Hub {
	return &Hub{
		subs: make(map[uuid.UUID]map[*Subscriber]struct{}),
	}
}

// Subscribe registers a long-lived connection for the user. The caller must
// eventually call Unsubscribe to release it.
func (h *Hub) Subscribe(userID uuid.UUID) *Subscriber {
	sub := &Subscriber{
		UserID: userID,
		C:      make(chan domain.Notification, subscriberBuffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(sub.C)
		return sub
	}
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[*Subscriber]struct{})
	}
	h.subs[userID][sub] = struct{}{}
	return sub
}

func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.subs[sub.UserID]
	if !ok {
		return
	}
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(h.subs, sub.UserID)
	}
	close(sub.C)
}

// Publish fans the notification out to every open connection for the user.
// It never blocks: a subscriber whose buffer is full misses the event and
// picks it up on the next list fetch.
func (h *Hub) Publish(userID uuid.UUID, n domain.Notification) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs[userID] {
		select {
		case sub.C <- n:
		default:
		}
	}
}

// SubscriberCount reports open connections for the user.
func (h *Hub) SubscriberCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}

// Close shuts every stream down, typically on server shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for _, set := range h.subs {
		for sub := range set {
			close(sub.C)
		}
	}
	h.subs = make(map[uuid.UUID]map[*Subscriber]struct{})
}
