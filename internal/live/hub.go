// Package live carries ticket change notifications from the store to
// connected admin clients.
package live

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/events"
)

// Message is the frame pushed to websocket clients.
type Message struct {
	Type     events.EventType `json:"type"`
	TicketID string           `json:"ticket_id"`
}

// Subscription is one connected client.
type Subscription struct {
	C       <-chan Message
	ch      chan Message
	dropped atomic.Int64
}

// Dropped returns how many messages were discarded because the client was slow.
func (s *Subscription) Dropped() int64 {
	return s.dropped.Load()
}

// Hub fans change events out to every subscription.
type Hub struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	buffer int
	logger *zap.Logger
}

// NewHub creates a hub whose subscriptions buffer up to buffer messages.
func NewHub(buffer int, logger *zap.Logger) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{subs: make(map[*Subscription]struct{}), buffer: buffer, logger: logger}
}

// Register subscribes the hub to every ticket change on the dispatcher.
func (h *Hub) Register(dispatcher events.Dispatcher) {
	events.SubscribeChanges(dispatcher, func(_ context.Context, e events.Event) error {
		h.Broadcast(Message{Type: e.Type, TicketID: e.TicketID})
		return nil
	})
}

// Subscribe adds a client.
func (h *Hub) Subscribe() *Subscription {
	ch := make(chan Message, h.buffer)
	sub := &Subscription{C: ch, ch: ch}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

// Unsubscribe removes a client and closes its channel. Safe to call twice.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub]; !ok {
		return
	}
	delete(h.subs, sub)
	close(sub.ch)
}

// Broadcast delivers m without blocking. A full subscriber misses the
// message; it catches up on the next one because clients always refetch.
func (h *Hub) Broadcast(m Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		select {
		case sub.ch <- m:
		default:
			sub.dropped.Add(1)
			h.logger.Debug("dropping live message for slow client", zap.String("ticket_id", m.TicketID))
		}
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
