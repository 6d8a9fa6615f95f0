package notify

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Hub fans events out to every subscriber.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[*Subscriber]struct{}
	logger      *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		subscribers: make(map[*Subscriber]struct{}),
		logger:      logger,
	}
}

// Subscriber receives encoded events on C until it is unsubscribed.
type Subscriber struct {
	C <-chan []byte

	send chan []byte
}

// Subscribe registers a new subscriber with a buffer of size events.
func (h *Hub) Subscribe(size int) *Subscriber {
	ch := make(chan []byte, size)
	s := &Subscriber{C: ch, send: ch}

	h.mu.Lock()
	h.subscribers[s] = struct{}{}
	h.mu.Unlock()
	return s
}

// Unsubscribe removes s and closes its channel. Safe to call twice.
func (h *Hub) Unsubscribe(s *Subscriber) {
	h.mu.Lock()
	if _, ok := h.subscribers[s]; ok {
		delete(h.subscribers, s)
		close(s.send)
	}
	h.mu.Unlock()
}

// Publish encodes e and offers it to every subscriber.
func (h *Hub) Publish(e Event) {
	data, err := json.Marshal(e)
	if err != nil {
		h.logger.Error("marshal event", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for s := range h.subscribers {
		select {
		case s.send <- data:
		default:
			h.logger.Debug("subscriber buffer full, dropping event", "kind", e.Kind)
		}
	}
}

func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
