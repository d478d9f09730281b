// Package events fans engine events out to in-process subscribers.
package events

import (
	"sync"

	"carshare-escrow/internal/domain"
	"carshare-escrow/internal/logger"
)

const defaultBuffer = 64

// Publisher is what the engine needs from the hub.
type Publisher interface {
	Publish(events ...domain.Event)
}

type Hub struct {
	mu     sync.RWMutex
	subs   map[int]chan domain.Event
	nextID int
	buffer int
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan domain.Event), buffer: defaultBuffer}
}

// Subscribe returns a channel of events and a function that detaches it. A
// subscriber that falls a full buffer behind misses events rather than
// stalling the engine.
func (h *Hub) Subscribe() (<-chan domain.Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan domain.Event, h.buffer)
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(ch)
		})
	}
}

func (h *Hub) Publish(events ...domain.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, e := range events {
		for id, ch := range h.subs {
			select {
			case ch <- e:
			default:
				logger.Warn("Dropping event for slow subscriber", "subscriber", id, "type", e.Type)
			}
		}
	}
}

func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
