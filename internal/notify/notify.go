// Package notify tells subscribers that an owner's records changed. Signals
// carry no payload; receivers reload the full set.
package notify

import (
	"context"
	"sync"
)

type Bus interface {
	Publish(ctx context.Context, owner string) error
	// Subscribe returns a channel that receives a signal after every change
	// to owner's records. Signals coalesce: a slow reader sees at least one
	// signal after the last change, never a backlog.
	Subscribe(owner string) (<-chan struct{}, func())
}

// Hub is the in-process Bus. The postgres and amqp buses fan out through one.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[chan struct{}]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan struct{}]struct{})}
}

func (h *Hub) Publish(_ context.Context, owner string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs[owner] {
		signal(ch)
	}

	return nil
}

// PublishAll signals every subscriber, e.g. after a reconnect may have lost
// notifications.
func (h *Hub) PublishAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, set := range h.subs {
		for ch := range set {
			signal(ch)
		}
	}
}

func (h *Hub) Subscribe(owner string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	h.mu.Lock()
	set, ok := h.subs[owner]
	if !ok {
		set = make(map[chan struct{}]struct{})
		h.subs[owner] = set
	}
	set[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once

	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()

			delete(set, ch)
			if len(set) == 0 {
				delete(h.subs, owner)
			}

			close(ch)
		})
	}
}

// Subscribers is the number of live subscriptions for owner.
func (h *Hub) Subscribers(owner string) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.subs[owner])
}

func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
