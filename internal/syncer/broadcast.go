// Package syncer keeps a client's view of the active-session
// collection converged with the shared remote store. Three independent
// channels feed one reconciliation function: the in-process broadcast
// bus, the store's change feed, and a periodic poll. Any channel can be
// absent without breaking correctness, only timeliness.
package syncer

import (
	"sync"

	"github.com/google/uuid"

	"playtab/internal/ports"
)

const subscriberBuffer = 16

// Broadcaster fans mutations out to all views within one client
// runtime. Delivery is best-effort and in-memory only: a slow
// subscriber loses events instead of blocking the publisher, and the
// next snapshot makes it whole again.
type Broadcaster struct {
	origin string

	mu   sync.Mutex
	subs map[int]chan ports.Event
	next int
}

var _ ports.BroadcastBus = (*Broadcaster)(nil)

// NewBroadcaster creates a bus with a fresh runtime identity.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		origin: uuid.New().String(),
		subs:   make(map[int]chan ports.Event),
	}
}

// Origin is the identity stamped on events published through this bus.
func (b *Broadcaster) Origin() string {
	return b.origin
}

// Publish sends the event to every subscriber without blocking.
func (b *Broadcaster) Publish(e ports.Event) {
	if e.Origin == "" {
		e.Origin = b.origin
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
			// Subscriber is behind; it catches up on the next snapshot.
		}
	}
}

// SubscriberCount reports how many views are currently subscribed.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Subscribe registers a view. The returned cancel must be called on
// view teardown so no events leak against a dead consumer.
func (b *Broadcaster) Subscribe() (<-chan ports.Event, func()) {
	ch := make(chan ports.Event, subscriberBuffer)

	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = ch
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}
