package ports

import (
	"context"
	"time"

	"playtab/internal/domain"
)

// Change is a "something changed" notification from the remote store.
// The payload is deliberately thin: consumers re-fetch the full
// collection rather than trusting a partial merge.
type Change struct {
	Collection string
	At         time.Time
}

// ChangeFeed is the optional push channel of a store. Stores without
// one (sqlite, memory in offline mode) simply don't implement it; the
// poll fallback covers correctness, the feed only improves latency.
type ChangeFeed interface {
	Changes(ctx context.Context) (<-chan Change, error)
}

// EventKind labels in-process broadcast events.
type EventKind string

const (
	// EventMutation announces that this client just persisted a
	// mutation; the coordinator reacts by re-fetching.
	EventMutation EventKind = "mutation"
	// EventSnapshot carries a freshly fetched copy of the active
	// collection to all views in this runtime.
	EventSnapshot EventKind = "snapshot"
)

// Event is the unit of in-process broadcast between views of one client
// runtime. Delivery is best-effort and in-memory only.
type Event struct {
	Kind     EventKind
	Origin   string
	Sessions []domain.Session
}

// Publisher fans out an event to all subscribers in this runtime.
type Publisher interface {
	Publish(e Event)
}

// BroadcastBus is the full in-process broadcast surface.
type BroadcastBus interface {
	Publisher
	Subscribe() (<-chan Event, func())
}
