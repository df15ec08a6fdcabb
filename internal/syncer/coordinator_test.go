package syncer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"playtab/internal/adapters/memstore"
	"playtab/internal/domain"
	"playtab/internal/ports"
)

type countingExpirer struct {
	mu    sync.Mutex
	calls map[int64]int
	inner Expirer
}

func newCountingExpirer(inner Expirer) *countingExpirer {
	return &countingExpirer{calls: make(map[int64]int), inner: inner}
}

func (e *countingExpirer) Expire(ctx context.Context, id int64) error {
	e.mu.Lock()
	e.calls[id]++
	e.mu.Unlock()
	if e.inner != nil {
		return e.inner.Expire(ctx, id)
	}
	return nil
}

func (e *countingExpirer) count(id int64) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls[id]
}

type noopExpirer struct{}

func (noopExpirer) Expire(ctx context.Context, id int64) error { return nil }

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	require.Fail(t, "condition not met within timeout")
}

func startCoordinator(t *testing.T, c *Coordinator) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = c.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("coordinator did not shut down")
		}
	})
}

func TestCoordinator_InitialFetchPopulatesView(t *testing.T) {
	store := memstore.New()
	_, err := store.CreateSession(context.Background(),
		domain.NewFixedSession("Ali", "room-2", "", 60, time.Now()))
	require.NoError(t, err)

	c := New(store, nil, NewBroadcaster(), noopExpirer{}, Options{
		PollInterval:  time.Hour, // poll out of the picture
		SweepInterval: time.Hour,
	})
	startCoordinator(t, c)

	waitFor(t, time.Second, func() bool { return len(c.Sessions()) == 1 })
}

func TestCoordinator_PollReplacesCollectionWholesale(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()

	id, err := store.CreateSession(ctx, domain.NewFixedSession("Ali", "room-2", "", 60, time.Now()))
	require.NoError(t, err)

	c := New(store, nil, NewBroadcaster(), noopExpirer{}, Options{
		PollInterval:  20 * time.Millisecond,
		SweepInterval: time.Hour,
	})
	startCoordinator(t, c)
	waitFor(t, time.Second, func() bool { return len(c.Sessions()) == 1 })

	// Another client deletes the session behind our back; the next poll
	// replaces our view even though we never saw a notification.
	require.NoError(t, store.DeleteSession(ctx, id))
	waitFor(t, time.Second, func() bool { return len(c.Sessions()) == 0 })
}

func TestCoordinator_ChangeFeedTriggersRefetch(t *testing.T) {
	store := memstore.New()

	c := New(store, store, NewBroadcaster(), noopExpirer{}, Options{
		PollInterval:  time.Hour, // feed must do the work
		SweepInterval: time.Hour,
	})
	startCoordinator(t, c)

	_, err := store.CreateSession(context.Background(),
		domain.NewFixedSession("Ali", "room-2", "", 60, time.Now()))
	require.NoError(t, err)

	waitFor(t, time.Second, func() bool { return len(c.Sessions()) == 1 })
}

func TestCoordinator_BurstOfWritesYieldsTrailingRefetch(t *testing.T) {
	store := memstore.New()

	c := New(store, store, NewBroadcaster(), noopExpirer{}, Options{
		PollInterval:  time.Hour, // feed must do the work
		SweepInterval: time.Hour,
	})
	startCoordinator(t, c)

	ctx := context.Background()
	_, err := store.CreateSession(ctx,
		domain.NewFixedSession("Ali", "room-2", "", 60, time.Now()))
	require.NoError(t, err)
	waitFor(t, time.Second, func() bool { return len(c.Sessions()) == 1 })

	// Two writes land inside the debounce window. The second one must
	// still reach the view long before the next poll.
	_, err = store.CreateSession(ctx,
		domain.NewFixedSession("Bea", "room-3", "", 60, time.Now()))
	require.NoError(t, err)
	_, err = store.CreateSession(ctx,
		domain.NewFixedSession("Carl", "room-4", "", 60, time.Now()))
	require.NoError(t, err)

	waitFor(t, 2*time.Second, func() bool { return len(c.Sessions()) == 3 })
}

func TestCoordinator_LocalMutationEventTriggersRefetch(t *testing.T) {
	store := memstore.New()
	bus := NewBroadcaster()

	c := New(store, nil, bus, noopExpirer{}, Options{
		PollInterval:  time.Hour,
		SweepInterval: time.Hour,
	})
	startCoordinator(t, c)

	_, err := store.CreateSession(context.Background(),
		domain.NewFixedSession("Ali", "room-2", "", 60, time.Now()))
	require.NoError(t, err)

	// What the session service does after persisting.
	bus.Publish(ports.Event{Kind: ports.EventMutation})

	waitFor(t, time.Second, func() bool { return len(c.Sessions()) == 1 })
}

func TestCoordinator_SnapshotRepublishedToSubscribers(t *testing.T) {
	store := memstore.New()
	bus := NewBroadcaster()

	ch, cancel := bus.Subscribe()
	defer cancel()

	c := New(store, store, bus, noopExpirer{}, Options{
		PollInterval:  time.Hour,
		SweepInterval: time.Hour,
	})
	startCoordinator(t, c)

	_, err := store.CreateSession(context.Background(),
		domain.NewFixedSession("Ali", "room-2", "", 60, time.Now()))
	require.NoError(t, err)

	deadline := time.After(time.Second)
	for {
		select {
		case e := <-ch:
			if e.Kind == ports.EventSnapshot && len(e.Sessions) == 1 {
				return
			}
		case <-deadline:
			t.Fatal("no snapshot with the new session arrived")
		}
	}
}

func TestCoordinator_SweepExpiresOnce(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()

	// A session that is already past its end.
	sess := domain.NewFixedSession("Ali", "room-2", "", 1, time.Now().Add(-5*time.Minute))
	id, err := store.CreateSession(ctx, sess)
	require.NoError(t, err)

	expirer := newCountingExpirer(nil) // does not remove the session
	c := New(store, nil, NewBroadcaster(), expirer, Options{
		PollInterval:  time.Hour,
		SweepInterval: 10 * time.Millisecond,
	})
	startCoordinator(t, c)

	waitFor(t, time.Second, func() bool { return expirer.count(id) == 1 })

	// The session stays in view (our expirer is a stub) but the guard
	// keeps the sweep from firing again.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, expirer.count(id))
}

func TestCoordinator_SweepSkipsPausedAndProRated(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()

	paused := domain.NewFixedSession("Ali", "room-2", "", 1, time.Now().Add(-time.Hour))
	require.NoError(t, paused.Pause(time.Now().Add(-30*time.Minute)))
	_, err := store.CreateSession(ctx, paused)
	require.NoError(t, err)

	hourly := domain.NewProRatedSession("Sam", "table-1", "",
		decimal.NewFromInt(159), time.Now().Add(-3*time.Hour))
	_, err = store.CreateSession(ctx, hourly)
	require.NoError(t, err)

	expirer := newCountingExpirer(nil)
	c := New(store, nil, NewBroadcaster(), expirer, Options{
		PollInterval:  time.Hour,
		SweepInterval: 10 * time.Millisecond,
	})
	startCoordinator(t, c)

	waitFor(t, 500*time.Millisecond, func() bool { return len(c.Sessions()) == 2 })
	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, expirer.calls)
}

func TestBroadcaster_SubscribeAndCancel(t *testing.T) {
	bus := NewBroadcaster()

	ch1, cancel1 := bus.Subscribe()
	ch2, cancel2 := bus.Subscribe()
	defer cancel2()

	bus.Publish(ports.Event{Kind: ports.EventMutation})

	e1 := <-ch1
	e2 := <-ch2
	assert.Equal(t, ports.EventMutation, e1.Kind)
	assert.Equal(t, bus.Origin(), e1.Origin, "bus stamps its origin")
	assert.Equal(t, e1.Origin, e2.Origin)

	// After cancel the channel is closed and receives nothing further.
	cancel1()
	_, open := <-ch1
	assert.False(t, open)

	bus.Publish(ports.Event{Kind: ports.EventMutation})
	e2 = <-ch2
	assert.Equal(t, ports.EventMutation, e2.Kind)
}

func TestBroadcaster_SlowSubscriberDoesNotBlock(t *testing.T) {
	bus := NewBroadcaster()

	_, cancel := bus.Subscribe() // never drained
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*3; i++ {
			bus.Publish(ports.Event{Kind: ports.EventMutation})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publisher blocked on a slow subscriber")
	}
}
