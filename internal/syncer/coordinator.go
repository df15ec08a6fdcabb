package syncer

import (
	"context"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/sync/errgroup"

	"playtab/internal/domain"
	"playtab/internal/logging"
	"playtab/internal/ports"
)

const (
	// DefaultPollInterval is the full-reconciliation fallback cadence
	// that masks missed or delayed change notifications.
	DefaultPollInterval = 30 * time.Second
	// DefaultSweepInterval is the local expiry sweep cadence. The sweep
	// works purely from stored timestamps, so expiry is detected even
	// with the remote store unreachable; its latency is this interval.
	DefaultSweepInterval = 100 * time.Millisecond

	feedDebounce   = 250 * time.Millisecond
	expireGuardTTL = 10 * time.Second
)

// Expirer archives sessions whose countdown reached zero. Implemented
// by the session service.
type Expirer interface {
	Expire(ctx context.Context, id int64) error
}

// Options tunes the coordinator's timers. Zero values take defaults.
type Options struct {
	PollInterval  time.Duration
	SweepInterval time.Duration
}

// Coordinator maintains a locally-consistent view of the active-session
// collection. Every fetch replaces the collection wholesale, last
// fetch wins with no field-level merge, and is republished on the bus so
// divergent views reconverge within one poll interval.
type Coordinator struct {
	store   ports.SessionStore
	feed    ports.ChangeFeed // nil when the store has no push channel
	bus     ports.BroadcastBus
	expirer Expirer

	pollInterval  time.Duration
	sweepInterval time.Duration
	now           func() time.Time

	mu       sync.RWMutex
	sessions []domain.Session

	debounce    *ttlcache.Cache[string, time.Time]
	expireGuard *ttlcache.Cache[int64, time.Time]
}

// New creates a coordinator. feed may be nil; the poll loop alone keeps
// the view correct.
func New(store ports.SessionStore, feed ports.ChangeFeed, bus ports.BroadcastBus, expirer Expirer, opts Options) *Coordinator {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = DefaultSweepInterval
	}
	return &Coordinator{
		store:         store,
		feed:          feed,
		bus:           bus,
		expirer:       expirer,
		pollInterval:  opts.PollInterval,
		sweepInterval: opts.SweepInterval,
		now:           time.Now,
		debounce: ttlcache.New[string, time.Time](
			ttlcache.WithTTL[string, time.Time](feedDebounce),
			ttlcache.WithDisableTouchOnHit[string, time.Time](),
		),
		expireGuard: ttlcache.New[int64, time.Time](
			ttlcache.WithTTL[int64, time.Time](expireGuardTTL),
			ttlcache.WithDisableTouchOnHit[int64, time.Time](),
		),
	}
}

// Sessions returns a copy of the current local view.
func (c *Coordinator) Sessions() []domain.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Session, len(c.sessions))
	copy(out, c.sessions)
	return out
}

// Run drives all channels until ctx is cancelled. All tickers and the
// feed subscription are torn down on return.
func (c *Coordinator) Run(ctx context.Context) error {
	go c.debounce.Start()
	go c.expireGuard.Start()
	defer c.debounce.Stop()
	defer c.expireGuard.Stop()

	c.refetch(ctx)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.pollLoop(ctx) })
	g.Go(func() error { return c.sweepLoop(ctx) })
	g.Go(func() error { return c.busLoop(ctx) })
	if c.feed != nil {
		g.Go(func() error { return c.feedLoop(ctx) })
	}
	return g.Wait()
}

func (c *Coordinator) pollLoop(ctx context.Context) error {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			c.refetch(ctx)
		}
	}
}

func (c *Coordinator) feedLoop(ctx context.Context) error {
	ch, err := c.feed.Changes(ctx)
	if err != nil {
		// Degrade to poll-only; correctness is unaffected.
		logging.Logger.Warn("Change feed unavailable, relying on poll",
			"error", err)
		return nil
	}

	// flush fires once after a burst quiets so the last write of the
	// burst is never lost to the debounce window.
	var flush <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-flush:
			flush = nil
			c.refetch(ctx)
		case change, ok := <-ch:
			if !ok {
				logging.Logger.Warn("Change feed closed, relying on poll")
				return nil
			}
			// A burst of writes collapses into one immediate refetch
			// plus one trailing refetch; the push payload itself is
			// never trusted for a partial merge.
			if c.debounce.Has(change.Collection) {
				if flush == nil {
					flush = time.After(feedDebounce)
				}
				continue
			}
			c.debounce.Set(change.Collection, change.At, ttlcache.DefaultTTL)
			c.refetch(ctx)
		}
	}
}

func (c *Coordinator) busLoop(ctx context.Context) error {
	ch, cancel := c.bus.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-ch:
			if !ok {
				return nil
			}
			if e.Kind == ports.EventMutation {
				c.refetch(ctx)
			}
		}
	}
}

func (c *Coordinator) sweepLoop(ctx context.Context) error {
	ticker := time.NewTicker(c.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			c.sweep(ctx)
		}
	}
}

// sweep recomputes remaining time for every fixed session from local
// timestamps only, with no network, and fires the expiry transition. The
// guard keeps a session from being expired twice while the archive is
// in flight.
func (c *Coordinator) sweep(ctx context.Context) {
	now := c.now()
	for _, s := range c.Sessions() {
		if !s.Expired(now) {
			continue
		}
		if c.expireGuard.Has(s.ID) {
			continue
		}
		c.expireGuard.Set(s.ID, now, ttlcache.DefaultTTL)

		if err := c.expirer.Expire(ctx, s.ID); err != nil {
			logging.Logger.Warn("Expiry failed, will retry after guard expires",
				"error", err,
				"session_id", s.ID)
		}
	}
}

// refetch replaces the local collection with a fresh copy of the store
// and republishes it. A transient remote failure keeps the current view
// ticking; the next tick is the retry.
func (c *Coordinator) refetch(ctx context.Context) {
	sessions, err := c.store.ListSessions(ctx)
	if err != nil {
		logging.Logger.Warn("Fetch failed, keeping local view",
			"error", err)
		return
	}

	c.mu.Lock()
	c.sessions = sessions
	c.mu.Unlock()

	c.bus.Publish(ports.Event{Kind: ports.EventSnapshot, Sessions: sessions})
}
