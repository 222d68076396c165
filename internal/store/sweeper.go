package store

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Default sweep policy.
const (
	DefaultStaleAge      = 10 * time.Minute
	DefaultSweepInterval = 10 * time.Second
)

// Policy controls when the sweeper runs and what it considers stale.
type Policy struct {
	// StaleAge is how old an entry may grow before it is evicted,
	// measured from its last insert or update.
	StaleAge time.Duration

	// Interval is how often a sweep cycle runs.
	Interval time.Duration
}

// Sweeper periodically scans a store snapshot and evicts entries older than
// the staleness threshold, whether or not they ever received a result. It
// shares the store's writer mutex with request-triggered mutations on equal
// footing — a sweep is just another batched write.
type Sweeper struct {
	store  *Store
	policy atomic.Pointer[Policy]
	now    func() time.Time // injectable for deterministic tests

	// OnEvict, if set, is called with the number of entries removed after
	// each sweep that evicted anything. Set before Run.
	OnEvict func(removed int)
}

// NewSweeper creates a Sweeper over st with the given policy.
func NewSweeper(st *Store, p Policy) *Sweeper {
	w := &Sweeper{store: st, now: time.Now}
	w.policy.Store(&p)
	return w
}

// Policy returns the currently active sweep policy.
func (w *Sweeper) Policy() Policy {
	return *w.policy.Load()
}

// SetPolicy swaps in a new policy. The running loop picks it up on its next
// tick, so a shortened interval takes effect after at most one old interval.
func (w *Sweeper) SetPolicy(p Policy) {
	w.policy.Store(&p)
}

// Sweep runs one eviction cycle against a snapshot taken at call time and
// returns the number of entries removed. The snapshot may trail concurrent
// writes; a just-expired entry missed this cycle is caught on the next one,
// and a live entry can never be evicted early because age only increases.
func (w *Sweeper) Sweep(now time.Time) int {
	staleAge := w.Policy().StaleAge

	var stale []string
	for _, kv := range w.store.Snapshot() {
		if now.Sub(kv.Entry.Timestamp) > staleAge {
			stale = append(stale, kv.Key)
		}
	}
	if len(stale) == 0 {
		return 0
	}

	// Log only what was actually removed — a candidate consumed by a poller
	// between the snapshot and the batch is not an eviction.
	removed := w.store.RemoveBatch(stale)
	for _, k := range removed {
		slog.Info("store: cleaned up stale pin", "key", k)
	}
	if w.OnEvict != nil && len(removed) > 0 {
		w.OnEvict(len(removed))
	}
	return len(removed)
}

// Run starts the periodic sweep loop. It blocks until ctx is cancelled.
// Policy changes via SetPolicy are applied between ticks.
func (w *Sweeper) Run(ctx context.Context) {
	interval := w.Policy().Interval
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			w.Sweep(now)
			if cur := w.Policy().Interval; cur != interval {
				interval = cur
				t.Reset(interval)
				slog.Info("sweeper: interval changed", "interval", interval)
			}
		}
	}
}
