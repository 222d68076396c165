package store

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Entry is one handoff slot: the pin it was issued under, when it was created
// or last updated, and the submitted result (nil while still waiting).
//
// Entries are immutable once published. The store hands out the stored value,
// never a reference into a live map, so callers can read it without locking.
type Entry struct {
	Timestamp time.Time
	Pin       string
	Result    map[string]any
}

// Populated reports whether a result has been submitted for this entry.
func (e Entry) Populated() bool { return e.Result != nil }

// KV is one key/entry pair in a store snapshot.
type KV struct {
	Key   string
	Entry Entry
}

// Key builds the composite storage key for a pin within a namespace.
// Identical pin labels in different namespaces are unrelated entries.
func Key(namespace, pin string) string {
	return namespace + ":" + pin
}

// Store is a namespaced in-memory pin store built for a read-heavy workload:
// pollers hammer the read path while writes (issue, submit, evict) are rare.
//
// The map is versioned: readers load the current version through an atomic
// pointer and never block. Every mutation takes the single writer mutex,
// shallow-copies the current map, applies its change to the copy, and swaps
// the copy in. A reader therefore always sees a complete version — never a
// partially applied write — and two writers never interleave.
type Store struct {
	current atomic.Pointer[map[string]Entry]
	writeMu sync.Mutex
	now     func() time.Time // injectable for deterministic tests
}

// New creates an empty Store.
func New() *Store {
	s := &Store{now: time.Now}
	m := make(map[string]Entry)
	s.current.Store(&m)
	return s
}

// view returns the current published map version. Lock-free.
func (s *Store) view() map[string]Entry {
	return *s.current.Load()
}

// Exists reports whether a live entry is present under key. Lock-free.
func (s *Store) Exists(key string) bool {
	_, ok := s.view()[key]
	return ok
}

// Insert publishes a fresh waiting entry (no result) for pin under key.
// Callers are expected to have checked Exists first; the check-and-insert
// pair is not atomic across calls, so a concurrent inserter for the same key
// wins last-writer style. See pin.Generator for why that is acceptable.
func (s *Store) Insert(key, pin string) {
	ts := s.now().UTC()
	s.mutate(func(next map[string]Entry) {
		next[key] = Entry{Timestamp: ts, Pin: pin}
	})
}

// Update replaces the entry under key with a populated one carrying result
// and a refreshed timestamp. The previous entry is fully discarded — there is
// no merge. Callers must guard with Exists; updating an absent key would
// resurrect it, which the submission handler never allows.
func (s *Store) Update(key, pin string, result map[string]any) {
	ts := s.now().UTC()
	s.mutate(func(next map[string]Entry) {
		next[key] = Entry{Timestamp: ts, Pin: pin, Result: result}
	})
}

// TakeIfPopulated returns the entry under key, if any. When the entry carries
// a result it is also removed as part of the same logical operation, so a
// result is handed out at most once: the fast lock-free read decides the
// "waiting" case, and the delete branch re-validates under the writer mutex
// before removing, which settles races between concurrent pollers — exactly
// one of them gets the populated entry.
func (s *Store) TakeIfPopulated(key string) (Entry, bool) {
	e, ok := s.view()[key]
	if !ok {
		return Entry{}, false
	}
	if !e.Populated() {
		return e, true
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	cur := s.view()
	e, ok = cur[key]
	if !ok {
		// Another poller consumed it between our read and the lock.
		return Entry{}, false
	}
	if !e.Populated() {
		return e, true
	}
	next := clone(cur)
	delete(next, key)
	s.current.Store(&next)
	return e, true
}

// Snapshot returns a point-in-time view of all live entries. It reflects the
// most recently published version, which may miss writes committed after the
// load — good enough for the sweeper, which self-corrects on its next cycle.
func (s *Store) Snapshot() []KV {
	m := s.view()
	out := make([]KV, 0, len(m))
	for k, e := range m {
		out = append(out, KV{Key: k, Entry: e})
	}
	return out
}

// Remove deletes the entry under key, if present.
func (s *Store) Remove(key string) {
	s.mutate(func(next map[string]Entry) {
		delete(next, key)
	})
}

// RemoveBatch deletes all given keys in one mutation with a single publish,
// and returns the keys that were actually present. A key consumed by a
// poller between a Snapshot and this call is simply absent from the result.
// Used by the sweeper so a bulk eviction costs one copy-and-swap, not one
// per key.
func (s *Store) RemoveBatch(keys []string) []string {
	var removed []string
	s.mutate(func(next map[string]Entry) {
		for _, k := range keys {
			if _, ok := next[k]; ok {
				delete(next, k)
				removed = append(removed, k)
			}
		}
	})
	return removed
}

// Count returns the number of live entries. Lock-free.
func (s *Store) Count() int {
	return len(s.view())
}

// NamespaceCounts returns the number of live entries per namespace. Lock-free.
func (s *Store) NamespaceCounts() map[string]int {
	counts := make(map[string]int)
	for k := range s.view() {
		ns, _, ok := strings.Cut(k, ":")
		if !ok {
			continue
		}
		counts[ns]++
	}
	return counts
}

// mutate runs fn against a copy of the current map version under the writer
// mutex, then atomically publishes the copy. All mutation paths funnel
// through here.
func (s *Store) mutate(fn func(next map[string]Entry)) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	next := clone(s.view())
	fn(next)
	s.current.Store(&next)
}

func clone(m map[string]Entry) map[string]Entry {
	next := make(map[string]Entry, len(m)+1)
	for k, v := range m {
		next[k] = v
	}
	return next
}
