// Package store holds the in-memory handoff state: a namespaced map from
// "{namespace}:{pin}" keys to entries, plus the background staleness sweeper.
//
// The map is versioned copy-on-write. Readers (Exists, TakeIfPopulated's read
// path, Snapshot, Count) load the current version through an atomic pointer
// and never block on a writer. Mutations (Insert, Update, Remove, RemoveBatch,
// TakeIfPopulated's delete branch) are serialized by a single mutex: each one
// copies the current map, applies its change, and atomically swaps the copy
// in. That trades a map copy per write for a read path with zero contention,
// which fits the workload — high-frequency polling against infrequent writes.
//
// TakeIfPopulated is the consuming read: if the entry under a key carries a
// result, returning it and deleting it happen as one logical operation, so a
// result is delivered at most once even with concurrent pollers.
//
// Sweeper bounds the lifetime of abandoned entries: on a fixed interval it
// snapshots the store and batch-removes everything older than the staleness
// threshold. Sweep policy can be swapped at runtime (config hot-reload).
package store
