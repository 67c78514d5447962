// Package cache provides bounded in-memory caching with optional
// persistence for expensive model searches and metadata lookups.
//
// The cache manager implements the following features:
//
// - Dual capacity ceilings: total estimated bytes and entry count
// - TTL expiry with lazy removal on access
// - LFU eviction with LRU and insertion-order tie-breaking
// - Asynchronous best-effort persistence through a worker pool
// - Read-through from a pluggable Store (local disk or Redis)
// - Prometheus metrics for observability
//
// # Basic Usage
//
//	// Create a disk-backed store
//	st, err := store.NewDiskAt("/var/cache/forge")
//	if err != nil {
//		return err
//	}
//
//	// Create the manager
//	mgr, err := cache.New(cache.DefaultConfig(), st)
//	if err != nil {
//		return err
//	}
//	defer mgr.Close()
//
//	// Store a value for an hour and persist it to disk
//	err = mgr.Set(ctx, "model:1234", meta,
//		cache.WithTTL(time.Hour), cache.WithPersist())
//
//	// Read it back
//	value, err := mgr.Get(ctx, "model:1234")
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// not cached - recompute
//	}
//
// # Eviction
//
// When either ceiling would be exceeded the manager evicts the entry with
// the lowest access count, breaking ties by least-recent access and then
// by insertion order. A single value larger than the byte ceiling is
// rejected outright and never triggers eviction.
//
// # Persistence
//
// Set with WithPersist enqueues a snapshot of the entry for a small pool
// of background workers. Persistence is best-effort: a full queue drops
// the job, a failing store logs a warning, and neither affects the
// in-memory set. On a memory miss the manager reads through to the store
// and repopulates the memory tier.
//
// # Metrics
//
// The package exports Prometheus metrics:
//
//   - forge_cache_hits_total{layer} - Cache hits by layer (memory, store)
//   - forge_cache_misses_total - Cache misses
//   - forge_cache_evictions_total - Entries evicted for capacity
//   - forge_cache_expired_total - Entries removed after TTL expiry
//   - forge_cache_errors_total{operation} - Cache operation errors
//   - forge_cache_size_bytes - Estimated bytes held in memory
//   - forge_cache_entries - Entries held in memory
//   - forge_cache_persist_queue_depth - Pending persistence jobs
//   - forge_cache_persist_drops_total - Persistence jobs dropped
package cache
