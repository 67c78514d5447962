// Package metrics provides the centralized Prometheus metrics registry for
// the caching subsystem. All metrics are defined in pkg/cache to maintain
// modularity and avoid circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the caching subsystem.
// All metrics are automatically registered via promauto in pkg/cache.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Cache Metrics (pkg/cache):
//   - forge_cache_hits_total{layer} (Counter): Cache hits by layer (memory, store)
//   - forge_cache_misses_total (Counter): Cache misses across both tiers
//   - forge_cache_evictions_total (Counter): Entries evicted to make room
//   - forge_cache_expired_total (Counter): Entries removed because their TTL passed
//   - forge_cache_size_bytes (Gauge): Estimated size of resident entries in bytes
//   - forge_cache_entries (Gauge): Number of resident entries
//   - forge_cache_errors_total{operation} (Counter): Cache operation errors
//     (set, load, delete, persist, clear, stats)
//
// Persistence Metrics (pkg/cache):
//   - forge_cache_persist_queue_depth (Gauge): Snapshots waiting for a persist worker
//   - forge_cache_persist_drops_total (Counter): Snapshots dropped because the queue was full
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(forge_cache_hits_total[5m])) /
//   (sum(rate(forge_cache_hits_total[5m])) + sum(rate(forge_cache_misses_total[5m])))
//
//   # Memory Tier Utilization
//   forge_cache_size_bytes
//
//   # Eviction Pressure
//   rate(forge_cache_evictions_total[5m])
//
//   # Persistence Backpressure
//   forge_cache_persist_queue_depth
//   rate(forge_cache_persist_drops_total[5m]) > 0
//
//   # Store Health
//   rate(forge_cache_errors_total{operation="persist"}[5m])
