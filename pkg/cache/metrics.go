package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks cache hits by layer (memory, store)
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forge_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"layer"}, // "memory", "store"
	)

	// CacheMisses tracks cache misses
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "forge_cache_misses_total",
			Help: "Total number of cache misses",
		},
	)

	// CacheEvictions tracks entries evicted to make room for new ones
	CacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "forge_cache_evictions_total",
			Help: "Total number of cache entries evicted for capacity",
		},
	)

	// CacheExpired tracks entries removed because their TTL elapsed
	CacheExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "forge_cache_expired_total",
			Help: "Total number of cache entries removed after expiry",
		},
	)

	// CacheSizeBytes tracks the estimated bytes held in memory
	CacheSizeBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "forge_cache_size_bytes",
			Help: "Current estimated size of the in-memory cache in bytes",
		},
	)

	// CacheEntries tracks the number of entries held in memory
	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "forge_cache_entries",
			Help: "Current number of in-memory cache entries",
		},
	)

	// PersistQueueDepth tracks pending asynchronous persistence jobs
	PersistQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "forge_cache_persist_queue_depth",
			Help: "Current number of queued cache persistence jobs",
		},
	)

	// PersistDrops tracks persistence jobs dropped on a full queue
	PersistDrops = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "forge_cache_persist_drops_total",
			Help: "Total number of cache persistence jobs dropped",
		},
	)

	// CacheErrors tracks cache operation errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forge_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "set", "load", "delete", "persist", "clear", "stats"
	)
)
