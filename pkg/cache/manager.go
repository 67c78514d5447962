package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/DaymaNKinG990/NeuralForge-sub000/pkg/codec"
)

const (
	// DefaultMaxSizeMB is the default ceiling for total estimated bytes
	DefaultMaxSizeMB = 100.0

	// DefaultMaxEntries is the default ceiling for the entry count
	DefaultMaxEntries = 1000

	// DefaultPersistWorkers is the default persistence pool size
	DefaultPersistWorkers = 2

	// DefaultPersistQueueSize is the default persistence queue capacity
	DefaultPersistQueueSize = 64
)

// Config holds cache manager configuration.
type Config struct {
	// MaxSizeMB bounds the sum of estimated entry sizes (default 100)
	MaxSizeMB float64

	// MaxEntries bounds the number of in-memory entries (default 1000)
	MaxEntries int

	// Codec estimates value sizes and encodes persistence snapshots
	// (default codec.Default)
	Codec codec.Codec

	// PersistWorkers is the number of background persistence workers
	// (default 2)
	PersistWorkers int

	// PersistQueueSize is the persistence queue capacity (default 64)
	PersistQueueSize int

	// Logger overrides the global logger when set
	Logger *zerolog.Logger
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() Config {
	return Config{
		MaxSizeMB:        DefaultMaxSizeMB,
		MaxEntries:       DefaultMaxEntries,
		PersistWorkers:   DefaultPersistWorkers,
		PersistQueueSize: DefaultPersistQueueSize,
	}
}

// Manager is a bounded in-memory cache with TTL expiry, LFU-then-LRU
// eviction and optional asynchronous persistence to a Store.
type Manager struct {
	mu        sync.Mutex
	entries   map[string]*Entry
	totalSize int64
	seq       uint64
	closed    bool

	maxSize    int64
	maxEntries int
	codec      codec.Codec
	store      Store
	logger     zerolog.Logger

	persistCh chan *Entry
	wg        sync.WaitGroup
	loads     singleflight.Group
}

// New creates a cache manager. store may be nil for a memory-only cache;
// a non-nil store stays owned by the caller, who closes it.
func New(cfg Config, store Store) (*Manager, error) {
	if cfg.MaxSizeMB < 0 {
		return nil, fmt.Errorf("max size must not be negative, got %v MB", cfg.MaxSizeMB)
	}
	if cfg.MaxEntries < 0 {
		return nil, fmt.Errorf("max entries must not be negative, got %d", cfg.MaxEntries)
	}
	if cfg.PersistWorkers < 0 {
		return nil, fmt.Errorf("persist workers must not be negative, got %d", cfg.PersistWorkers)
	}
	if cfg.PersistQueueSize < 0 {
		return nil, fmt.Errorf("persist queue size must not be negative, got %d", cfg.PersistQueueSize)
	}

	if cfg.MaxSizeMB == 0 {
		cfg.MaxSizeMB = DefaultMaxSizeMB
	}
	if cfg.MaxEntries == 0 {
		cfg.MaxEntries = DefaultMaxEntries
	}
	if cfg.Codec == nil {
		cfg.Codec = codec.Default
	}
	if cfg.PersistWorkers == 0 {
		cfg.PersistWorkers = DefaultPersistWorkers
	}
	if cfg.PersistQueueSize == 0 {
		cfg.PersistQueueSize = DefaultPersistQueueSize
	}

	logger := log.With().Str("component", "cache-manager").Logger()
	if cfg.Logger != nil {
		logger = cfg.Logger.With().Str("component", "cache-manager").Logger()
	}

	m := &Manager{
		entries:    make(map[string]*Entry),
		maxSize:    int64(cfg.MaxSizeMB * 1024 * 1024),
		maxEntries: cfg.MaxEntries,
		codec:      cfg.Codec,
		store:      store,
		logger:     logger,
		persistCh:  make(chan *Entry, cfg.PersistQueueSize),
	}

	for i := 0; i < cfg.PersistWorkers; i++ {
		m.wg.Add(1)
		go m.persistWorker()
	}

	m.logger.Debug().
		Float64("max_size_mb", cfg.MaxSizeMB).
		Int("max_entries", cfg.MaxEntries).
		Bool("store", store != nil).
		Msg("Cache manager initialized")

	return m, nil
}

// Get retrieves the cached value for key.
// Returns ErrCacheMiss if the key is absent, expired, or unreadable from
// the store. On a memory miss with a store configured, the entry is read
// through and repopulated into the memory tier.
func (m *Manager) Get(ctx context.Context, key string) (any, error) {
	now := time.Now()

	m.mu.Lock()
	if e, ok := m.entries[key]; ok {
		if !e.Expired(now) {
			e.LastAccess = now
			e.AccessCount++
			value := e.Value
			m.mu.Unlock()
			CacheHits.WithLabelValues("memory").Inc()
			return value, nil
		}

		// Expired: remove and fall through as a miss
		m.removeLocked(key)
		m.mu.Unlock()
		CacheExpired.Inc()
		m.logger.Debug().Str("key", key).Msg("Cache entry expired")
	} else {
		m.mu.Unlock()
	}

	if m.store == nil {
		CacheMisses.Inc()
		return nil, ErrCacheMiss
	}
	return m.loadFromStore(ctx, key)
}

// loadFromStore reads key through the persistent tier, deduplicating
// concurrent loads for the same key. Store failures are logged and
// reported as misses.
func (m *Manager) loadFromStore(ctx context.Context, key string) (any, error) {
	value, err, _ := m.loads.Do(key, func() (any, error) {
		entry, err := m.store.Load(ctx, key)
		if err != nil {
			return nil, err
		}

		// Repopulate the memory tier with the remaining TTL. The loaded
		// value is served to the caller even when this fails.
		var opts []SetOption
		if !entry.ExpiresAt.IsZero() {
			ttl := time.Until(entry.ExpiresAt)
			if ttl <= 0 {
				// Raced to expiry between the store check and now
				return entry.Value, nil
			}
			opts = append(opts, WithTTL(ttl))
		}
		if err := m.Set(ctx, key, entry.Value, opts...); err != nil {
			m.logger.Warn().Err(err).Str("key", key).Msg("Failed to repopulate cache from store")
		}
		return entry.Value, nil
	})
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			CacheErrors.WithLabelValues("load").Inc()
			m.logger.Warn().Err(err).Str("key", key).Msg("Store read failed")
		}
		CacheMisses.Inc()
		return nil, ErrCacheMiss
	}

	CacheHits.WithLabelValues("store").Inc()
	return value, nil
}

// Set stores value under key, evicting lower-priority entries as needed.
// Returns ErrValueTooLarge for values exceeding the byte ceiling; no
// eviction happens in that case. Overwriting a key releases the old
// entry's size before capacity is checked.
func (m *Manager) Set(ctx context.Context, key string, value any, opts ...SetOption) error {
	var o setOptions
	for _, opt := range opts {
		opt(&o)
	}

	size := m.estimateSize(value)
	if size > m.maxSize {
		CacheErrors.WithLabelValues("set").Inc()
		m.logger.Debug().
			Str("key", key).
			Int64("size", size).
			Int64("max_size", m.maxSize).
			Msg("Value exceeds cache size limit")
		return fmt.Errorf("%w: %d bytes for key %q", ErrValueTooLarge, size, key)
	}

	now := time.Now()
	e := &Entry{
		Key:        key,
		Value:      value,
		Size:       size,
		LastAccess: now,
		StoredAt:   now,
	}
	if o.ttl > 0 {
		e.ExpiresAt = now.Add(o.ttl)
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}

	if _, ok := m.entries[key]; ok {
		m.removeLocked(key)
	}
	if err := m.ensureCapacity(size); err != nil {
		m.mu.Unlock()
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("set %q: %w", key, err)
	}

	m.seq++
	e.seq = m.seq
	m.entries[key] = e
	m.totalSize += size
	CacheEntries.Set(float64(len(m.entries)))
	CacheSizeBytes.Set(float64(m.totalSize))

	// Enqueue while holding mu so the channel cannot close underneath us.
	if o.persist && m.store != nil {
		select {
		case m.persistCh <- e.clone():
			PersistQueueDepth.Inc()
		default:
			PersistDrops.Inc()
			m.logger.Warn().Str("key", key).Msg("Persistence queue full, dropping write")
		}
	}
	m.mu.Unlock()

	return nil
}

// Delete removes key from the memory tier and from the store.
// The store pass is best-effort; its error is returned after logging.
func (m *Manager) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	m.removeLocked(key)
	m.mu.Unlock()

	if m.store == nil {
		return nil
	}
	if err := m.store.Delete(ctx, key); err != nil {
		CacheErrors.WithLabelValues("delete").Inc()
		m.logger.Warn().Err(err).Str("key", key).Msg("Failed to delete persisted entry")
		return fmt.Errorf("delete %q from store: %w", key, err)
	}
	return nil
}

// ClearPrefix removes every in-memory entry whose key starts with prefix
// and returns the number removed. An empty prefix matches all entries.
// Persisted copies are not touched.
func (m *Manager) ClearPrefix(prefix string) int {
	m.mu.Lock()
	var keys []string
	for k := range m.entries {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	for _, k := range keys {
		m.removeLocked(k)
	}
	m.mu.Unlock()

	if len(keys) > 0 {
		m.logger.Debug().Str("prefix", prefix).Int("removed", len(keys)).Msg("Cleared cache entries by prefix")
	}
	return len(keys)
}

// Clear empties the memory tier and purges the store.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	removed := len(m.entries)
	m.entries = make(map[string]*Entry)
	m.totalSize = 0
	CacheEntries.Set(0)
	CacheSizeBytes.Set(0)
	m.mu.Unlock()

	m.logger.Info().Int("removed", removed).Msg("Cache cleared")

	if m.store == nil {
		return nil
	}
	if err := m.store.Purge(ctx, 0); err != nil {
		CacheErrors.WithLabelValues("clear").Inc()
		m.logger.Warn().Err(err).Msg("Failed to purge store")
		return fmt.Errorf("purge store: %w", err)
	}
	return nil
}

// ClearOlderThan removes in-memory entries not accessed within age and
// persisted entries written before the same cutoff. Both passes run even
// if one of them fails.
func (m *Manager) ClearOlderThan(ctx context.Context, age time.Duration) error {
	cutoff := time.Now().Add(-age)

	m.mu.Lock()
	var keys []string
	for k, e := range m.entries {
		if e.LastAccess.Before(cutoff) {
			keys = append(keys, k)
		}
	}
	for _, k := range keys {
		m.removeLocked(k)
	}
	m.mu.Unlock()

	m.logger.Info().Int("removed", len(keys)).Dur("age", age).Msg("Cleared stale cache entries")

	if m.store == nil {
		return nil
	}
	if err := m.store.Purge(ctx, age); err != nil {
		CacheErrors.WithLabelValues("clear").Inc()
		m.logger.Warn().Err(err).Msg("Failed to purge stale store entries")
		return fmt.Errorf("purge store: %w", err)
	}
	return nil
}

// Stats is a point-in-time snapshot of cache occupancy and usage.
type Stats struct {
	// Entries is the current number of in-memory entries
	Entries int `json:"entries"`

	// SizeBytes is the sum of estimated entry sizes
	SizeBytes int64 `json:"size_bytes"`

	// MaxSizeBytes is the configured byte ceiling
	MaxSizeBytes int64 `json:"max_size_bytes"`

	// MaxEntries is the configured entry ceiling
	MaxEntries int `json:"max_entries"`

	// AccessCount is the sum of read hits over current entries
	AccessCount int64 `json:"access_count"`

	// AvgAccessCount is AccessCount averaged over entries, 0 when empty
	AvgAccessCount float64 `json:"avg_access_count"`

	// Utilization is SizeBytes relative to MaxSizeBytes
	Utilization float64 `json:"utilization"`

	// EntryUtilization is Entries relative to MaxEntries
	EntryUtilization float64 `json:"entry_utilization"`

	// StoreSizeBytes is the persisted size; 0 when no store is configured
	// or the store could not report it
	StoreSizeBytes int64 `json:"store_size_bytes"`
}

// Stats reports current cache occupancy. Store errors zero the store
// size and are logged, never returned.
func (m *Manager) Stats(ctx context.Context) Stats {
	m.mu.Lock()
	s := Stats{
		Entries:      len(m.entries),
		SizeBytes:    m.totalSize,
		MaxSizeBytes: m.maxSize,
		MaxEntries:   m.maxEntries,
	}
	for _, e := range m.entries {
		s.AccessCount += e.AccessCount
	}
	m.mu.Unlock()

	if s.Entries > 0 {
		s.AvgAccessCount = float64(s.AccessCount) / float64(s.Entries)
	}
	if s.MaxSizeBytes > 0 {
		s.Utilization = float64(s.SizeBytes) / float64(s.MaxSizeBytes)
	}
	if s.MaxEntries > 0 {
		s.EntryUtilization = float64(s.Entries) / float64(s.MaxEntries)
	}

	if m.store != nil {
		size, err := m.store.Size(ctx)
		if err != nil {
			CacheErrors.WithLabelValues("stats").Inc()
			m.logger.Warn().Err(err).Msg("Failed to read store size")
		} else {
			s.StoreSizeBytes = size
		}
	}
	return s
}

// Close stops the persistence workers after draining queued writes.
// Safe to call more than once. The injected store stays open.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	close(m.persistCh)
	m.wg.Wait()
	m.logger.Debug().Msg("Cache manager closed")
	return nil
}

// removeLocked deletes key from the memory tier and releases its size.
// Caller must hold mu.
func (m *Manager) removeLocked(key string) {
	e, ok := m.entries[key]
	if !ok {
		return
	}
	delete(m.entries, key)
	m.totalSize -= e.Size
	CacheEntries.Set(float64(len(m.entries)))
	CacheSizeBytes.Set(float64(m.totalSize))
}

// estimateSize returns the serialized byte length of value, falling back
// to the length of its string form for values the codec cannot encode.
func (m *Manager) estimateSize(value any) int64 {
	data, err := m.codec.Marshal(value)
	if err != nil {
		return int64(len(fmt.Sprint(value)))
	}
	return int64(len(data))
}

// persistWorker drains the persistence queue until the manager closes.
// Saves run on a background context so queued writes survive the
// triggering call's cancellation.
func (m *Manager) persistWorker() {
	defer m.wg.Done()
	for e := range m.persistCh {
		PersistQueueDepth.Dec()
		if err := m.store.Save(context.Background(), e); err != nil {
			CacheErrors.WithLabelValues("persist").Inc()
			m.logger.Warn().Err(err).Str("key", e.Key).Msg("Failed to persist cache entry")
			continue
		}
		m.logger.Debug().Str("key", e.Key).Int64("size", e.Size).Msg("Persisted cache entry")
	}
}
