// Package search memoizes model search results so repeated queries with
// identical context skip the expensive search path.
//
// Results are keyed by the query string plus a canonicalized context map
// (see Key) and stay valid for one hour by default. Entries live in the
// memory tier only: search results are session-scoped and cheap to
// recompute, so they are never persisted.
package search

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/DaymaNKinG990/NeuralForge-sub000/pkg/cache"
	"github.com/DaymaNKinG990/NeuralForge-sub000/pkg/codec"
)

// DefaultTTL is how long memoized search results stay valid.
const DefaultTTL = time.Hour

// Result is a single search hit.
type Result struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Source   string         `json:"source"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Cache memoizes search results on top of a cache.Manager.
type Cache struct {
	manager *cache.Manager
	ttl     time.Duration
	logger  zerolog.Logger
}

// Option configures a search cache.
type Option func(*Cache)

// WithTTL overrides how long memoized results stay valid.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// New creates a search cache backed by manager.
// Panics if manager is nil.
func New(manager *cache.Manager, opts ...Option) *Cache {
	if manager == nil {
		panic("search: manager is nil")
	}

	c := &Cache{
		manager: manager,
		ttl:     DefaultTTL,
		logger:  log.With().Str("component", "search-cache").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.ttl <= 0 {
		c.ttl = DefaultTTL
	}
	return c
}

// Get returns memoized results for the query and context.
// Returns cache.ErrCacheMiss when nothing usable is cached.
func (c *Cache) Get(ctx context.Context, query string, searchContext map[string]any) ([]Result, error) {
	key := Key{Query: query, Context: searchContext}.String()

	value, err := c.manager.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	results, err := coerceResults(value)
	if err != nil {
		// A value we cannot read back is a miss, not an error.
		c.logger.Warn().Err(err).Str("key", key).Msg("Discarding unreadable search results")
		return nil, cache.ErrCacheMiss
	}
	return results, nil
}

// Set memoizes results for the query and context.
func (c *Cache) Set(ctx context.Context, query string, searchContext map[string]any, results []Result) error {
	key := Key{Query: query, Context: searchContext}.String()
	return c.manager.Set(ctx, key, results, cache.WithTTL(c.ttl))
}

// Invalidate drops every memoized search result and reports how many
// entries were removed.
func (c *Cache) Invalidate() int {
	return c.manager.ClearPrefix(keyPrefix)
}

// coerceResults converts a cached value back into typed results. Fresh
// entries hold []Result directly; values that round-tripped through a
// persistent tier come back as generic JSON shapes.
func coerceResults(value any) ([]Result, error) {
	if results, ok := value.([]Result); ok {
		return results, nil
	}

	data, err := codec.Default.Marshal(value)
	if err != nil {
		return nil, err
	}
	var results []Result
	if err := codec.Default.Unmarshal(data, &results); err != nil {
		return nil, err
	}
	return results, nil
}
