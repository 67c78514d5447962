package cache

import (
	"context"
	"time"
)

// Store is a persistent tier behind the in-memory cache.
//
// Implementations must be safe for concurrent use and self-healing: Load
// removes expired or undecodable entries and reports them as ErrCacheMiss
// instead of surfacing decode errors to readers.
type Store interface {
	// Load returns the persisted entry for key.
	// Returns ErrCacheMiss if the key is absent, expired, or corrupted.
	Load(ctx context.Context, key string) (*Entry, error)

	// Save persists a snapshot of the entry under entry.Key,
	// overwriting any previous snapshot.
	Save(ctx context.Context, entry *Entry) error

	// Delete removes the persisted entry for key, if any.
	Delete(ctx context.Context, key string) error

	// Purge removes persisted entries written longer than olderThan ago.
	// A non-positive olderThan removes everything.
	Purge(ctx context.Context, olderThan time.Duration) error

	// Size returns the total persisted size in bytes.
	Size(ctx context.Context) (int64, error)
}
