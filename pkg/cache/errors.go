package cache

import "errors"

var (
	// ErrCacheMiss indicates the requested key was not found in any cache layer
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates a persisted cache entry is invalid or corrupted
	ErrInvalidEntry = errors.New("invalid cache entry")

	// ErrValueTooLarge indicates a value exceeding the total byte ceiling
	ErrValueTooLarge = errors.New("value exceeds cache size limit")

	// ErrNoCapacity indicates eviction could not free room for a new entry
	ErrNoCapacity = errors.New("cannot free cache capacity")

	// ErrClosed indicates the cache manager has been closed
	ErrClosed = errors.New("cache manager closed")
)
