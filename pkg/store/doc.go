// Package store provides persistent tiers for the cache manager: a local
// disk directory with an atomic, self-describing file format, and a Redis
// backend for deployments that already run one.
//
// Both stores honor the cache.Store contract: expired or corrupt
// snapshots are removed during Load and reported as cache.ErrCacheMiss,
// so a damaged persistence tier degrades to misses instead of errors.
package store
