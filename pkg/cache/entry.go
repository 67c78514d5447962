package cache

import "time"

// Entry represents a cached value with its expiry and usage bookkeeping.
// The JSON form is the snapshot format used by persistent stores.
type Entry struct {
	// Key is the cache key the entry is stored under
	Key string `json:"key"`

	// Value is the cached value. Persisted values round-trip through the
	// configured codec and come back with codec-native types.
	Value any `json:"value"`

	// ExpiresAt is the absolute expiry time; zero means no expiry
	ExpiresAt time.Time `json:"expires_at"`

	// Size is the estimated serialized size in bytes, fixed at store time
	Size int64 `json:"size"`

	// LastAccess is updated on every read hit
	LastAccess time.Time `json:"last_access"`

	// AccessCount is the number of read hits since the entry was stored
	AccessCount int64 `json:"access_count"`

	// StoredAt is when the entry was created or overwritten
	StoredAt time.Time `json:"stored_at"`

	// seq is the insertion sequence, the final eviction tie-breaker
	seq uint64
}

// Expired checks whether the entry is past its expiry at the given time.
// The expiry instant itself counts as expired.
func (e *Entry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && !now.Before(e.ExpiresAt)
}

// TTL returns the remaining time-to-live for the entry.
// Returns 0 for entries without expiry or already expired.
func (e *Entry) TTL() time.Duration {
	if e.ExpiresAt.IsZero() {
		return 0
	}
	ttl := time.Until(e.ExpiresAt)
	if ttl < 0 {
		return 0
	}
	return ttl
}

// clone returns a copy of the entry safe to hand to persistence workers.
func (e *Entry) clone() *Entry {
	c := *e
	return &c
}
