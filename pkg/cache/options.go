package cache

import "time"

// SetOption customizes a single Set call.
type SetOption func(*setOptions)

type setOptions struct {
	ttl     time.Duration
	persist bool
}

// WithTTL expires the entry d after it is stored.
// A non-positive d leaves the entry without expiry.
func WithTTL(d time.Duration) SetOption {
	return func(o *setOptions) {
		o.ttl = d
	}
}

// WithPersist queues the entry for asynchronous persistence to the
// configured store once the in-memory set has succeeded.
func WithPersist() SetOption {
	return func(o *setOptions) {
		o.persist = true
	}
}
