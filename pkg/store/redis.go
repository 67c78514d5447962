package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/DaymaNKinG990/NeuralForge-sub000/pkg/cache"
	"github.com/DaymaNKinG990/NeuralForge-sub000/pkg/codec"
)

// DefaultKeyPrefix namespaces cache keys inside a shared Redis instance.
const DefaultKeyPrefix = "forge:cache:"

// scanCount is the batch size hint for SCAN iterations.
const scanCount = 100

// Redis persists cache entries in Redis, one value per key with a native
// TTL mirroring the entry expiry.
type Redis struct {
	client *redis.Client
	codec  codec.Codec
	prefix string
	logger zerolog.Logger
}

var _ cache.Store = (*Redis)(nil)

// RedisOption configures a Redis store.
type RedisOption func(*Redis)

// WithRedisCodec selects the snapshot codec (default codec.Default).
func WithRedisCodec(c codec.Codec) RedisOption {
	return func(r *Redis) { r.codec = c }
}

// WithKeyPrefix overrides the key namespace (default DefaultKeyPrefix).
func WithKeyPrefix(prefix string) RedisOption {
	return func(r *Redis) { r.prefix = prefix }
}

// WithRedisLogger overrides the global logger.
func WithRedisLogger(logger zerolog.Logger) RedisOption {
	return func(r *Redis) { r.logger = logger.With().Str("component", "redis-store").Logger() }
}

// NewRedis creates a Redis-backed store. The client stays owned by the
// caller.
func NewRedis(client *redis.Client, opts ...RedisOption) *Redis {
	if client == nil {
		panic("redis client cannot be nil")
	}

	r := &Redis{
		client: client,
		codec:  codec.Default,
		prefix: DefaultKeyPrefix,
		logger: log.With().Str("component", "redis-store").Logger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Redis) redisKey(key string) string {
	return r.prefix + key
}

// Save stores the snapshot with a TTL matching the entry expiry.
// Already-expired entries are not persisted.
func (r *Redis) Save(ctx context.Context, entry *cache.Entry) error {
	if entry == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}

	data, err := r.codec.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	var ttl time.Duration
	if !entry.ExpiresAt.IsZero() {
		ttl = entry.TTL()
		if ttl <= 0 {
			return nil
		}
	}

	if err := r.client.Set(ctx, r.redisKey(entry.Key), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Load reads the snapshot for key. Corrupt or expired snapshots are
// removed and reported as cache.ErrCacheMiss.
func (r *Redis) Load(ctx context.Context, key string) (*cache.Entry, error) {
	data, err := r.client.Get(ctx, r.redisKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, cache.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var entry cache.Entry
	if err := r.codec.Unmarshal(data, &entry); err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("Removing corrupt cache entry")
		_ = r.client.Del(ctx, r.redisKey(key)).Err()
		return nil, cache.ErrCacheMiss
	}
	if entry.Expired(time.Now()) {
		_ = r.client.Del(ctx, r.redisKey(key)).Err()
		return nil, cache.ErrCacheMiss
	}
	return &entry, nil
}

// Delete removes the persisted entry for key, if any.
func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.redisKey(key)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Purge removes persisted entries, all of them or only those stored
// longer than olderThan ago.
func (r *Redis) Purge(ctx context.Context, olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan)

	var errs []error
	iter := r.client.Scan(ctx, 0, r.prefix+"*", scanCount).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		if olderThan > 0 {
			fresh, err := r.storedAfter(ctx, key, cutoff)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if fresh {
				continue
			}
		}
		if err := r.client.Del(ctx, key).Err(); err != nil {
			errs = append(errs, fmt.Errorf("redis del %s: %w", key, err))
		}
	}
	if err := iter.Err(); err != nil {
		errs = append(errs, fmt.Errorf("redis scan: %w", err))
	}
	return errors.Join(errs...)
}

// storedAfter reports whether the snapshot under redisKey was written at
// or after the cutoff. Undecodable snapshots count as stale.
func (r *Redis) storedAfter(ctx context.Context, redisKey string, cutoff time.Time) (bool, error) {
	data, err := r.client.Get(ctx, redisKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return true, nil
		}
		return false, fmt.Errorf("redis get %s: %w", redisKey, err)
	}

	var entry cache.Entry
	if err := r.codec.Unmarshal(data, &entry); err != nil {
		return false, nil
	}
	return !entry.StoredAt.Before(cutoff), nil
}

// Size returns the total byte size of persisted snapshots.
func (r *Redis) Size(ctx context.Context) (int64, error) {
	var total int64
	iter := r.client.Scan(ctx, 0, r.prefix+"*", scanCount).Iterator()
	for iter.Next(ctx) {
		n, err := r.client.StrLen(ctx, iter.Val()).Result()
		if err != nil {
			return 0, fmt.Errorf("redis strlen: %w", err)
		}
		total += n
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("redis scan: %w", err)
	}
	return total, nil
}
