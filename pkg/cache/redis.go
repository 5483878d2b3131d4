package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Redis stores JSON-encoded values in Redis. The client lifecycle belongs to
// the caller.
type Redis[V any] struct {
	client redis.UniversalClient
	opts   options
	group  singleflight.Group
}

// NewRedis returns a Redis-backed cache. WithCleanupInterval is ignored.
func NewRedis[V any](client redis.UniversalClient, opts ...Option) *Redis[V] {
	return &Redis[V]{client: client, opts: newOptions(opts)}
}

// Get decodes the JSON value stored under key.
func (r *Redis[V]) Get(ctx context.Context, key string) (V, error) {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		var zero V
		if errors.Is(err, redis.Nil) {
			return zero, ErrNotFound
		}
		return zero, err
	}
	return decode[V](data)
}

// Set encodes value as JSON. A zero ttl uses the default TTL.
func (r *Redis[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) error {
	data, err := encode(value)
	if err != nil {
		return err
	}
	// Redis reads 0 as no expiration.
	return r.client.Set(ctx, r.key(key), data, max(r.opts.ttl(ttl), 0)).Err()
}

// Delete is a no-op for missing keys.
func (r *Redis[V]) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

// Close leaves the shared client open.
func (r *Redis[V]) Close() error { return nil }

func (r *Redis[V]) key(k string) string {
	if r.opts.prefix == "" {
		return k
	}
	return r.opts.prefix + ":" + k
}

var _ Cache[any] = (*Redis[any])(nil)

func (r *Redis[V]) flights() *singleflight.Group { return &r.group }
