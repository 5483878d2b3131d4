package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache is a key-value store with per-entry expiration.
type Cache[V any] interface {
	// Get returns ErrNotFound for a missing or expired key.
	Get(ctx context.Context, key string) (V, error)
	Set(ctx context.Context, key string, value V, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Option configures either implementation.
type Option func(*options)

type options struct {
	defaultTTL      time.Duration
	cleanupInterval time.Duration
	prefix          string
}

func newOptions(opts []Option) options {
	o := options{defaultTTL: time.Hour, cleanupInterval: time.Minute}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithDefaultTTL sets the expiration used when Set gets a zero TTL.
// Default: 1 hour.
func WithDefaultTTL(d time.Duration) Option {
	return func(o *options) { o.defaultTTL = d }
}

// WithCleanupInterval sets how often the memory cache drops expired entries.
// Zero disables the background sweep. Default: 1 minute.
func WithCleanupInterval(d time.Duration) Option {
	return func(o *options) { o.cleanupInterval = d }
}

// WithPrefix namespaces Redis keys as "{prefix}:{key}".
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

func (o options) ttl(ttl time.Duration) time.Duration {
	if ttl == 0 {
		return o.defaultTTL
	}
	return ttl
}

func encode[V any](v V) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMarshal, err)
	}
	return data, nil
}

func decode[V any](data []byte) (V, error) {
	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("%w: %w", ErrUnmarshal, err)
	}
	return v, nil
}

// flightOwner is implemented by caches that own the singleflight group their
// refreshes share.
type flightOwner interface {
	flights() *singleflight.Group
}

// fallback serves caches without their own group. Keys are namespaced by the
// value type, so calls for different V never share a result.
var fallback singleflight.Group

// Refresh computes a fresh value with fn, stores it under key and returns it.
// Concurrent calls for the same key on the same cache share one fn
// invocation. A failed fn leaves the cached value untouched.
func Refresh[V any](ctx context.Context, c Cache[V], key string, ttl time.Duration, fn func(ctx context.Context) (V, error)) (V, error) {
	group, flightKey := &fallback, fmt.Sprintf("%T\x00%s", c, key)
	if f, ok := c.(flightOwner); ok {
		group, flightKey = f.flights(), key
	}

	v, err, _ := group.Do(flightKey, func() (any, error) {
		val, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		if err := c.Set(ctx, key, val, ttl); err != nil {
			return nil, err
		}
		return val, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}
