package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type item[V any] struct {
	value     V
	expiresAt time.Time
}

func (i item[V]) expired(now time.Time) bool {
	return !i.expiresAt.IsZero() && now.After(i.expiresAt)
}

// Memory is a process-local cache. Expired entries are dropped on read and
// by a background sweep.
type Memory[V any] struct {
	mu     sync.Mutex
	items  map[string]item[V]
	opts   options
	done   chan struct{}
	closed bool
	group  singleflight.Group
}

// NewMemory returns a memory cache. Call Close to stop the sweep.
func NewMemory[V any](opts ...Option) *Memory[V] {
	m := &Memory[V]{
		items: make(map[string]item[V]),
		opts:  newOptions(opts),
		done:  make(chan struct{}),
	}
	if m.opts.cleanupInterval > 0 {
		go m.janitor(m.opts.cleanupInterval)
	}
	return m
}

// Get returns ErrNotFound for missing or expired keys.
func (m *Memory[V]) Get(_ context.Context, key string) (V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	it, ok := m.items[key]
	if !ok || it.expired(time.Now()) {
		delete(m.items, key)
		var zero V
		return zero, ErrNotFound
	}
	return it.value, nil
}

// Set stores value. A zero ttl uses the default TTL, a negative one never expires.
func (m *Memory[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	it := item[V]{value: value}
	if ttl = m.opts.ttl(ttl); ttl > 0 {
		it.expiresAt = time.Now().Add(ttl)
	}
	m.items[key] = it
	return nil
}

// Delete is a no-op for missing keys.
func (m *Memory[V]) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	delete(m.items, key)
	return nil
}

// Len returns the number of stored entries, expired ones included until the
// next sweep.
func (m *Memory[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Close stops the sweep. It is idempotent.
func (m *Memory[V]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		close(m.done)
	}
	return nil
}

func (m *Memory[V]) janitor(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case now := <-ticker.C:
			m.sweep(now)
		}
	}
}

func (m *Memory[V]) sweep(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for k, it := range m.items {
		if it.expired(now) {
			delete(m.items, k)
		}
	}
}

var _ Cache[any] = (*Memory[any])(nil)

func (m *Memory[V]) flights() *singleflight.Group { return &m.group }
