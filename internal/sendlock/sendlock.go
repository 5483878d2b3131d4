// Package sendlock keeps at most one newsletter send in flight per outlet.
package sendlock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrHeld is returned when another holder owns the key.
var ErrHeld = errors.New("sendlock: already held")

// Locker acquires named locks. The returned release func is safe to call
// more than once and never releases a lock taken over by someone else.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// Memory is a process-local Locker.
type Memory struct {
	mu   sync.Mutex
	held map[string]string
}

// NewMemory returns an empty in-process Locker.
func NewMemory() *Memory {
	return &Memory{held: make(map[string]string)}
}

// Acquire takes key or fails with ErrHeld. The release func is safe to call twice.
func (m *Memory) Acquire(_ context.Context, key string) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.held[key]; ok {
		return nil, ErrHeld
	}
	token := uuid.NewString()
	m.held[key] = token

	return sync.OnceFunc(func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.held[key] == token {
			delete(m.held, key)
		}
	}), nil
}

var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a Locker shared by every instance using the same Redis. Locks
// expire after ttl so a crashed holder cannot block an outlet forever.
type Redis struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedis returns a Redis-backed locker. Keys are stored as "sendlock:{key}".
func NewRedis(client redis.UniversalClient, ttl time.Duration) *Redis {
	return &Redis{client: client, prefix: "sendlock:", ttl: ttl}
}

// Acquire sets key with NX and the lock ttl. Release deletes it only while the token still matches.
func (r *Redis) Acquire(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	ok, err := r.client.SetNX(ctx, r.prefix+key, token, r.ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrHeld
	}

	return sync.OnceFunc(func() {
		// The caller's context may already be cancelled.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = unlockScript.Run(ctx, r.client, []string{r.prefix + key}, token).Err()
	}), nil
}

var (
	_ Locker = (*Memory)(nil)
	_ Locker = (*Redis)(nil)
)
