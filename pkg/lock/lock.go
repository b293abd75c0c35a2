// Package lock provides named exclusive locks: a Redis-backed one shared by all
// replicas and an in-process one for single-instance deployments.
package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Locker serializes work on a named resource.
type Locker interface {
	// Acquire blocks until name is held and returns a token for Release.
	Acquire(ctx context.Context, name string) (string, error)
	Release(ctx context.Context, name, token string) error
}

// DistributedLock implements Locker on Redis SET NX.
type DistributedLock struct {
	client         *redis.Client
	prefix         string
	lockTTL        time.Duration
	acquireTimeout time.Duration
}

var _ Locker = (*DistributedLock)(nil)

// New creates a DistributedLock.
//   - prefix: prepended to every lock name (e.g. "lab_portal:lock:")
//   - ttl: how long a lock is held before auto-expiry (prevents deadlock)
//   - acquireTimeout: max time to wait when trying to acquire a lock
func New(client *redis.Client, prefix string, ttl, acquireTimeout time.Duration) *DistributedLock {
	return &DistributedLock{
		client:         client,
		prefix:         prefix,
		lockTTL:        ttl,
		acquireTimeout: acquireTimeout,
	}
}

// Acquire attempts to obtain the lock, blocking with exponential backoff
// until success or timeout. Returns a unique token used for Release.
func (l *DistributedLock) Acquire(ctx context.Context, name string) (string, error) {
	token := uuid.New().String()
	deadline := time.Now().Add(l.acquireTimeout)
	backoff := 50 * time.Millisecond

	for {
		ok, err := l.client.SetNX(ctx, l.prefix+name, token, l.lockTTL).Result()
		if err != nil {
			return "", fmt.Errorf("redis setnx: %w", err)
		}
		if ok {
			return token, nil
		}

		if time.Now().After(deadline) {
			return "", fmt.Errorf("timeout acquiring lock %q after %s", name, l.acquireTimeout)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}

		// exponential backoff, max 500ms
		backoff *= 2
		if backoff > 500*time.Millisecond {
			backoff = 500 * time.Millisecond
		}
	}
}

// releaseScript atomically checks that the lock value matches before deleting,
// preventing a client from releasing a lock it no longer owns.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
    return redis.call("del", KEYS[1])
else
    return 0
end
`)

// Release releases the lock only if it is still owned by token.
func (l *DistributedLock) Release(ctx context.Context, name, token string) error {
	_, err := releaseScript.Run(ctx, l.client, []string{l.prefix + name}, token).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}

// Local implements Locker inside one process.
type Local struct {
	mu   sync.Mutex
	held map[string]chan struct{}
}

var _ Locker = (*Local)(nil)

func NewLocal() *Local {
	return &Local{held: map[string]chan struct{}{}}
}

func (l *Local) Acquire(ctx context.Context, name string) (string, error) {
	for {
		l.mu.Lock()
		released, busy := l.held[name]
		if !busy {
			l.held[name] = make(chan struct{})
			l.mu.Unlock()
			return name, nil
		}
		l.mu.Unlock()

		select {
		case <-released:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

func (l *Local) Release(_ context.Context, name, _ string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if released, ok := l.held[name]; ok {
		close(released)
		delete(l.held, name)
	}
	return nil
}
