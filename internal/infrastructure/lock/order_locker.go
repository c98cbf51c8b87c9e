// Package lock provides the per-order lock shared by document generation and dispatch.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/erpbridge/backend/internal/domain/erp"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	defaultKeyPrefix = "erp:order-lock:"
	defaultTTL       = 2 * time.Minute
)

func orderKey(prefix string, tenantID, orderID uuid.UUID) string {
	return fmt.Sprintf("%s%s:%s", prefix, tenantID, orderID)
}

// RedisOrderLocker implements erp.OrderLocker with a redislock lease.
// A holder that dies keeps the order locked until the TTL expires.
type RedisOrderLocker struct {
	locker    *redislock.Client
	ttl       time.Duration
	keyPrefix string
}

// NewRedisOrderLocker creates a locker on an existing Redis client
func NewRedisOrderLocker(client redis.UniversalClient, ttl time.Duration) *RedisOrderLocker {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisOrderLocker{
		locker:    redislock.New(client),
		ttl:       ttl,
		keyPrefix: defaultKeyPrefix,
	}
}

// LockOrder obtains the order's lock without waiting.
// A held lock returns erp.ErrGenerationInProgress.
func (l *RedisOrderLocker) LockOrder(ctx context.Context, tenantID, orderID uuid.UUID) (func(context.Context) error, error) {
	lock, err := l.locker.Obtain(ctx, orderKey(l.keyPrefix, tenantID, orderID), l.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, erp.ErrGenerationInProgress
	}
	if err != nil {
		return nil, fmt.Errorf("failed to obtain order lock: %w", err)
	}

	return func(ctx context.Context) error {
		if err := lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			return fmt.Errorf("failed to release order lock: %w", err)
		}
		return nil
	}, nil
}

// Ensure RedisOrderLocker implements erp.OrderLocker
var _ erp.OrderLocker = (*RedisOrderLocker)(nil)

// InMemoryOrderLocker implements erp.OrderLocker inside one process.
// It is used when Redis is disabled and in tests.
type InMemoryOrderLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewInMemoryOrderLocker creates an in-process locker
func NewInMemoryOrderLocker() *InMemoryOrderLocker {
	return &InMemoryOrderLocker{held: make(map[string]struct{})}
}

// LockOrder marks the order as locked or returns erp.ErrGenerationInProgress
func (l *InMemoryOrderLocker) LockOrder(_ context.Context, tenantID, orderID uuid.UUID) (func(context.Context) error, error) {
	key := orderKey("", tenantID, orderID)

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[key]; ok {
		return nil, erp.ErrGenerationInProgress
	}
	l.held[key] = struct{}{}

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
		return nil
	}, nil
}

// Ensure InMemoryOrderLocker implements erp.OrderLocker
var _ erp.OrderLocker = (*InMemoryOrderLocker)(nil)
