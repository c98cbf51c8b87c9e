package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/erpbridge/backend/internal/domain/erp"
	"github.com/erpbridge/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewOrderLocker returns a Redis locker when Redis is enabled and reachable,
// otherwise an in-process locker. The returned close function releases the Redis client.
func NewOrderLocker(cfg config.RedisConfig, logger *zap.Logger) (erp.OrderLocker, func() error) {
	noop := func() error { return nil }
	if !cfg.Enabled {
		logger.Info("Redis disabled, using in-memory order lock")
		return NewInMemoryOrderLocker(), noop
	}

	client, err := NewRedisClient(cfg)
	if err != nil {
		logger.Warn("Redis unavailable, falling back to in-memory order lock",
			zap.String("addr", cfg.Addr()),
			zap.Error(err))
		return NewInMemoryOrderLocker(), noop
	}

	logger.Info("Using Redis order lock",
		zap.String("addr", cfg.Addr()),
		zap.Duration("ttl", cfg.LockTTL))
	return NewRedisOrderLocker(client, cfg.LockTTL), client.Close
}
