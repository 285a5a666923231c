package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stockledger/backend/internal/domain/shared"
	"github.com/stockledger/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const (
	pingTimeout        = 5 * time.Second
	inMemoryJanitorRun = 5 * time.Minute
)

// IdempotencyStoreFactory picks an idempotency store from configuration
type IdempotencyStoreFactory struct {
	cfg           config.RedisConfig
	logger        *zap.Logger
	allowFallback bool
}

// FactoryOption configures the factory
type FactoryOption func(*IdempotencyStoreFactory)

// WithLogger sets the factory logger
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to the
// in-memory store instead of failing startup. Defaults to true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.allowFallback = allow
	}
}

// NewIdempotencyStoreFactory creates a factory
func NewIdempotencyStoreFactory(cfg config.RedisConfig, opts ...FactoryOption) *IdempotencyStoreFactory {
	f := &IdempotencyStoreFactory{cfg: cfg, logger: zap.NewNop(), allowFallback: true}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore returns a Redis store when Redis is enabled and reachable and
// an in-memory store otherwise
func (f *IdempotencyStoreFactory) CreateStore(ctx context.Context) (shared.IdempotencyStore, error) {
	if !f.cfg.Enabled {
		f.logger.Info("Redis disabled, using in-memory idempotency store")
		return NewInMemoryIdempotencyStore(inMemoryJanitorRun), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     f.cfg.Addr,
		Password: f.cfg.Password,
		DB:       f.cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		if !f.allowFallback {
			return nil, fmt.Errorf("redis required for idempotency but unavailable: %w", err)
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory idempotency store",
			zap.String("addr", f.cfg.Addr),
			zap.Error(err),
		)
		return NewInMemoryIdempotencyStore(inMemoryJanitorRun), nil
	}

	f.logger.Info("Using Redis idempotency store", zap.String("addr", f.cfg.Addr))
	return NewRedisIdempotencyStore(client, f.cfg.KeyPrefix), nil
}
