package cache

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/shared"
)

// StoreBackend identifies the idempotency store implementation
type StoreBackend string

const (
	BackendMemory StoreBackend = "memory"
	BackendRedis  StoreBackend = "redis"
)

// NewIdempotencyStore builds an idempotency store for the configured backend.
// An empty backend defaults to the in-memory store
func NewIdempotencyStore(backend StoreBackend, redisCfg RedisConfig, logger *zap.Logger) (shared.IdempotencyStore, error) {
	switch backend {
	case BackendMemory, "":
		logger.Info("using in-memory idempotency store")
		return NewInMemoryIdempotencyStore(), nil
	case BackendRedis:
		store, err := NewRedisIdempotencyStore(redisCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis idempotency store: %w", err)
		}
		logger.Info("using redis idempotency store",
			zap.String("host", redisCfg.Host),
			zap.Int("port", redisCfg.Port))
		return store, nil
	default:
		return nil, fmt.Errorf("unknown idempotency store backend: %s", backend)
	}
}
