package store

import (
	"context"
	"fmt"

	"github.com/iwvelando/sixsigma-portal/internal/config"
	"github.com/iwvelando/sixsigma-portal/pkg/constants"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Open returns the backend selected by the storage configuration.
func Open(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (Backend, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Driver {
	case "", constants.StorageMemory:
		logger.Info("using in-memory storage",
			zap.String("op", "store.Open"),
		)
		return NewMemoryBackend(), nil

	case constants.StorageBolt:
		backend, err := OpenBolt(cfg.Path, cfg.Bucket, cfg.Timeout)
		if err != nil {
			return nil, err
		}
		logger.Info("opened bolt storage",
			zap.String("op", "store.Open"),
			zap.String("path", cfg.Path),
			zap.String("bucket", cfg.Bucket),
		)
		return backend, nil

	case constants.StorageRedis:
		dialCtx := ctx
		if cfg.Timeout > 0 {
			var cancel context.CancelFunc
			dialCtx, cancel = context.WithTimeout(ctx, cfg.Timeout)
			defer cancel()
		}
		backend, err := NewRedisBackend(dialCtx, &redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cfg.Redis.KeyPrefix)
		if err != nil {
			return nil, err
		}
		logger.Info("connected to redis storage",
			zap.String("op", "store.Open"),
			zap.String("address", cfg.Redis.Address),
			zap.String("keyPrefix", cfg.Redis.KeyPrefix),
		)
		return backend, nil

	case constants.StorageSQL:
		backend, err := OpenPostgres(cfg.SQL.DSN, cfg.SQL.Table)
		if err != nil {
			return nil, err
		}
		logger.Info("connected to sql storage",
			zap.String("op", "store.Open"),
			zap.String("table", cfg.SQL.Table),
		)
		return backend, nil
	}

	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}
