package datastore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/color-game/contest/config"
	"github.com/redis/go-redis/v9"
)

// Open connects the backend named by cfg.StoreBackend
func Open(ctx context.Context, cfg config.Config, logger *slog.Logger) (KeyValueStore, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		return NewMemoryStore(), nil
	case config.BackendSQLite:
		return NewSQLiteStore(cfg.SQLitePath, logger)
	case config.BackendPostgres:
		connStr := BuildDBConnStr(
			cfg.DatabasePassword,
			cfg.DatabaseUser,
			cfg.DatabaseHost,
			cfg.DatabaseName,
			cfg.SSLMode,
		)
		return NewPostgresStore(connStr, logger)
	case config.BackendRedis:
		return NewRedisStore(ctx, &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	case config.BackendBadger:
		return NewBadgerStore(cfg.BadgerDir, logger)
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}
