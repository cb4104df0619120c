// Package storage opens the creature repository selected by configuration
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/creaturemon/internal/config"
	"github.com/KirkDiggler/creaturemon/internal/repositories/creatures"
)

const connectTimeout = 5 * time.Second

// Closer releases the resources behind a repository
type Closer func() error

func noopCloser() error { return nil }

// Open returns the repository for cfg.Driver and a closer for its connection
func Open(ctx context.Context, cfg config.StorageConfig, redisCfg config.RedisConfig) (creatures.Repository, Closer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	switch cfg.Driver {
	case config.DriverMemory:
		slog.Info("Using in-memory creature storage")
		return creatures.NewInMemoryRepository(), noopCloser, nil

	case config.DriverRedis:
		opts, err := redis.ParseURL(redisCfg.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		slog.Info("Using Redis creature storage", "addr", opts.Addr, "db", opts.DB)
		return creatures.NewRedis(client), client.Close, nil

	case config.DriverSQLite:
		store, err := creatures.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("Using SQLite creature storage", "path", cfg.SQLitePath)
		return store, store.Close, nil

	case config.DriverPostgres:
		store, err := creatures.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("Using Postgres creature storage")
		return store, store.Close, nil
	}

	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}
