// Package storage assembles the blob and idempotency stores selected by
// configuration.
package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/iho/gospend/internal/adapter/repository"
	"github.com/iho/gospend/internal/adapter/repository/file"
	"github.com/iho/gospend/internal/adapter/repository/memory"
	pgrepo "github.com/iho/gospend/internal/adapter/repository/postgres"
	redisrepo "github.com/iho/gospend/internal/adapter/repository/redis"
	sqliterepo "github.com/iho/gospend/internal/adapter/repository/sqlite"
	"github.com/iho/gospend/internal/infrastructure/config"
	"github.com/iho/gospend/internal/infrastructure/postgres"
	"github.com/iho/gospend/internal/infrastructure/redis"
	"github.com/iho/gospend/internal/infrastructure/sqlite"
	"github.com/iho/gospend/internal/usecase"
)

// Storage bundles the stores for one backend and the connections behind them.
type Storage struct {
	Backend     string
	Blobs       usecase.BlobStore
	Idempotency usecase.IdempotencyStore

	closers []func()
}

// Close releases every connection opened by Open, newest first.
func (s *Storage) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// Open connects the backend named by cfg.StorageBackend. The blob store is
// namespaced with cfg.StoreKeyPrefix. Idempotency keys live in Redis when
// that backend is selected and in process memory otherwise.
func Open(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Storage, error) {
	s := &Storage{Backend: cfg.StorageBackend}

	var blobs usecase.BlobStore
	switch cfg.StorageBackend {
	case config.BackendMemory:
		blobs = memory.NewBlobStore()

	case config.BackendFile:
		store, err := file.NewBlobStore(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		blobs = store

	case config.BackendSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func() { db.Close() })
		blobs = sqliterepo.NewBlobStore(db)

	case config.BackendPostgres:
		if err := postgres.RunMigrations(cfg.DatabaseURL, logger); err != nil {
			return nil, err
		}

		connectCtx, cancel := context.WithTimeout(ctx, cfg.DatabaseTimeout)
		defer cancel()

		pool, err := postgres.NewPoolWithConfig(connectCtx, postgres.PoolConfig{
			DatabaseURL: cfg.DatabaseURL,
			MaxConns:    cfg.DatabaseMaxConns,
			MinConns:    cfg.DatabaseMinConns,
		})
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, pool.Close)
		blobs = pgrepo.NewBlobStore(pool, pgrepo.NewRetrier(logger))

	case config.BackendRedis:
		client, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func() { client.Close() })
		blobs = redisrepo.NewBlobStore(client)
		s.Idempotency = redisrepo.NewIdempotencyStore(client)

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}

	if s.Idempotency == nil {
		s.Idempotency = memory.NewIdempotencyStore()
	}
	s.Blobs = repository.WithPrefix(blobs, cfg.StoreKeyPrefix)

	logger.Info().
		Str("backend", s.Backend).
		Str("location", describe(cfg)).
		Msg("storage opened")

	return s, nil
}

func describe(cfg *config.Config) string {
	switch cfg.StorageBackend {
	case config.BackendFile:
		if abs, err := filepath.Abs(cfg.DataDir); err == nil {
			return abs
		}
		return cfg.DataDir
	case config.BackendSQLite:
		return cfg.SQLitePath
	case config.BackendMemory:
		return "memory"
	default:
		return "remote"
	}
}
