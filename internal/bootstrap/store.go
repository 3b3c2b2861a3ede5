package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/target/mmk-ui-session/config"
	"github.com/target/mmk-ui-session/internal/adapters/filestore"
	"github.com/target/mmk-ui-session/internal/adapters/memory"
	"github.com/target/mmk-ui-session/internal/adapters/postgres"
	redisstore "github.com/target/mmk-ui-session/internal/adapters/redis"
	"github.com/target/mmk-ui-session/internal/adapters/sqlite"
	"github.com/target/mmk-ui-session/internal/ports"
)

// AppName names the per-user configuration directory.
const AppName = "mmk-session"

// StoreConfig contains what BuildStore needs to open the configured backend.
type StoreConfig struct {
	Storage  config.StorageConfig
	Postgres config.DBConfig
	Redis    config.RedisConfig
	Logger   *slog.Logger
}

// Closer releases the resources behind a store.
type Closer func() error

func noopCloser() error { return nil }

// BuildStore opens the KeyValueStore selected by cfg.Storage.Backend. The returned
// closer must be called when the store is no longer used.
//
//nolint:ireturn // the backend is chosen at runtime.
func BuildStore(ctx context.Context, cfg StoreConfig) (ports.KeyValueStore, Closer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Storage.Backend {
	case config.StorageMemory:
		return memory.NewStore(), noopCloser, nil

	case config.StorageFile, "":
		path := cfg.Storage.FilePath
		if path == "" {
			var err error
			if path, err = filestore.DefaultPath(AppName); err != nil {
				return nil, nil, err
			}
		}
		store, err := filestore.NewStore(path)
		if err != nil {
			return nil, nil, err
		}
		logger.Debug("session storage ready", "backend", "file", "path", path)
		return store, noopCloser, nil

	case config.StorageSQLite:
		path := cfg.Storage.SQLitePath
		if path == "" {
			var err error
			if path, err = defaultSQLitePath(); err != nil {
				return nil, nil, err
			}
		}
		if path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
				return nil, nil, fmt.Errorf("create sqlite directory: %w", err)
			}
		}
		store, err := sqlite.Open(ctx, path, logger)
		if err != nil {
			return nil, nil, err
		}
		logger.Debug("session storage ready", "backend", "sqlite", "path", path)
		return store, store.Close, nil

	case config.StorageRedis:
		client, err := OpenRedis(ctx, cfg.Redis, logger)
		if err != nil {
			return nil, nil, err
		}
		return redisstore.NewStoreWithPrefix(client, cfg.Redis.KeyPrefix), client.Close, nil

	case config.StoragePostgres:
		db, err := OpenPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, nil, err
		}
		store := postgres.NewStore(db, cfg.Postgres.Table)
		if err := store.Migrate(ctx); err != nil {
			if closeErr := db.Close(); closeErr != nil {
				err = errors.Join(err, fmt.Errorf("close database connection: %w", closeErr))
			}
			return nil, nil, fmt.Errorf("migrate session table: %w", err)
		}
		return store, db.Close, nil

	default:
		return nil, nil, fmt.Errorf("unsupported storage backend %q", cfg.Storage.Backend)
	}
}

func defaultSQLitePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", AppName, "session.db"), nil
}
