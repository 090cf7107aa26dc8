package config

import (
	"context"
	"fmt"
	"os"

	"shiftpay/internal/repository/kv"
	"shiftpay/internal/repository/sqlite"
)

// EnsureStorageDir creates the storage directory with the configured permissions
func (c *Config) EnsureStorageDir() error {
	if err := os.MkdirAll(c.Storage.Dir, os.FileMode(c.Storage.DirPermissions)); err != nil {
		return fmt.Errorf("failed to create storage directory %s: %w", c.Storage.Dir, err)
	}
	return nil
}

// CreateRepository creates a SQLite repository using the configuration system
func CreateRepository(config *Config) (sqlite.Repository, error) {
	if err := config.EnsureStorageDir(); err != nil {
		return nil, err
	}

	repo, err := sqlite.New(config.GetSQLitePath(), sqlite.Options{QueryTimeout: config.GetQueryTimeout()})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return repo, nil
}

// CreateKVStore creates the key/value store selected by storage.driver.
// Only the bolt, redis and memory drivers are key/value backed.
func CreateKVStore(ctx context.Context, config *Config) (kv.Store, error) {
	switch config.Storage.Driver {
	case DriverBolt:
		if err := config.EnsureStorageDir(); err != nil {
			return nil, err
		}
		store, err := kv.NewBoltStore(config.GetBoltPath())
		if err != nil {
			return nil, fmt.Errorf("failed to open bolt store %s: %w", config.GetBoltPath(), err)
		}
		return store, nil
	case DriverRedis:
		ctx, cancel := context.WithTimeout(ctx, config.GetQueryTimeout())
		defer cancel()
		store, err := kv.NewRedisStore(ctx, config.Storage.RedisURL, config.Storage.RedisNamespace)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return store, nil
	case DriverMemory:
		return kv.NewMemoryStore(), nil
	default:
		return nil, &ConfigError{Field: "storage.driver", Message: fmt.Sprintf("driver %q is not a key/value store", config.Storage.Driver)}
	}
}

// CreateTestRepository creates an in-memory repository for testing
func CreateTestRepository() (sqlite.Repository, error) {
	repo, err := sqlite.New(":memory:", sqlite.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize test database: %w", err)
	}

	return repo, nil
}
