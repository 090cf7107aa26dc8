package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftpay/internal/repository/kv"
)

func TestCreateRepository(t *testing.T) {
	isolate(t)
	cfg := NewConfig()
	cfg.Storage.Dir = filepath.Join(t.TempDir(), "nested", "data")

	repo, err := CreateRepository(cfg)
	require.NoError(t, err)
	defer repo.Close()

	_, err = os.Stat(cfg.GetSQLitePath())
	require.NoError(t, err)

	shifts, err := repo.ListShifts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, shifts)
}

func TestCreateTestRepository(t *testing.T) {
	repo, err := CreateTestRepository()
	require.NoError(t, err)
	defer repo.Close()

	require.NoError(t, repo.SetSetting(context.Background(), "k", "v"))
	setting, err := repo.GetSetting(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "v", setting.Value)
}

func TestCreateKVStore(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	tests := []struct {
		name   string
		driver string
	}{
		{"bolt", DriverBolt},
		{"redis", DriverRedis},
		{"memory", DriverMemory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			cfg.Storage.Driver = tt.driver
			cfg.Storage.Dir = t.TempDir()
			cfg.Storage.RedisURL = "redis://" + mr.Addr()

			store, err := CreateKVStore(ctx, cfg)
			require.NoError(t, err)
			defer store.Close()

			require.NoError(t, store.Set(ctx, "k", []byte("v")))
			v, err := store.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, "v", string(v))
		})
	}
}

func TestCreateKVStore_Errors(t *testing.T) {
	cfg := NewConfig()
	cfg.Storage.Driver = DriverSQLite

	_, err := CreateKVStore(context.Background(), cfg)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "storage.driver", cfgErr.Field)

	cfg.Storage.Driver = DriverRedis
	cfg.Storage.RedisURL = "://bad"
	_, err = CreateKVStore(context.Background(), cfg)
	assert.Error(t, err)
}

func TestCreateKVStore_MemoryIsFresh(t *testing.T) {
	cfg := NewConfig()
	cfg.Storage.Driver = DriverMemory

	store, err := CreateKVStore(context.Background(), cfg)
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "shifts")
	assert.ErrorIs(t, err, kv.ErrNotFound)
}
