package storage_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/creaturemon/internal/config"
	"github.com/KirkDiggler/creaturemon/internal/storage"
	"github.com/KirkDiggler/creaturemon/internal/testutils"
)

func TestOpen_Memory(t *testing.T) {
	repo, closer, err := storage.Open(context.Background(),
		config.StorageConfig{Driver: config.DriverMemory}, config.RedisConfig{})
	require.NoError(t, err)
	require.NotNil(t, repo)
	assert.NoError(t, closer())
}

func TestOpen_SQLitePersistsAcrossOpens(t *testing.T) {
	ctx := context.Background()
	cfg := config.StorageConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "creatures.db"),
	}

	repo, closer, err := storage.Open(ctx, cfg, config.RedisConfig{})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, testutils.CreateTestCreature("c-1", "owner-1", "Rex")))
	require.NoError(t, closer())

	repo, closer, err = storage.Open(ctx, cfg, config.RedisConfig{})
	require.NoError(t, err)
	defer closer()

	roster, err := repo.FetchAll(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, "Rex", roster[0].Name)
}

func TestOpen_Errors(t *testing.T) {
	ctx := context.Background()

	_, _, err := storage.Open(ctx, config.StorageConfig{Driver: "mongo"}, config.RedisConfig{})
	assert.Error(t, err)

	_, _, err = storage.Open(ctx, config.StorageConfig{Driver: config.DriverRedis}, config.RedisConfig{URL: "not a url"})
	assert.Error(t, err)

	_, _, err = storage.Open(ctx, config.StorageConfig{Driver: config.DriverPostgres}, config.RedisConfig{})
	assert.Error(t, err)
}
