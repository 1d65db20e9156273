package di

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"user-registry/internal/adapter/source"
	"user-registry/internal/adapter/source/cached"
	"user-registry/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":1,"name":"A","email":"a@x.com"}]`), 0o600))

	cfg := &config.Config{}
	cfg.App.HTTPPort = "8080"
	cfg.App.GRPCPort = "50051"
	cfg.App.ShutdownTimeoutSeconds = 5
	cfg.Source.URL = path
	cfg.Redis.CacheTTL = 60
	cfg.Redis.SnapshotChannel = "registry:snapshots"
	cfg.RateLimit.RequestsPerSecond = 10
	cfg.RateLimit.WindowSeconds = 1
	return cfg
}

func TestNewContainer_WithoutRedis(t *testing.T) {
	c, err := NewContainer(context.Background(), testConfig(t), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, c.Close()) })

	assert.IsType(t, &source.File{}, c.Source)
	assert.Nil(t, c.RedisClient)
	assert.Nil(t, c.RateLimiter)
	assert.Nil(t, c.Publisher)
	assert.NotNil(t, c.APIHandler)
	assert.NotNil(t, c.ViewHandler)

	users, err := c.Source.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestNewContainer_WithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.Redis.Enabled = true
	cfg.Redis.Host = mr.Host()
	cfg.Redis.Port = mr.Port()
	cfg.Redis.PoolSize = 2
	cfg.RateLimit.Enabled = true

	c, err := NewContainer(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, c.Close()) })

	assert.IsType(t, &cached.Source{}, c.Source)
	assert.NotNil(t, c.RateLimiter)
	assert.NotNil(t, c.Publisher)
}

func TestNewContainer_SQLiteSource(t *testing.T) {
	cfg := testConfig(t)
	cfg.Source.URL = "sqlite://" + filepath.Join(t.TempDir(), "seed.db")
	cfg.DB.MaxOpenConns = 1
	cfg.Logger.Level = "warn"

	c, err := NewContainer(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.NotNil(t, c.DB)
	assert.NoError(t, c.Close())
}

func TestNewContainer_InvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Source.URL = ""

	_, err := NewContainer(context.Background(), cfg, zaptest.NewLogger(t))

	assert.ErrorContains(t, err, "SOURCE_URL is required")
}

func TestNewContainer_BadSourceURL(t *testing.T) {
	cfg := testConfig(t)
	cfg.Source.URL = "ftp://host/users.json"

	_, err := NewContainer(context.Background(), cfg, zaptest.NewLogger(t))

	assert.ErrorContains(t, err, "failed to open source")
}
