package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.Equal(t, "localhost", cfg.Database().Host)
	assert.Equal(t, "foodgram", cfg.Database().DBName)
	assert.Equal(t, 6, cfg.Limits().Default)
	assert.Equal(t, 50, cfg.Limits().Max)
	assert.Equal(t, 5*time.Minute, cfg.Cache.ShoppingListTTL)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TTL)
	assert.Nil(t, cfg.Brokers())
	assert.False(t, cfg.Tracing().Enabled)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
http:
  port: "9000"
db:
  host: db.internal
  name: recipes
pagination:
  default_limit: 10
  max_limit: 100
kafka:
  brokers: "k1:9092, k2:9092"
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o644))

	t.Setenv("DB_HOST", "db.override")
	t.Setenv("CACHE_SHOPPING_LIST_TTL", "30s")
	t.Setenv("JAEGER_ENDPOINT", "http://jaeger:14268/api/traces")
	t.Setenv("RATELIMIT_REQUESTS", "5")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.HTTP.Port)
	assert.Equal(t, "db.override", cfg.DB.Host)
	assert.Equal(t, "recipes", cfg.DB.Name)
	assert.Equal(t, 10, cfg.Pagination.DefaultLimit)
	assert.Equal(t, 30*time.Second, cfg.Cache.ShoppingListTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Brokers())
	assert.True(t, cfg.Tracing().Enabled)
	assert.Equal(t, 5, cfg.RateLimit.Requests)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	t.Run("production without secret", func(t *testing.T) {
		t.Setenv("ENVIRONMENT", "production")
		_, err := Load(t.TempDir())
		assert.Error(t, err)
	})

	t.Run("max below default", func(t *testing.T) {
		t.Setenv("PAGINATION_MAX_LIMIT", "3")
		_, err := Load(t.TempDir())
		assert.Error(t, err)
	})

	t.Run("malformed file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("http: [unclosed"), 0o644))
		_, err := Load(dir)
		assert.Error(t, err)
	})
}
