package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("UNREAD_CACHE_TTL", "")

	cfg := Load()

	assert.Equal(t, StorageMemory, cfg.StorageDriver)
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, 5*time.Minute, cfg.UnreadCacheTTL)
	assert.True(t, cfg.MigrateOnStart)
	assert.Equal(t, "en", cfg.DefaultLocale)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("UNREAD_CACHE_TTL", "30s")
	t.Setenv("MIGRATE_ON_START", "false")
	t.Setenv("EVENTS_CHANNEL", "custom")

	cfg := Load()

	assert.Equal(t, StoragePostgres, cfg.StorageDriver)
	assert.Equal(t, 30*time.Second, cfg.UnreadCacheTTL)
	assert.False(t, cfg.MigrateOnStart)
	assert.Equal(t, "custom", cfg.EventsChannel)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("UNREAD_CACHE_TTL", "soon")
	t.Setenv("MIGRATE_ON_START", "maybe")

	cfg := Load()

	assert.Equal(t, 5*time.Minute, cfg.UnreadCacheTTL)
	assert.True(t, cfg.MigrateOnStart)
}

func TestNewRedisClient_Disabled(t *testing.T) {
	client, err := NewRedisClient(&Config{})
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestNewPostgresDB_RequiresURL(t *testing.T) {
	_, err := NewPostgresDB(&Config{})
	assert.Error(t, err)
}
