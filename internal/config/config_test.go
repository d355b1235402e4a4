package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "UNDO_EXPIRY", "SYNC_RETRY_INTERVAL", "RANDOM_SEED", "POSTGRES_DSN", "DB_PATH", "SYNC_BUCKET", "CORS_ORIGINS", "APP"} {
		t.Setenv(key, "")
	}
	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, 10*time.Second, cfg.UndoExpiry)
	assert.Equal(t, 5*time.Minute, cfg.SyncRetryInterval)
	assert.Empty(t, cfg.CORSOrigins)
	assert.False(t, cfg.Sync.Enabled())
	assert.False(t, cfg.IsDev())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "test")
	t.Setenv("APP", "dev")
	t.Setenv("PORT", "9090")
	t.Setenv("UNDO_EXPIRY", "30s")
	t.Setenv("RANDOM_SEED", "42")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("SYNC_BUCKET", "openplay")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsDev())
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.UndoExpiry)
	assert.Equal(t, int64(42), cfg.RandomSeed)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
	assert.True(t, cfg.Sync.Enabled())
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "test")

	t.Setenv("PORT", "abc")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("PORT", "70000")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("PORT", "")
	t.Setenv("UNDO_EXPIRY", "-1s")
	_, err = Load()
	assert.Error(t, err)
}
