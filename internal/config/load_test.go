package config_test

import (
	"testing"

	"github.com/campforge/campforge-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setRequiredEnv sets the secrets that have no defaults so Load can succeed.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CAMPFORGE_DATABASE_URL", "postgres://localhost:5432/campforge_test")
	t.Setenv("CAMPFORGE_AUTH_JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("CAMPFORGE_LLM_GEMINI_API_KEY", "test-api-key")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, 60, cfg.Auth.TokenLifetimeMinutes)
	assert.Equal(t, 10, cfg.Worker.PollIntervalSec)
	assert.Equal(t, 5, cfg.Worker.BatchSize)
	assert.Equal(t, 300, cfg.Worker.CooldownSec)
	assert.Equal(t, 5, cfg.Worker.PollHintSec)
	assert.Equal(t, "gemini-2.0-flash", cfg.LLM.ModelName)
}

func TestLoadEnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CAMPFORGE_SERVER_PORT", "9999")
	t.Setenv("CAMPFORGE_SERVER_LOG_LEVEL", "debug")
	t.Setenv("CAMPFORGE_WORKER_BATCH_SIZE", "3")
	t.Setenv("CAMPFORGE_WORKER_COOLDOWN_SEC", "30")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, 3, cfg.Worker.BatchSize)
	assert.Equal(t, 30, cfg.Worker.CooldownSec)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "missing database url", key: "CAMPFORGE_DATABASE_URL", value: ""},
		{name: "short jwt secret", key: "CAMPFORGE_AUTH_JWT_SECRET", value: "tooshort"},
		{name: "bad log level", key: "CAMPFORGE_SERVER_LOG_LEVEL", value: "loud"},
		{name: "zero batch size", key: "CAMPFORGE_WORKER_BATCH_SIZE", value: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}
