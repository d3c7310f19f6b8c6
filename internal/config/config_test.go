package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManagerDefaults(t *testing.T) {
	manager, err := NewManager()
	require.NoError(t, err)

	cfg := manager.GetConfig()
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, int64(10), cfg.Server.MaxUploadMB)

	assert.Equal(t, "sqlite", cfg.Feedback.Backend)
	assert.True(t, cfg.Feedback.RunMigrate)
	assert.False(t, cfg.Explainer.Enabled)
	assert.False(t, cfg.Cache.Enabled)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 20, cfg.RateLimit.RequestsPerSecond)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestManagerEnvironmentOverrides(t *testing.T) {
	t.Setenv("PHARMAGUARD_SERVER_PORT", "9090")
	t.Setenv("PHARMAGUARD_LOGGING_LEVEL", "debug")
	t.Setenv("PHARMAGUARD_FEEDBACK_BACKEND", "postgres")
	t.Setenv("PHARMAGUARD_FEEDBACK_DATABASE_URL", "postgres://localhost/pharmaguard")

	manager, err := NewManager()
	require.NoError(t, err)

	cfg := manager.GetConfig()
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "postgres", cfg.Feedback.Backend)
	assert.Equal(t, "postgres://localhost/pharmaguard", cfg.Feedback.DatabaseURL)
	assert.NoError(t, manager.Validate())
}

func TestManagerValidate(t *testing.T) {
	tests := []struct {
		name    string
		envKey  string
		envVal  string
		wantErr string
	}{
		{"invalid port", "PHARMAGUARD_SERVER_PORT", "-1", "invalid server port"},
		{"invalid upload size", "PHARMAGUARD_SERVER_MAX_UPLOAD_MB", "0", "invalid max upload size"},
		{"invalid backend", "PHARMAGUARD_FEEDBACK_BACKEND", "mysql", "invalid feedback backend"},
		{"invalid log level", "PHARMAGUARD_LOGGING_LEVEL", "verbose", "invalid log level"},
		{"invalid rate limit", "PHARMAGUARD_RATE_LIMIT_REQUESTS_PER_SECOND", "0", "invalid rate limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.envKey, tt.envVal)

			manager, err := NewManager()
			require.NoError(t, err)

			err = manager.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestManagerValidatePostgresRequiresURL(t *testing.T) {
	t.Setenv("PHARMAGUARD_FEEDBACK_BACKEND", "postgres")

	manager, err := NewManager()
	require.NoError(t, err)

	err = manager.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database URL is required")
}

func TestManagerValidateExplainerRequiresURL(t *testing.T) {
	t.Setenv("PHARMAGUARD_EXPLAINER_ENABLED", "true")

	manager, err := NewManager()
	require.NoError(t, err)

	err = manager.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "explainer base URL is required")
}
