package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/DanielPopoola/ficmart-bnpl-gateway/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("BNPL_PRIMARY__ENV", "sandbox")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ProviderTimeout)
	assert.Equal(t, 3, cfg.Retry.MaxRetries)
	assert.Equal(t, "info", cfg.Logger.Level)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("BNPL_PRIMARY__ENV", "production")
	t.Setenv("BNPL_SERVER__PORT", "9090")
	t.Setenv("BNPL_PROVIDERS__KLARNA__API_KEY", "merchant-uid")
	t.Setenv("BNPL_PROVIDERS__KLARNA__API_SECRET", "shared-secret")
	t.Setenv("BNPL_PROVIDERS__KLARNA__WEBHOOK_SECRET", "whsec")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "merchant-uid", cfg.Providers.Klarna.APIKey)

	resolved := cfg.ProviderConfigs()
	klarna := resolved[domain.ProviderKlarna]
	assert.Equal(t, "production", klarna.Environment)
	assert.False(t, klarna.IsSandbox())
	assert.Equal(t, "whsec", klarna.WebhookSecret)

	// Unset providers still resolve, just without credentials.
	assert.Empty(t, resolved[domain.ProviderSezzle].APIKey)
	assert.Equal(t, "production", resolved[domain.ProviderSezzle].Environment)
}

func TestLoadConfig_RejectsUnknownEnvironment(t *testing.T) {
	t.Setenv("BNPL_PRIMARY__ENV", "staging")

	_, err := LoadConfig()

	require.Error(t, err)
}

func TestLoggerConfig_NewLogger(t *testing.T) {
	logger := LoggerConfig{Level: "debug", Format: "text"}.NewLogger()
	require.NotNil(t, logger)
	assert.True(t, logger.Enabled(t.Context(), slog.LevelDebug))

	quiet := LoggerConfig{Level: "error"}.NewLogger()
	assert.False(t, quiet.Enabled(t.Context(), slog.LevelInfo))
}
