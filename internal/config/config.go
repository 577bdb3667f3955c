// Package config loads the gateway's configuration from the environment.
// Variables use the BNPL_ prefix with __ as the section separator, e.g.
// BNPL_SERVER__PORT or BNPL_PROVIDERS__KLARNA__API_KEY.
package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/providers/env"

	"github.com/DanielPopoola/ficmart-bnpl-gateway/internal/domain"
)

type Config struct {
	Primary   Primary         `koanf:"primary"`
	Server    ServerConfig    `koanf:"server"`
	Providers ProvidersConfig `koanf:"providers"`
	Retry     RetryConfig     `koanf:"retry"`
	Logger    LoggerConfig    `koanf:"logger"`
}

type Primary struct {
	// Env is "sandbox" or "production". It selects provider endpoints and the
	// webhook signature policy.
	Env string `koanf:"env" validate:"required,oneof=sandbox production"`
}

type ServerConfig struct {
	Port            string        `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ProviderTimeout time.Duration `koanf:"provider_timeout"`
}

// ProviderConfig mirrors one provider's credential block. Empty credentials
// are legal; the provider is simply not offered.
type ProviderConfig struct {
	APIKey        string `koanf:"api_key"`
	APISecret     string `koanf:"api_secret"`
	MerchantID    string `koanf:"merchant_id"`
	BaseURL       string `koanf:"base_url"`
	WebhookSecret string `koanf:"webhook_secret"`
}

type ProvidersConfig struct {
	Klarna   ProviderConfig `koanf:"klarna"`
	Affirm   ProviderConfig `koanf:"affirm"`
	Afterpay ProviderConfig `koanf:"afterpay"`
	Sezzle   ProviderConfig `koanf:"sezzle"`
}

type RetryConfig struct {
	BaseDelay  time.Duration `koanf:"base_delay"`
	MaxRetries int           `koanf:"max_retries"`
}

type LoggerConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

func LoadConfig() (*Config, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
	k := koanf.New(".")

	err := k.Load(env.Provider("BNPL_", ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, "BNPL_")),
			"__",
			".",
		)
	}), nil)
	if err != nil {
		logger.Error("failed to load environment variables", "error", err)
		return nil, err
	}

	cfg := &Config{
		Primary: Primary{Env: "sandbox"},
		Server: ServerConfig{
			Port:            "8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ProviderTimeout: 30 * time.Second,
		},
		Retry: RetryConfig{
			BaseDelay:  500 * time.Millisecond,
			MaxRetries: 3,
		},
		Logger: LoggerConfig{Level: "info", Format: "json"},
	}

	if err = k.Unmarshal("", cfg); err != nil {
		logger.Error("could not unmarshal main config", "error", err)
		return nil, err
	}

	validate := validator.New()
	if err = validate.Struct(cfg); err != nil {
		logger.Error("config validation failed", "error", err)
		return nil, err
	}

	return cfg, nil
}

// ProviderConfigs resolves the credential blocks into the domain shape the
// registry consumes, stamping the shared environment onto each.
func (c *Config) ProviderConfigs() map[domain.ProviderID]domain.ProviderConfig {
	resolve := func(p ProviderConfig) domain.ProviderConfig {
		return domain.ProviderConfig{
			APIKey:        p.APIKey,
			APISecret:     p.APISecret,
			MerchantID:    p.MerchantID,
			Environment:   c.Primary.Env,
			BaseURL:       p.BaseURL,
			WebhookSecret: p.WebhookSecret,
		}
	}
	return map[domain.ProviderID]domain.ProviderConfig{
		domain.ProviderKlarna:   resolve(c.Providers.Klarna),
		domain.ProviderAffirm:   resolve(c.Providers.Affirm),
		domain.ProviderAfterpay: resolve(c.Providers.Afterpay),
		domain.ProviderSezzle:   resolve(c.Providers.Sezzle),
	}
}

// NewLogger builds the process logger from the configured level and format.
func (c LoggerConfig) NewLogger() *slog.Logger {
	var level slog.Level
	switch strings.ToLower(c.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(c.Format) == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
