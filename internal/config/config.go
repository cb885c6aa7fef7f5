package config

import (
	"time"

	"agency-billing/internal/core"
	ierr "agency-billing/internal/errors"
	"agency-billing/internal/logger"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	DatabaseURL    string   `env:"DATABASE_URL"`
	ServerPort     string   `env:"SERVER_PORT" envDefault:"8080"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
	JWTSecret      string   `env:"JWT_SECRET"`

	// Billing
	InvoiceDueDays               int           `env:"INVOICE_DUE_DAYS" envDefault:"15"`
	AutoSendSubscriptionInvoices bool          `env:"AUTO_SEND_SUBSCRIPTION_INVOICES" envDefault:"true"`
	ProfileCacheTTL              time.Duration `env:"PROFILE_CACHE_TTL" envDefault:"1m"`

	// Logging
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat     string `env:"LOG_FORMAT" envDefault:"console"`
	LogTimeFormat string `env:"LOG_TIME_FORMAT" envDefault:"2006-01-02T15:04:05Z07:00"`
	LogOutput     string `env:"LOG_OUTPUT" envDefault:"stdout"`
}

// Load parses the process environment. Callers load .env with godotenv first.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, ierr.WithError(err).
			WithMessage("parse env").
			WithHint("Environment configuration could not be parsed").
			Mark(ierr.ErrConfiguration)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.InvoiceDueDays < 0 {
		return configError("INVOICE_DUE_DAYS must be >= 0, got %d", c.InvoiceDueDays)
	}
	if c.ProfileCacheTTL < 0 {
		return configError("PROFILE_CACHE_TTL must not be negative")
	}
	return nil
}

// RequireDatabase reports a descriptive error when no database is configured.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return configError("DATABASE_URL environment variable not set")
	}
	return nil
}

// RequireJWTSecret is checked by everything that signs or verifies tokens.
func (c *Config) RequireJWTSecret() error {
	if len(c.JWTSecret) < 16 {
		return configError("JWT_SECRET must be set and at least 16 characters long")
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

// Billing returns the settings passed explicitly into the billing services.
func (c *Config) Billing() core.BillingConfig {
	return core.BillingConfig{
		InvoiceDueDays:               c.InvoiceDueDays,
		AutoSendSubscriptionInvoices: c.AutoSendSubscriptionInvoices,
		ProfileCacheTTL:              c.ProfileCacheTTL,
	}
}

func configError(format string, args ...any) error {
	return ierr.NewErrorf(format, args...).
		WithHintf(format, args...).
		Mark(ierr.ErrConfiguration)
}
