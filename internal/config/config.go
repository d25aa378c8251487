package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Configuration validation errors
var (
	ErrInvalidPort        = errors.New("PORT must be a number between 1 and 65535")
	ErrInvalidEnvironment = errors.New("ENVIRONMENT must be one of development, staging, production")
	ErrInvalidLogFormat   = errors.New("LOG_FORMAT must be json or text")
)

// Config holds all configuration for the application.
type Config struct {
	// Server
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"` // development, staging, production

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"` // json, text

	// HTTP timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Observability
	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"true"`

	// TrustProxy takes the client IP from X-Forwarded-For / X-Real-IP.
	// Only enable behind a proxy that overwrites those headers.
	TrustProxy bool `env:"TRUST_PROXY" envDefault:"false"`
}

// DefaultEnvFile is loaded when no env files are named. Unlike named
// files, it may be absent.
const DefaultEnvFile = ".env"

// Load reads configuration from environment variables.
// Named env files are loaded first and must exist. With none named,
// DefaultEnvFile is loaded if present.
func Load(envFiles ...string) (*Config, error) {
	if err := loadEnvFiles(envFiles); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadEnvFiles applies env files to the process environment. godotenv never
// overrides variables that are already set.
func loadEnvFiles(envFiles []string) error {
	if len(envFiles) == 0 {
		err := godotenv.Load(DefaultEnvFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load env file %s: %w", DefaultEnvFile, err)
		}
		return nil
	}

	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load env file %s: %w", f, err)
		}
	}
	return nil
}

// Validate checks field values that env parsing alone cannot.
func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("%w, got %q", ErrInvalidPort, c.Port)
	}

	switch c.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("%w, got %q", ErrInvalidEnvironment, c.Environment)
	}

	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("%w, got %q", ErrInvalidLogFormat, c.LogFormat)
	}

	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
