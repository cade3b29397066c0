// Package config defines the service configuration and the loaders that
// populate it from files and the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the top-level service configuration.
type Config struct {
	Service   ServiceConfig   `yaml:"service" mapstructure:"service"`
	Web       WebConfig       `yaml:"web" mapstructure:"web"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
	Telemetry TelemetryConfig `yaml:"telemetry" mapstructure:"telemetry"`
	Breach    BreachConfig    `yaml:"breach" mapstructure:"breach"`
	Password  PasswordConfig  `yaml:"password" mapstructure:"password"`
	Advisory  AdvisoryConfig  `yaml:"advisory" mapstructure:"advisory"`
	Database  DatabaseConfig  `yaml:"database" mapstructure:"database"`
}

// ServiceConfig identifies the running service.
type ServiceConfig struct {
	Name string `yaml:"name" mapstructure:"name" validate:"required"`
}

// WebConfig configures the API and debug listeners.
type WebConfig struct {
	APIHost            string        `yaml:"api_host" mapstructure:"api_host" validate:"required"`
	DebugHost          string        `yaml:"debug_host" mapstructure:"debug_host"`
	ReadTimeout        time.Duration `yaml:"read_timeout" mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout       time.Duration `yaml:"write_timeout" mapstructure:"write_timeout" validate:"gt=0"`
	IdleTimeout        time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout" validate:"gt=0"`
	ShutdownTimeout    time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout" validate:"gt=0"`
	CORSAllowedOrigins []string      `yaml:"cors_allowed_origins" mapstructure:"cors_allowed_origins"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level      string `yaml:"level" mapstructure:"level" validate:"oneof=debug info warn error"`
	File       string `yaml:"file" mapstructure:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" mapstructure:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `yaml:"max_age_days" mapstructure:"max_age_days" validate:"gte=0"`
	Compress   bool   `yaml:"compress" mapstructure:"compress"`
}

// TelemetryConfig configures tracing and metrics export. An empty endpoint
// disables export.
type TelemetryConfig struct {
	Endpoint    string  `yaml:"endpoint" mapstructure:"endpoint"`
	Probability float64 `yaml:"probability" mapstructure:"probability" validate:"gte=0,lte=1"`
	Insecure    bool    `yaml:"insecure" mapstructure:"insecure"`
}

// BreachConfig configures the account-breach directory.
type BreachConfig struct {
	BaseURL         string        `yaml:"base_url" mapstructure:"base_url" validate:"required,url"`
	APIKey          string        `yaml:"api_key" mapstructure:"api_key"`
	UserAgent       string        `yaml:"user_agent" mapstructure:"user_agent" validate:"required"`
	RateLimit       float64       `yaml:"rate_limit" mapstructure:"rate_limit" validate:"gte=0"`
	Burst           int           `yaml:"burst" mapstructure:"burst" validate:"gte=0"`
	Timeout         time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gt=0"`
	MaxRetries      uint64        `yaml:"max_retries" mapstructure:"max_retries"`
	InitialInterval time.Duration `yaml:"initial_interval" mapstructure:"initial_interval"`
	MaxInterval     time.Duration `yaml:"max_interval" mapstructure:"max_interval"`
	CatalogTTL      time.Duration `yaml:"catalog_ttl" mapstructure:"catalog_ttl" validate:"gt=0"`
}

// PasswordConfig configures the password range API and the exposure check.
type PasswordConfig struct {
	BaseURL    string        `yaml:"base_url" mapstructure:"base_url" validate:"required,url"`
	UserAgent  string        `yaml:"user_agent" mapstructure:"user_agent" validate:"required"`
	AddPadding bool          `yaml:"add_padding" mapstructure:"add_padding"`
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gt=0"`
}

// AdvisoryConfig configures the language-model backend. An empty or
// placeholder API key disables the advisory endpoints.
type AdvisoryConfig struct {
	BaseURL string        `yaml:"base_url" mapstructure:"base_url" validate:"required,url"`
	APIKey  string        `yaml:"api_key" mapstructure:"api_key"`
	Model   string        `yaml:"model" mapstructure:"model" validate:"required"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gt=0"`
}

// DatabaseConfig configures the optional Postgres breach catalog. An empty
// URL selects the in-memory catalog.
type DatabaseConfig struct {
	URL      string `yaml:"url" mapstructure:"url"`
	MinConns int32  `yaml:"min_conns" mapstructure:"min_conns" validate:"gte=0"`
	MaxConns int32  `yaml:"max_conns" mapstructure:"max_conns" validate:"gte=0"`
}

// Default returns a configuration that runs locally against the public
// upstream endpoints.
func Default() *Config {
	return &Config{
		Service: ServiceConfig{Name: "breachcheck"},
		Web: WebConfig{
			APIHost:            "0.0.0.0:5000",
			DebugHost:          "0.0.0.0:5010",
			ReadTimeout:        5 * time.Second,
			WriteTimeout:       30 * time.Second,
			IdleTimeout:        120 * time.Second,
			ShutdownTimeout:    20 * time.Second,
			CORSAllowedOrigins: []string{"*"},
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Telemetry: TelemetryConfig{Probability: 0.05, Insecure: true},
		Breach: BreachConfig{
			BaseURL:         "https://haveibeenpwned.com/api/v3",
			UserAgent:       "breachcheck/1.0",
			RateLimit:       10.0 / 60.0,
			Burst:           1,
			Timeout:         10 * time.Second,
			MaxRetries:      2,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
			CatalogTTL:      24 * time.Hour,
		},
		Password: PasswordConfig{
			BaseURL:    "https://api.pwnedpasswords.com",
			UserAgent:  "breachcheck/1.0",
			AddPadding: true,
			Timeout:    10 * time.Second,
		},
		Advisory: AdvisoryConfig{
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4",
			Timeout: 30 * time.Second,
		},
		Database: DatabaseConfig{MinConns: 1, MaxConns: 10},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every field constraint and reports all failures at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating config: %w", err)
	}

	errs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		errs = append(errs, fmt.Errorf("%s: failed %q constraint", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %w", errors.Join(errs...))
}
