package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Loader provides configuration loading capabilities. It abstracts the source
// of configuration to allow for different implementations like files or
// environment variables.
type Loader interface {
	// Load retrieves and parses the configuration from the underlying source.
	// It returns the parsed configuration or an error if loading fails.
	Load(ctx context.Context) (*Config, error)
}

// DefaultLoader returns the built-in defaults.
type DefaultLoader struct{}

// Load implements Loader.
func (DefaultLoader) Load(context.Context) (*Config, error) { return Default(), nil }

// FileLoader loads configuration from a YAML file on disk. Keys missing from
// the file keep their default values.
type FileLoader struct {
	// path is the filesystem path to the configuration file.
	path string
}

// NewFileLoader creates a new FileLoader for path.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{path: path}
}

// Load reads and parses the configuration file.
func (l *FileLoader) Load(ctx context.Context) (*Config, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// EnvPrefix prefixes every environment override, e.g. BREACHCHECK_WEB_API_HOST.
const EnvPrefix = "BREACHCHECK"

// legacyEnv maps keys to the unprefixed variable names commonly used for the
// upstream credentials.
var legacyEnv = map[string]string{
	"breach.api_key":   "HIBP_API_KEY",
	"advisory.api_key": "OPENAI_API_KEY",
	"database.url":     "DATABASE_URL",
}

// EnvLoader overlays environment variables on top of a base loader. Every
// key is addressable as EnvPrefix + "_" + the upper-cased, underscore-joined
// key path.
type EnvLoader struct {
	base Loader
}

// NewEnvLoader creates an EnvLoader. A nil base starts from the defaults.
func NewEnvLoader(base Loader) *EnvLoader {
	if base == nil {
		base = DefaultLoader{}
	}
	return &EnvLoader{base: base}
}

// Load reads the base configuration then applies environment overrides.
func (l *EnvLoader) Load(ctx context.Context) (*Config, error) {
	base, err := l.base.Load(ctx)
	if err != nil {
		return nil, err
	}

	// Round trip through YAML so viper knows every key and its current value.
	raw, err := yaml.Marshal(base)
	if err != nil {
		return nil, fmt.Errorf("failed to encode base config: %w", err)
	}
	var settings map[string]any
	if err := yaml.Unmarshal(raw, &settings); err != nil {
		return nil, fmt.Errorf("failed to decode base config: %w", err)
	}

	v := viper.New()
	if err := v.MergeConfigMap(settings); err != nil {
		return nil, fmt.Errorf("failed to seed config: %w", err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, name := range legacyEnv {
		if _, ok := os.LookupEnv(EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))); ok {
			continue
		}
		if val, ok := os.LookupEnv(name); ok {
			v.Set(key, val)
		}
	}

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment: %w", err)
	}

	return cfg, nil
}

// Load builds the configuration from path (when non-empty) and the
// environment, then validates it.
func Load(ctx context.Context, path string) (*Config, error) {
	var base Loader = DefaultLoader{}
	if path != "" {
		base = NewFileLoader(path)
	}

	cfg, err := NewEnvLoader(base).Load(ctx)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
