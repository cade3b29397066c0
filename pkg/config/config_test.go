package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Log.Level = "verbose" },
			wantErr: "Config.Log.Level",
		},
		{
			name:    "breach base url must be a url",
			mutate:  func(c *Config) { c.Breach.BaseURL = "not a url" },
			wantErr: "Config.Breach.BaseURL",
		},
		{
			name:    "sampling probability above one",
			mutate:  func(c *Config) { c.Telemetry.Probability = 1.5 },
			wantErr: "Config.Telemetry.Probability",
		},
		{
			name:    "zero password timeout",
			mutate:  func(c *Config) { c.Password.Timeout = 0 },
			wantErr: "Config.Password.Timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFileLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
web:
  api_host: 127.0.0.1:8080
password:
  add_padding: false
  timeout: 3s
breach:
  api_key: hibp-from-file
`), 0o600))

	cfg, err := NewFileLoader(path).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.Web.APIHost)
	assert.False(t, cfg.Password.AddPadding)
	assert.Equal(t, 3*time.Second, cfg.Password.Timeout)
	assert.Equal(t, "hibp-from-file", cfg.Breach.APIKey)

	// Untouched keys keep their defaults.
	assert.Equal(t, Default().Advisory, cfg.Advisory)
	assert.Equal(t, Default().Web.ShutdownTimeout, cfg.Web.ShutdownTimeout)
}

func TestFileLoaderMissingFile(t *testing.T) {
	_, err := NewFileLoader(filepath.Join(t.TempDir(), "nope.yaml")).Load(context.Background())
	assert.Error(t, err)
}

func TestEnvLoader(t *testing.T) {
	t.Setenv("BREACHCHECK_WEB_API_HOST", "0.0.0.0:9000")
	t.Setenv("BREACHCHECK_PASSWORD_TIMEOUT", "750ms")
	t.Setenv("BREACHCHECK_PASSWORD_ADD_PADDING", "false")
	t.Setenv("BREACHCHECK_BREACH_MAX_RETRIES", "5")
	t.Setenv("BREACHCHECK_WEB_CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("OPENAI_API_KEY", "sk-legacy")

	cfg, err := NewEnvLoader(nil).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.Web.APIHost)
	assert.Equal(t, 750*time.Millisecond, cfg.Password.Timeout)
	assert.False(t, cfg.Password.AddPadding)
	assert.Equal(t, uint64(5), cfg.Breach.MaxRetries)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Web.CORSAllowedOrigins)
	assert.Equal(t, "sk-legacy", cfg.Advisory.APIKey)

	assert.Equal(t, Default().Breach.BaseURL, cfg.Breach.BaseURL)
	assert.Equal(t, Default().Breach.CatalogTTL, cfg.Breach.CatalogTTL)
}

func TestEnvLoaderPrefixedKeyWinsOverLegacy(t *testing.T) {
	t.Setenv("HIBP_API_KEY", "legacy")
	t.Setenv("BREACHCHECK_BREACH_API_KEY", "prefixed")

	cfg, err := NewEnvLoader(nil).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "prefixed", cfg.Breach.APIKey)
}

func TestLoadOverlaysEnvOnFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\nservice:\n  name: from-file\n"), 0o600))
	t.Setenv("BREACHCHECK_SERVICE_NAME", "from-env")

	cfg, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "from-env", cfg.Service.Name)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("BREACHCHECK_LOG_LEVEL", "loud")

	_, err := Load(context.Background(), "")
	assert.ErrorContains(t, err, "Config.Log.Level")
}
