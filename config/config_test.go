package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "50210", cfg.Server.GRPCPort)
	assert.Equal(t, "8210", cfg.Server.HTTPPort)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "http://localhost:3000/api", cfg.Catalog.BaseURL)
	assert.Equal(t, 2, cfg.Catalog.MinQueryLength)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)
	assert.NoError(t, cfg.Validate())
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PORT", "HTTP_PORT", "CATALOG_BASE_URL", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}
}

func TestLoad(t *testing.T) {
	clearEnv(t)

	t.Run("missing file returns defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("file values override defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "selection.yaml")
		data := []byte(`
server:
  grpc_port: "6000"
catalog:
  base_url: "https://catalog.example.com/api"
  timeout: "750ms"
logging:
  level: debug
  development: true
`)
		require.NoError(t, os.WriteFile(path, data, 0644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "6000", cfg.Server.GRPCPort)
		assert.Equal(t, "8210", cfg.Server.HTTPPort, "unset keys keep defaults")
		assert.Equal(t, "https://catalog.example.com/api", cfg.Catalog.BaseURL)
		assert.Equal(t, 750*time.Millisecond, cfg.CatalogTimeout())
		assert.Equal(t, 2, cfg.Catalog.MinQueryLength)
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.True(t, cfg.Logging.Development)
	})

	t.Run("malformed yaml fails", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0644))

		_, err := Load(path)
		assert.Error(t, err)
	})
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "7000")
	t.Setenv("HTTP_PORT", "7001")
	t.Setenv("CATALOG_BASE_URL", "http://catalog:3000/api")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.Server.GRPCPort)
	assert.Equal(t, "7001", cfg.Server.HTTPPort)
	assert.Equal(t, "http://catalog:3000/api", cfg.Catalog.BaseURL)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestCatalogTimeout(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Duration
	}{
		{"2s", 2 * time.Second},
		{"", defaultCatalogTimeout},
		{"soon", defaultCatalogTimeout},
		{"-1s", defaultCatalogTimeout},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		cfg.Catalog.Timeout = tt.raw
		assert.Equal(t, tt.want, cfg.CatalogTimeout(), "timeout %q", tt.raw)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty grpc port", func(c *Config) { c.Server.GRPCPort = "" }},
		{"non-numeric grpc port", func(c *Config) { c.Server.GRPCPort = "grpc" }},
		{"http port out of range", func(c *Config) { c.Server.HTTPPort = "70000" }},
		{"empty catalog url", func(c *Config) { c.Catalog.BaseURL = "" }},
		{"negative min query length", func(c *Config) { c.Catalog.MinQueryLength = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	t.Run("empty http port disables facade", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Server.HTTPPort = ""
		assert.NoError(t, cfg.Validate())
	})
}

func TestLoad_exampleConfig(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join("..", "selection.example.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}
