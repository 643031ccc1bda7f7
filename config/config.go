// Package config loads the selection service configuration from YAML with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all service configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Catalog CatalogConfig `yaml:"catalog"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the listeners.
type ServerConfig struct {
	GRPCPort string `yaml:"grpc_port"`
	HTTPPort string `yaml:"http_port"` // empty disables the HTTP facade

	// CORSOrigins lists the browser origins allowed to call the HTTP facade.
	CORSOrigins []string `yaml:"cors_origins"`
}

// CatalogConfig configures the product catalog client.
type CatalogConfig struct {
	BaseURL        string `yaml:"base_url"`
	Timeout        string `yaml:"timeout"`
	MinQueryLength int    `yaml:"min_query_length"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

const defaultCatalogTimeout = 5 * time.Second

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			GRPCPort:    "50210",
			HTTPPort:    "8210",
			CORSOrigins: []string{"*"},
		},
		Catalog: CatalogConfig{
			BaseURL:        "http://localhost:3000/api",
			Timeout:        "5s",
			MinQueryLength: 2,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment variables are applied on top in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	// PORT matches the convention of the other services.
	if port := os.Getenv("PORT"); port != "" {
		c.Server.GRPCPort = port
	}
	if port := os.Getenv("HTTP_PORT"); port != "" {
		c.Server.HTTPPort = port
	}
	if url := os.Getenv("CATALOG_BASE_URL"); url != "" {
		c.Catalog.BaseURL = url
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// CatalogTimeout returns the catalog request timeout as a duration.
func (c *Config) CatalogTimeout() time.Duration {
	d, err := time.ParseDuration(c.Catalog.Timeout)
	if err != nil || d <= 0 {
		return defaultCatalogTimeout
	}
	return d
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	if c.Server.GRPCPort == "" {
		return fmt.Errorf("grpc port not configured (set server.grpc_port or PORT)")
	}
	if err := validPort(c.Server.GRPCPort); err != nil {
		return fmt.Errorf("invalid grpc port: %w", err)
	}
	if c.Server.HTTPPort != "" {
		if err := validPort(c.Server.HTTPPort); err != nil {
			return fmt.Errorf("invalid http port: %w", err)
		}
	}
	if c.Catalog.BaseURL == "" {
		return fmt.Errorf("catalog base url not configured (set catalog.base_url or CATALOG_BASE_URL)")
	}
	if c.Catalog.MinQueryLength < 0 {
		return fmt.Errorf("catalog min_query_length must not be negative: %d", c.Catalog.MinQueryLength)
	}
	return nil
}

func validPort(port string) error {
	n, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("%q is not a number", port)
	}
	if n < 0 || n > 65535 {
		return fmt.Errorf("%d out of range", n)
	}
	return nil
}
