// Package main provides the feattrack server CLI.
package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the server configuration.
type Config struct {
	Server      ServerConfig   `yaml:"server"`
	Database    DatabaseConfig `yaml:"database"`
	Uploads     UploadsConfig  `yaml:"uploads"`
	Development bool           `yaml:"development"` // surface storage error details in API responses
	Verbose     bool           `yaml:"-"`           // set via CLI flag
}

// ServerConfig contains server settings.
type ServerConfig struct {
	HTTPAddress    string `yaml:"http_address"`      // HTTP API listen address (default: :8080)
	MetricsAddress string `yaml:"metrics_address"`   // Prometheus metrics listen address (default: :9090)
	RateLimitPerIP int    `yaml:"rate_limit_per_ip"` // upload requests per IP per minute
}

// DatabaseConfig contains database settings.
type DatabaseConfig struct {
	Path string `yaml:"path"` // SQLite database file path
}

// UploadsConfig contains image upload settings.
type UploadsConfig struct {
	Enabled bool   `yaml:"enabled"`  // enable the upload endpoint
	Dir     string `yaml:"dir"`      // directory where uploads are stored
	BaseURL string `yaml:"base_url"` // public URL prefix for stored files
}

// LoadConfig loads configuration from a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{Uploads: UploadsConfig{Enabled: true}}
	cfg.setDefaults()
	return cfg
}

// setDefaults sets default values for missing config fields.
func (c *Config) setDefaults() {
	if c.Server.HTTPAddress == "" {
		c.Server.HTTPAddress = ":8080"
	}
	if c.Server.MetricsAddress == "" {
		c.Server.MetricsAddress = ":9090"
	}
	if c.Server.RateLimitPerIP == 0 {
		c.Server.RateLimitPerIP = 30
	}
	if c.Database.Path == "" {
		c.Database.Path = "data/feattrack.db"
	}
	if c.Uploads.Dir == "" {
		c.Uploads.Dir = "data/uploads"
	}
	if c.Uploads.BaseURL == "" {
		c.Uploads.BaseURL = "/uploads"
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.HTTPAddress == "" {
		return fmt.Errorf("server.http_address is required")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Server.RateLimitPerIP < 0 {
		return fmt.Errorf("server.rate_limit_per_ip must not be negative")
	}
	if c.Uploads.Enabled && c.Uploads.Dir == "" {
		return fmt.Errorf("uploads.dir is required when uploads are enabled")
	}
	return nil
}
