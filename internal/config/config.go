// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all service settings. A YAML file supplies the base
// values, environment variables override it, and command-line flags
// override both (applied in main).
type Config struct {
	Server   ServerConfig  `yaml:"server"`
	Database Database      `yaml:"database"`
	Gateway  GatewayConfig `yaml:"gateway"`

	// Protocol is the plan wire revision accepted from the assistant:
	// "json" (canonical) or "tag" (legacy).
	Protocol string `yaml:"protocol"`

	// LogLevel is a zerolog level name (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type Database struct {
	Path string `yaml:"path"`
}

type GatewayConfig struct {
	URL        string `yaml:"url"`
	Model      string `yaml:"model"`
	MaxRetries int    `yaml:"max_retries"`

	// TimeoutSeconds bounds one completion request.
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// APIKey is never read from the file; it comes from the
	// MCP_PROXY_API_KEY environment variable only.
	APIKey string `yaml:"-"`
}

// Timeout returns the completion timeout as a duration.
func (g GatewayConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSeconds) * time.Second
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server:   ServerConfig{Host: "0.0.0.0", Port: 8011},
		Database: Database{Path: "/data/nutriplan.db"},
		Gateway: GatewayConfig{
			MaxRetries:     2,
			TimeoutSeconds: 60,
		},
		Protocol: "json",
		LogLevel: "info",
	}
}

// Load reads the YAML file at path over the defaults, then applies
// environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if cfg.Protocol != "json" && cfg.Protocol != "tag" {
		return nil, fmt.Errorf("invalid protocol %q: must be json or tag", cfg.Protocol)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("MCP_PROXY_URL"); v != "" {
		c.Gateway.URL = v
	}
	if v := os.Getenv("MCP_PROXY_API_KEY"); v != "" {
		c.Gateway.APIKey = v
	}
	if v := os.Getenv("OPENROUTER_MODEL"); v != "" {
		c.Gateway.Model = v
	}
	if v := os.Getenv("NUTRIPLAN_DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("NUTRIPLAN_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}
