package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Fetcher   FetcherConfig   `yaml:"fetcher"`
	Delivery  DeliveryConfig  `yaml:"delivery"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string        `yaml:"host" envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port         int           `yaml:"port" envconfig:"PORT" default:"5000"`
	ClientOrigin string        `yaml:"client_origin" envconfig:"CLIENT_ORIGIN" default:"http://localhost:5173"`
	ReadTimeout  time.Duration `yaml:"read_timeout" envconfig:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `yaml:"write_timeout" envconfig:"SERVER_WRITE_TIMEOUT" default:"10m"`
}

// FetcherConfig holds external media-fetcher configuration.
type FetcherConfig struct {
	Binary  string        `yaml:"binary" envconfig:"YTDLP_BINARY" default:"yt-dlp"`
	Timeout time.Duration `yaml:"timeout" envconfig:"YTDLP_TIMEOUT" default:"120s"`
}

// DeliveryConfig holds streaming delivery configuration.
type DeliveryConfig struct {
	TempPath           string        `yaml:"temp_path" envconfig:"TEMP_PATH" default:"./tmp"`
	RemoteFetchTimeout time.Duration `yaml:"remote_fetch_timeout" envconfig:"REMOTE_FETCH_TIMEOUT" default:"15s"`
}

// RateLimitConfig holds the fixed-window rate limiter configuration.
type RateLimitConfig struct {
	Window time.Duration `yaml:"window" envconfig:"RATE_LIMIT_WINDOW" default:"60s"`
	Max    int           `yaml:"max" envconfig:"RATE_LIMIT_MAX" default:"120"`
}

// Load reads configuration from file and environment variables.
// Environment variables override file values.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	// Load from YAML file if provided
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	// Override with environment variables
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are sane.
func (c *Config) Validate() error {
	if c.Fetcher.Binary == "" {
		return fmt.Errorf("fetcher binary is required")
	}
	if c.Fetcher.Timeout <= 0 {
		return fmt.Errorf("fetcher timeout must be positive")
	}
	if c.Delivery.TempPath == "" {
		return fmt.Errorf("temp path is required")
	}
	if c.Delivery.RemoteFetchTimeout <= 0 {
		return fmt.Errorf("remote fetch timeout must be positive")
	}
	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate limit window must be positive")
	}
	if c.RateLimit.Max <= 0 {
		return fmt.Errorf("rate limit max must be positive")
	}
	return nil
}

// Address returns the server address in host:port format.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
