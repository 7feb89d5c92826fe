// Package config provides configuration for the chat service.
package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the service configuration, loaded from the environment.
type Config struct {
	// Server settings
	HTTPPort int `envconfig:"HTTP_PORT" default:"8000"`
	WSPort   int `envconfig:"WS_PORT" default:"8090"`

	// Database
	DatabaseURL string `envconfig:"DATABASE_URL" default:"file:chat.db?cache=shared&mode=rwc"`

	// WebSocket settings
	PingInterval   time.Duration `envconfig:"WS_PING_INTERVAL" default:"30s"`
	WriteTimeout   time.Duration `envconfig:"WS_WRITE_TIMEOUT" default:"10s"`
	ReadTimeout    time.Duration `envconfig:"WS_READ_TIMEOUT" default:"60s"`
	MaxMessageSize int64         `envconfig:"WS_MAX_MESSAGE_SIZE" default:"65536"`

	// HTTP rate limiting (requests per second per client, with burst)
	RateLimit float64 `envconfig:"HTTP_RATE_LIMIT" default:"20"`
	RateBurst int     `envconfig:"HTTP_RATE_BURST" default:"40"`

	// Logging
	Env      string `envconfig:"APP_ENV" default:"dev"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
