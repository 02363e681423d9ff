// Package config loads server configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all tunables for the server process.
type Config struct {
	Addr         string        `env:"PROVINCES_ADDR" envDefault:":8080"`
	DataDir      string        `env:"PROVINCES_DATA_DIR" envDefault:"data"`
	LogLevel     string        `env:"PROVINCES_LOG_LEVEL" envDefault:"info"`
	PingInterval time.Duration `env:"PROVINCES_PING_INTERVAL" envDefault:"20s"`
	WatchContent bool          `env:"PROVINCES_WATCH_CONTENT" envDefault:"true"`
	// Seed fixes the shuffle RNG for every match when non-zero. Useful for
	// local debugging; leave at 0 in production.
	Seed int64 `env:"PROVINCES_SEED" envDefault:"0"`
}

// FromEnv parses the configuration from the process environment.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
