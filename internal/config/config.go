package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

// StorageType selects the persistence backend
type StorageType string

const (
	StorageMemory StorageType = "memory"
	StorageRedis  StorageType = "redis"
	StorageSQLite StorageType = "sqlite"
)

// Config holds the server configuration, populated from TEAMDRAW_ prefixed
// environment variables
type Config struct {
	Host string `env:"HOST" envDefault:"0.0.0.0"`
	Port int    `env:"PORT" envDefault:"8080"`

	StorageType StorageType `env:"STORAGE" envDefault:"memory"`
	RedisURL    string      `env:"REDIS_URL" envDefault:"redis://localhost:6379"`
	SQLitePath  string      `env:"SQLITE_PATH" envDefault:"teamdraw.db"`

	// AdminToken is the bearer token required for admin endpoints.
	// When empty, admin endpoints are disabled entirely.
	AdminToken string `env:"ADMIN_TOKEN"`

	// PublicURL is the externally reachable base URL, used to build the
	// registration link encoded in the QR code
	PublicURL string `env:"PUBLIC_URL" envDefault:"http://localhost:8080"`

	// RevealDuration is how long a spin's reveal window lasts
	RevealDuration time.Duration `env:"REVEAL_DURATION" envDefault:"5s"`

	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
}

// Load reads configuration from the environment
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "TEAMDRAW_"}); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values Load cannot reject on its own
func (c *Config) Validate() error {
	switch c.StorageType {
	case StorageMemory, StorageRedis, StorageSQLite:
	default:
		return fmt.Errorf("unknown storage type %q", c.StorageType)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	return nil
}

// ListenAddr is the host:port pair the HTTP server binds to
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
