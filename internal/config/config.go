// Package config reads server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storage backends for the live registries
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

// Persistence backends for the durable mirror
const (
	PersistenceNone     = "none"
	PersistenceSQLite   = "sqlite"
	PersistencePostgres = "postgres"
)

// Config is the complete server configuration
type Config struct {
	HTTPHost string `env:"HTTP_HOST"`
	HTTPPort int    `env:"HTTP_PORT" envDefault:"8080"`

	StorageType string `env:"STORAGE_TYPE" envDefault:"memory"`
	RedisURL    string `env:"REDIS_URL"`

	Persistence string `env:"PERSISTENCE" envDefault:"none"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"spyword.db"`
	PostgresDSN string `env:"POSTGRES_DSN"`

	WordsFile          string        `env:"WORDS_FILE"`
	MinPlayersToStart  int           `env:"MIN_PLAYERS_TO_START" envDefault:"3"`
	ShowHintToRegulars bool          `env:"SHOW_HINT_TO_REGULARS" envDefault:"false"`
	RoleRedelivery     time.Duration `env:"ROLE_REDELIVERY_DELAY" envDefault:"500ms"`
	ReconnectGrace     time.Duration `env:"RECONNECT_GRACE" envDefault:"5s"`
	FallbackMode       string        `env:"FALLBACK_MODE" envDefault:"queue"`
	// RandomSeed makes role assignment reproducible. Zero uses crypto randomness.
	RandomSeed uint64 `env:"RANDOM_SEED"`

	AdminSecretHash string `env:"ADMIN_SECRET_HASH"`
	PublicBaseURL   string `env:"PUBLIC_BASE_URL"`
	LogLevel        string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads an optional .env file and then the environment.
// Variables already set in the environment win over the file.
func Load(dotenvPaths ...string) (Config, error) {
	if len(dotenvPaths) == 0 {
		dotenvPaths = []string{".env"}
	}
	for _, path := range dotenvPaths {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", path, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the chosen backends have what they need
func (c Config) Validate() error {
	switch c.StorageType {
	case StorageMemory:
	case StorageRedis:
		if c.RedisURL == "" {
			return errors.New("REDIS_URL required when STORAGE_TYPE=redis")
		}
	default:
		return fmt.Errorf("unknown STORAGE_TYPE %q", c.StorageType)
	}

	switch c.Persistence {
	case PersistenceNone, PersistenceSQLite:
	case PersistencePostgres:
		if c.PostgresDSN == "" {
			return errors.New("POSTGRES_DSN required when PERSISTENCE=postgres")
		}
	default:
		return fmt.Errorf("unknown PERSISTENCE %q", c.Persistence)
	}

	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP_PORT %d", c.HTTPPort)
	}
	if c.ReconnectGrace < 0 || c.RoleRedelivery < 0 {
		return errors.New("durations must not be negative")
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLogLevel converts LOG_LEVEL into a slog level
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q", s)
	}
	return level, nil
}
