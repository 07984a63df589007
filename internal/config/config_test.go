package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, StorageMemory, cfg.StorageType)
	assert.Equal(t, PersistenceNone, cfg.Persistence)
	assert.Equal(t, 3, cfg.MinPlayersToStart)
	assert.False(t, cfg.ShowHintToRegulars)
	assert.Equal(t, 500*time.Millisecond, cfg.RoleRedelivery)
	assert.Equal(t, 5*time.Second, cfg.ReconnectGrace)
	assert.Equal(t, "queue", cfg.FallbackMode)
	assert.Zero(t, cfg.RandomSeed)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("MIN_PLAYERS_TO_START", "4")
	t.Setenv("SHOW_HINT_TO_REGULARS", "true")
	t.Setenv("RECONNECT_GRACE", "0s")
	t.Setenv("RANDOM_SEED", "42")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, 4, cfg.MinPlayersToStart)
	assert.True(t, cfg.ShowHintToRegulars)
	assert.Equal(t, time.Duration(0), cfg.ReconnectGrace)
	assert.Equal(t, uint64(42), cfg.RandomSeed)
}

func TestLoadReadsDotenvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("FALLBACK_MODE=broadcast\nPUBLIC_BASE_URL=https://spy.example\n"), 0o600))
	t.Cleanup(func() {
		_ = os.Unsetenv("FALLBACK_MODE")
		_ = os.Unsetenv("PUBLIC_BASE_URL")
	})

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "broadcast", cfg.FallbackMode)
	assert.Equal(t, "https://spy.example", cfg.PublicBaseURL)
}

func TestLoadEnvironmentWinsOverDotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("HTTP_PORT=7000\n"), 0o600))
	t.Setenv("HTTP_PORT", "7100")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7100, cfg.HTTPPort)
}

func TestValidate(t *testing.T) {
	base := Config{
		HTTPPort:    8080,
		StorageType: StorageMemory,
		Persistence: PersistenceNone,
		LogLevel:    "info",
	}
	require.NoError(t, base.Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"redis without url", func(c *Config) { c.StorageType = StorageRedis }},
		{"unknown storage", func(c *Config) { c.StorageType = "disk" }},
		{"postgres without dsn", func(c *Config) { c.Persistence = PersistencePostgres }},
		{"unknown persistence", func(c *Config) { c.Persistence = "mongo" }},
		{"bad port", func(c *Config) { c.HTTPPort = 0 }},
		{"negative grace", func(c *Config) { c.ReconnectGrace = -time.Second }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	level, err := ParseLogLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	level, err = ParseLogLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)
}
