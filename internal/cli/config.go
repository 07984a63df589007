package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mcoot/spyword/internal/model"
)

// Config holds CLI configuration
type Config struct {
	ServerURL   string
	AdminSecret string
	IDFile      string
	Output      string
	Verbose     bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL:   getEnvOrDefault("SPYCTL_SERVER", "http://localhost:8080"),
		AdminSecret: os.Getenv("SPYCTL_ADMIN_SECRET"),
		IDFile:      getEnvOrDefault("SPYCTL_ID_FILE", defaultIDFile()),
		Output:      "text",
		Verbose:     false,
	}
}

// LoadPlayerID reads the player ID saved by an earlier run, if any
func (c *Config) LoadPlayerID() (model.PlayerID, error) {
	data, err := os.ReadFile(c.IDFile)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil // First run
		}
		return "", err
	}
	return model.PlayerID(strings.TrimSpace(string(data))), nil
}

// SavePlayerID stores the player ID so the next run can reclaim it
func (c *Config) SavePlayerID(id model.PlayerID) error {
	dir := filepath.Dir(c.IDFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	return os.WriteFile(c.IDFile, []byte(id), 0600)
}

func defaultIDFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".spyctl/player"
	}
	return filepath.Join(home, ".spyctl", "player")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
