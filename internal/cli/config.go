package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

var errNoSession = errors.New("no active session, run 'bjctl play start' first")

// Config holds CLI configuration
type Config struct {
	ServerURL   string
	SessionFile string
	Output      string
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL:   getEnvOrDefault("BJ_SERVER", "http://localhost:8080"),
		SessionFile: getEnvOrDefault("BJ_SESSION_FILE", defaultSessionFile()),
		Output:      "text",
	}
}

// LoadSession returns the remembered session id
func (c *Config) LoadSession() (string, error) {
	data, err := os.ReadFile(c.SessionFile)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errNoSession
		}
		return "", err
	}

	id := strings.TrimSpace(string(data))
	if id == "" {
		return "", errNoSession
	}
	return id, nil
}

// SaveSession remembers the session id for later commands
func (c *Config) SaveSession(id string) error {
	dir := filepath.Dir(c.SessionFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	return os.WriteFile(c.SessionFile, []byte(id), 0600)
}

// ClearSession forgets the remembered session
func (c *Config) ClearSession() error {
	err := os.Remove(c.SessionFile)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".bjctl/session"
	}
	return filepath.Join(home, ".bjctl", "session")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
