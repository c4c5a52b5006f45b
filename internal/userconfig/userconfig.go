// Package userconfig provides user configuration management for
// gradlemend. Configuration is stored in $GRADLEMEND_HOME/config.toml
// (default ~/.gradlemend/config.toml) and can be modified via the
// `gradlemend config` command.
package userconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents user-configurable settings.
type Config struct {
	// Providers is the oracle provider preference order.
	// The first available provider becomes primary.
	Providers []string `toml:"providers"`

	// MaxAttempts bounds fix attempts per repair session.
	MaxAttempts int `toml:"max_attempts"`

	// BuildTimeout bounds one Gradle invocation, as a Go duration string.
	BuildTimeout string `toml:"build_timeout"`

	// OracleTimeout bounds one oracle call, as a Go duration string.
	OracleTimeout string `toml:"oracle_timeout"`

	// Listen is the serve command's bind address.
	Listen string `toml:"listen"`

	// Workspace is where fetched projects are cloned.
	// Empty means $GRADLEMEND_HOME/projects.
	Workspace string `toml:"workspace"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Providers:     []string{"claude", "gemini", "local"},
		MaxAttempts:   3,
		BuildTimeout:  "10m",
		OracleTimeout: "2m",
		Listen:        "127.0.0.1:8400",
	}
}

// Home returns the gradlemend home directory, honoring GRADLEMEND_HOME.
func Home() (string, error) {
	if home := os.Getenv("GRADLEMEND_HOME"); home != "" {
		return home, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(userHome, ".gradlemend"), nil
}

// ConfigPath returns the config file path.
func ConfigPath() (string, error) {
	home, err := Home()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "config.toml"), nil
}

// Load reads the config file and returns the configuration.
// Returns default values if the file doesn't exist.
// Returns an error only for file parsing issues, not missing files.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil // Silently use defaults
	}
	return loadFromPath(path)
}

// loadFromPath reads config from a specific file path (for testing).
func loadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil // File doesn't exist, use defaults
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the config file.
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.saveToPath(path)
}

// saveToPath writes config to a specific file path (for testing).
func (c *Config) saveToPath(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// BuildTimeoutDuration parses BuildTimeout, falling back to the default
// when unset or malformed.
func (c *Config) BuildTimeoutDuration() time.Duration {
	return parseDuration(c.BuildTimeout, 10*time.Minute)
}

// OracleTimeoutDuration parses OracleTimeout, falling back to the
// default when unset or malformed.
func (c *Config) OracleTimeoutDuration() time.Duration {
	return parseDuration(c.OracleTimeout, 2*time.Minute)
}

// WorkspaceDir resolves the workspace directory.
func (c *Config) WorkspaceDir() (string, error) {
	if c.Workspace != "" {
		return c.Workspace, nil
	}
	home, err := Home()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "projects"), nil
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// Get returns the value of a config key as a string.
// Returns empty string and false if the key doesn't exist.
func (c *Config) Get(key string) (string, bool) {
	switch strings.ToLower(key) {
	case "providers":
		return strings.Join(c.Providers, ","), true
	case "max_attempts":
		return strconv.Itoa(c.MaxAttempts), true
	case "build_timeout":
		return c.BuildTimeout, true
	case "oracle_timeout":
		return c.OracleTimeout, true
	case "listen":
		return c.Listen, true
	case "workspace":
		return c.Workspace, true
	default:
		return "", false
	}
}

// Set updates a config key from its string representation.
// Returns an error for unknown keys or malformed values.
func (c *Config) Set(key, value string) error {
	switch strings.ToLower(key) {
	case "providers":
		parts := strings.Split(value, ",")
		providers := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				providers = append(providers, p)
			}
		}
		if len(providers) == 0 {
			return fmt.Errorf("providers must name at least one provider")
		}
		c.Providers = providers
	case "max_attempts":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("max_attempts must be a positive integer, got %q", value)
		}
		c.MaxAttempts = n
	case "build_timeout":
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("build_timeout must be a duration like 10m, got %q", value)
		}
		c.BuildTimeout = value
	case "oracle_timeout":
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("oracle_timeout must be a duration like 2m, got %q", value)
		}
		c.OracleTimeout = value
	case "listen":
		c.Listen = value
	case "workspace":
		c.Workspace = value
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

// Keys returns the known config keys in display order.
func Keys() []string {
	return []string{"providers", "max_attempts", "build_timeout", "oracle_timeout", "listen", "workspace"}
}
