package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultTimeout is used when timeout_seconds is unset.
const DefaultTimeout = 30 * time.Second

// Config holds CLI configuration stored at ~/.sprayctl/config.
type Config struct {
	ESPURL         string `yaml:"esp_url"`
	Username       string `yaml:"username,omitempty"`
	Password       string `yaml:"password,omitempty"`
	DefaultGroup   string `yaml:"default_group,omitempty"`
	DefaultQueue   string `yaml:"default_queue,omitempty"`
	TimeoutSeconds int    `yaml:"timeout_seconds,omitempty"`
	LogLevel       string `yaml:"log_level,omitempty"`
	LogFile        string `yaml:"log_file,omitempty"`
}

// Path returns the config file path.
func Path() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".sprayctl", "config")
}

// DefaultLogFile is where the TUI writes its log when log_file is unset.
func DefaultLogFile() string {
	return filepath.Join(filepath.Dir(Path()), "sprayctl.log")
}

// Load reads and parses the config file. Returns error if missing or insecure.
func Load() (*Config, error) {
	path := Path()

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("config not found: %w", err)
	}

	perm := info.Mode().Perm()
	if perm != 0600 {
		return nil, fmt.Errorf("config permissions too open: %04o (want 0600)", perm)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if strings.TrimSpace(cfg.ESPURL) == "" {
		return nil, fmt.Errorf("config missing esp_url")
	}

	return &cfg, nil
}

// Save writes the config to disk with secure permissions.
func (c *Config) Save() error {
	path := Path()
	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return err
	}
	// WriteFile keeps the mode of an existing file.
	return os.Chmod(path, 0600)
}

// Timeout returns the per-request timeout.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return DefaultTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Masked returns a copy safe to print.
func (c Config) Masked() Config {
	if c.Password != "" {
		c.Password = "********"
	}
	return c
}
