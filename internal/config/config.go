// Package config handles the optional sigwire config.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds tool-level defaults. Flags and environment variables win
// over file values; the file only fills gaps.
type Config struct {
	Profile  string      `yaml:"profile,omitempty"`
	Region   string      `yaml:"region,omitempty"`
	Endpoint string      `yaml:"endpoint,omitempty"`
	Timeout  string      `yaml:"timeout,omitempty"`
	Debug    DebugConfig `yaml:"debug,omitempty"`
}

// DebugConfig configures trace log files.
type DebugConfig struct {
	Dir           string `yaml:"dir,omitempty"`
	RetentionDays int    `yaml:"retention_days,omitempty"`
}

// RequestTimeout parses the configured timeout, defaulting to 30s.
func (c *Config) RequestTimeout() (time.Duration, error) {
	if c.Timeout == "" {
		return 30 * time.Second, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid timeout %q: must be positive", c.Timeout)
	}
	return d, nil
}

// Load reads a config file. A missing file is not an error and yields a
// zero config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &cfg, nil
}

// DefaultPath returns ~/.config/sigwire/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "sigwire", "config.yaml")
}

// LoadDefault loads the config from the default path.
func LoadDefault() (*Config, error) {
	path := DefaultPath()
	if path == "" {
		return &Config{}, nil
	}
	return Load(path)
}
