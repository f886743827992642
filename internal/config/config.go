// Package config loads pinetsh settings from YAML with environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/pinet-os/pinetsh/internal/logging"
)

// Environment variables that override file values
const (
	EnvUser     = "PINETSH_USER"
	EnvLogLevel = "PINETSH_LOG_LEVEL"
)

// Config holds all pinetsh configuration.
type Config struct {
	// Session identity
	User      string `yaml:"user"`
	Hostname  string `yaml:"hostname"`
	ShellName string `yaml:"shell_name"` // prefix of "command not found" lines

	// REPL
	HistoryFile  string `yaml:"history_file"`
	HistoryLimit int    `yaml:"history_limit"`
	Color        bool   `yaml:"color"`

	// Optional sinks
	AuditLog    string `yaml:"audit_log"`
	MetricsAddr string `yaml:"metrics_addr"`

	Logging logging.Config `yaml:"logging"`
}

// DefaultConfig returns default configuration values
func DefaultConfig() *Config {
	return &Config{
		User:         "pi",
		Hostname:     "raspberrypi",
		ShellName:    "bash",
		HistoryFile:  "",
		HistoryLimit: 1000,
		Color:        true,
		Logging: logging.Config{
			Level:  "warn",
			Format: "console",
		},
	}
}

// Load reads configuration from path. A missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()
	if cfg.ShellName == "" {
		cfg.ShellName = "bash"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(EnvUser); v != "" {
		c.User = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks fields the shell cannot run without
func (c *Config) Validate() error {
	if c.User == "" {
		return fmt.Errorf("config: user must not be empty")
	}
	if c.Hostname == "" {
		return fmt.Errorf("config: hostname must not be empty")
	}
	if c.ShellName == "" {
		return fmt.Errorf("config: shell_name must not be empty")
	}
	if c.HistoryLimit < 0 {
		return fmt.Errorf("config: history_limit must be >= 0, got %d", c.HistoryLimit)
	}
	return nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
