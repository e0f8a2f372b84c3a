package config

import (
	"fmt"
	"os"
	"path/filepath"

	"regrename/internal/errors"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"
)

// Log formats
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Settings holds general behavior switches.
type Settings struct {
	Debug      bool   `yaml:"debug"`       // Enable debug logging
	LogFormat  string `yaml:"log_format"`  // text or json
	StrictExit bool   `yaml:"strict_exit"` // Exit non-zero when the loop stops on an error
	Summary    bool   `yaml:"summary"`     // Print a summary after the run
}

// Config represents the application configuration structure.
type Config struct {
	Settings Settings `yaml:"settings"`
	Exclude  []string `yaml:"exclude"` // Globs matched against paths relative to the base path
	Watch    struct {
		Enabled bool `yaml:"enabled"` // Keep renaming new files after the first pass
	} `yaml:"watch"`
}

// DefaultPath returns ~/.config/regrename/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "regrename", "config.yaml"), nil
}

// LoadConfig loads configuration from the default location.
func LoadConfig() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return New(), nil
	}
	return LoadConfigFile(path)
}

// LoadConfigFile loads configuration from a specific file path.
// If the file doesn't exist, returns default configuration.
func LoadConfigFile(path string) (*Config, error) {
	cfg := New()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.NewConfigError("error reading config file", path, errors.InvalidConfig, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewConfigError("error parsing config file", path, errors.InvalidConfig, err)
	}
	if cfg.Settings.LogFormat == "" {
		cfg.Settings.LogFormat = LogFormatText
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// New returns the default configuration.
func New() *Config {
	cfg := &Config{}
	cfg.Settings.LogFormat = LogFormatText
	cfg.Exclude = []string{}
	return cfg
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.NewConfigError("nil config", "", errors.InvalidConfig, nil)
	}

	switch c.Settings.LogFormat {
	case LogFormatText, LogFormatJSON:
	default:
		return errors.NewConfigError(
			fmt.Sprintf("invalid log format %q (want text or json)", c.Settings.LogFormat),
			"settings.log_format", errors.InvalidConfig, nil)
	}

	for i, pattern := range c.Exclude {
		if pattern == "" {
			return errors.NewConfigError("exclude pattern is empty", fmt.Sprintf("exclude[%d]", i), errors.InvalidConfig, nil)
		}
		if _, err := glob.Compile(pattern, '/'); err != nil {
			return errors.NewConfigError("invalid exclude pattern", fmt.Sprintf("exclude[%d]", i), errors.InvalidConfig, err)
		}
	}

	return nil
}
