// Package config defines the tasktimer configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the config file is looked up when no path is given.
var DefaultPath = filepath.Join(".tasktimer", "config.yaml")

// Config is the top-level tasktimer configuration.
type Config struct {
	Web     WebConfig     `yaml:"web"`
	Alert   AlertConfig   `yaml:"alert"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// WebConfig controls the HTTP front end.
type WebConfig struct {
	Addr string `yaml:"addr" validate:"required,hostname_port"`
}

// AlertConfig controls how the completion tone is played locally.
type AlertConfig struct {
	Enabled bool     `yaml:"enabled"`
	Command []string `yaml:"command"` // e.g. ["aplay", "-q", "-"]; the WAV arrives on stdin
	Bell    bool     `yaml:"bell"`
}

type LogConfig struct {
	Level      string `yaml:"level" validate:"oneof=debug info warn error"`
	Format     string `yaml:"format" validate:"oneof=text json"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `yaml:"max_backups" validate:"gte=0"`
}

type MetricsConfig struct {
	OTLPEndpoint string        `yaml:"otlp_endpoint" validate:"omitempty,hostname_port"`
	Interval     time.Duration `yaml:"interval" validate:"gte=0"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Web: WebConfig{
			Addr: "localhost:8000",
		},
		Alert: AlertConfig{
			Enabled: true,
			Bell:    true,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Metrics: MetricsConfig{
			Interval: 30 * time.Second,
		},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Load reads a YAML config file over the defaults. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
