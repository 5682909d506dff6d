// Package config holds the tunable parameters the enclosing engine supplies
// to the durability core, loadable from YAML.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const defaultWALBufferSize = 64 * 1024

// Config carries the settings for one engine instance.
type Config struct {
	// DataDir is the directory holding the WAL segment files.
	DataDir string `yaml:"data_dir" validate:"required"`

	// WALBufferSize is the append buffer size in bytes. 0 selects the
	// default.
	WALBufferSize int `yaml:"wal_buffer_size" validate:"gte=0"`

	// LogLevel names the minimum level emitted: debug, info, warn, error.
	LogLevel string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

// Default returns a Config populated with default values for dataDir.
func Default(dataDir string) *Config {
	return &Config{
		DataDir:       dataDir,
		WALBufferSize: defaultWALBufferSize,
		LogLevel:      "info",
	}
}

// FillDefaults sets any zero-value fields to their defaults.
func (c *Config) FillDefaults() {
	if c.WALBufferSize == 0 {
		c.WALBufferSize = defaultWALBufferSize
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate checks the config's field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Load reads a YAML config file, fills defaults, and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	c.FillDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
