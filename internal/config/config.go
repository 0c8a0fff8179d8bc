// Package config loads the YAML configuration of the replay harness.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Errors returned by Validate.
var (
	ErrEmptyInput     = errors.New("input vectors must not be empty")
	ErrLengthMismatch = errors.New("inputs and seed must have the same length")
	ErrUnknownDType   = errors.New("unknown dtype")
	ErrUnknownLevel   = errors.New("unknown log level")
)

// Config describes one replay run.
type Config struct {
	Inputs   Inputs    `yaml:"inputs"`
	Seed     []float64 `yaml:"seed"`      // Gradient seeded at the output
	DType    string    `yaml:"dtype"`     // "float32" or "float64"
	LogLevel string    `yaml:"log_level"` // debug, info, warn, error
	Snapshot string    `yaml:"snapshot"`  // Optional .bsnp path the saved stack round-trips through
}

// Inputs are the two leaf vectors. The graph is recorded for both, the
// checkpoint is taken from A and restored into B.
type Inputs struct {
	A []float64 `yaml:"a"`
	B []float64 `yaml:"b"`
}

// Default returns the canonical replay configuration.
func Default() *Config {
	return &Config{
		Inputs: Inputs{
			A: []float64{1, 2, 3},
			B: []float64{1, 1, 1},
		},
		Seed:     []float64{0, 1, 0},
		DType:    "float32",
		LogLevel: "info",
	}
}

// Load reads the YAML file at path over the defaults and validates it.
func Load(path string) (*Config, error) {
	//nolint:gosec // G304: config path comes from the command line
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644) //nolint:gosec // G306: config is not secret
}

// Validate checks that the configuration describes a runnable replay.
func (c *Config) Validate() error {
	if len(c.Inputs.A) == 0 || len(c.Inputs.B) == 0 {
		return ErrEmptyInput
	}
	if len(c.Inputs.A) != len(c.Inputs.B) || len(c.Seed) != len(c.Inputs.A) {
		return fmt.Errorf("%w: a=%d b=%d seed=%d",
			ErrLengthMismatch, len(c.Inputs.A), len(c.Inputs.B), len(c.Seed))
	}
	switch c.DType {
	case "float32", "float64":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDType, c.DType)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level returns the slog level named by LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownLevel, c.LogLevel)
	}
	return level, nil
}
