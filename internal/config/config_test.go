package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "replay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
inputs:
  a: [0.5, 1.5]
  b: [2, 2]
seed: [1, 0]
dtype: float64
log_level: debug
snapshot: out/replay.bsnp
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 1.5}, cfg.Inputs.A)
	assert.Equal(t, []float64{2, 2}, cfg.Inputs.B)
	assert.Equal(t, []float64{1, 0}, cfg.Seed)
	assert.Equal(t, "float64", cfg.DType)
	assert.Equal(t, "out/replay.bsnp", cfg.Snapshot)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoad_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "replay.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: warn\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Inputs, cfg.Inputs)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("inputs: [\n"), 0o600))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"empty a", func(c *Config) { c.Inputs.A = nil }, ErrEmptyInput},
		{"length mismatch", func(c *Config) { c.Inputs.B = []float64{1} }, ErrLengthMismatch},
		{"seed mismatch", func(c *Config) { c.Seed = []float64{1, 2} }, ErrLengthMismatch},
		{"unknown dtype", func(c *Config) { c.DType = "int8" }, ErrUnknownDType},
		{"unknown level", func(c *Config) { c.LogLevel = "loud" }, ErrUnknownLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.want)
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "replay.yaml")
	cfg := Default()
	cfg.Snapshot = "replay.bsnp"
	require.NoError(t, cfg.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}
