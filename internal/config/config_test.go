package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/abhisek/leadscore/internal/failure"
	"github.com/abhisek/leadscore/internal/features"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"LEADSCORE_INPUT", "LEADSCORE_MODEL", "LEADSCORE_PREPROCESSORS", "LEADSCORE_OUTPUT",
		"LEADSCORE_LOG_DIR", "LEADSCORE_LOG_LEVEL", "LEADSCORE_METRICS_FILE", "LEADSCORE_DERIVATION_POLICY",
	} {
		t.Setenv(k, "")
	}
}

// workspace creates an input file, a model file and a complete
// preprocessor directory, and returns a Config pointing at them.
func workspace(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()
	pre := filepath.Join(dir, "preprocessors")
	require.NoError(t, os.MkdirAll(pre, 0o755))
	for _, p := range []string{
		filepath.Join(dir, "leads.csv"),
		filepath.Join(dir, "model.json"),
		filepath.Join(pre, "encoder.json"),
		filepath.Join(pre, "expected_columns.json"),
	} {
		require.NoError(t, os.WriteFile(p, []byte("{}"), 0o600))
	}

	cfg := DefaultConfig()
	cfg.InputPath = filepath.Join(dir, "leads.csv")
	cfg.ModelPath = filepath.Join(dir, "model.json")
	cfg.PreprocessorDir = pre
	cfg.OutputPath = filepath.Join(dir, "out", "predictions.csv")
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "info", cfg.LogLevel)
	p, err := cfg.Policy()
	require.NoError(t, err)
	assert.Equal(t, features.PolicyLenient, p)
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "leadscore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
input: data/leads.csv
model: models/model.json
preprocessors: models/preprocessors
output: out/predictions.csv
derivation_policy: strict
`), 0o600))
	t.Setenv("LEADSCORE_OUTPUT", "/tmp/override.csv")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "data/leads.csv", cfg.InputPath)
	assert.Equal(t, "models/preprocessors", cfg.PreprocessorDir)
	assert.Equal(t, "/tmp/override.csv", cfg.OutputPath)
	assert.Equal(t, "strict", cfg.DerivationPolicy)
	assert.Equal(t, "info", cfg.LogLevel, "defaults survive the overlay")
}

func TestLoadFileErrors(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.Is(err, failure.ErrNotFound))

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("inptu: typo.csv\n"), 0o600))
	_, err = Load(path)
	assert.True(t, errors.Is(err, failure.ErrValue))
}

func TestLoadEmptyFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestValidate(t *testing.T) {
	require.NoError(t, workspace(t).Validate())

	tests := []struct {
		name     string
		mutate   func(c *Config)
		notFound bool
		msg      string
	}{
		{"missing input", func(c *Config) { c.InputPath = "" }, false, "--input"},
		{"missing output", func(c *Config) { c.OutputPath = "" }, false, "--output"},
		{"bad policy", func(c *Config) { c.DerivationPolicy = "loose" }, false, "derivation policy"},
		{"input absent", func(c *Config) { c.InputPath += ".gone" }, true, "input file not found"},
		{"model absent", func(c *Config) { c.ModelPath += ".gone" }, true, "model file not found"},
		{"preprocessors absent", func(c *Config) { c.PreprocessorDir += "-gone" }, true, "preprocessor directory not found"},
		{"encoder absent", func(c *Config) {
			require.NoError(t, os.Remove(filepath.Join(c.PreprocessorDir, "encoder.json")))
		}, true, "encoder artifact not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := workspace(t)
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Equal(t, tt.notFound, errors.Is(err, failure.ErrNotFound), "got %v", err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}
