// Package config resolves the pipeline's paths and options from defaults,
// an optional YAML file and LEADSCORE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/abhisek/leadscore/internal/encoding"
	"github.com/abhisek/leadscore/internal/failure"
	"github.com/abhisek/leadscore/internal/features"
	"gopkg.in/yaml.v3"
)

// Config holds everything a scoring run needs.
type Config struct {
	// InputPath is the raw leads CSV.
	InputPath string `yaml:"input"`
	// ModelPath is the model artifact (model.json).
	ModelPath string `yaml:"model"`
	// PreprocessorDir holds encoder.json and expected_columns.json.
	PreprocessorDir string `yaml:"preprocessors"`
	// OutputPath is where the merged predictions CSV is written.
	OutputPath string `yaml:"output"`

	// LogDir, when set, receives one log file per run.
	LogDir   string `yaml:"log_dir,omitempty"`
	LogLevel string `yaml:"log_level,omitempty"` // Default: "info"

	// MetricsFile, when set, receives a Prometheus textfile after each run.
	MetricsFile string `yaml:"metrics_file,omitempty"`

	// DerivationPolicy is "lenient" (default) or "strict".
	DerivationPolicy string `yaml:"derivation_policy,omitempty"`
}

// DefaultConfig returns a Config with the optional fields defaulted.
// Paths have no defaults.
func DefaultConfig() Config {
	return Config{
		LogLevel:         "info",
		DerivationPolicy: string(features.PolicyLenient),
	}
}

// Load builds a Config from defaults, the YAML file at path (if path is not
// empty) and the environment, in that order.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return Config{}, err
		}
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// LoadFile overlays the values set in the YAML file at path. Unknown keys
// are rejected.
func (c *Config) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return failure.NotFound("load config", "config file not found at: %s", path)
		}
		return fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return failure.Value("load config", "%s: %v", path, err)
	}
	return nil
}

// ApplyEnv overlays non-empty LEADSCORE_* environment variables.
func (c *Config) ApplyEnv() {
	for env, field := range map[string]*string{
		"LEADSCORE_INPUT":             &c.InputPath,
		"LEADSCORE_MODEL":             &c.ModelPath,
		"LEADSCORE_PREPROCESSORS":     &c.PreprocessorDir,
		"LEADSCORE_OUTPUT":            &c.OutputPath,
		"LEADSCORE_LOG_DIR":           &c.LogDir,
		"LEADSCORE_LOG_LEVEL":         &c.LogLevel,
		"LEADSCORE_METRICS_FILE":      &c.MetricsFile,
		"LEADSCORE_DERIVATION_POLICY": &c.DerivationPolicy,
	} {
		if v := os.Getenv(env); v != "" {
			*field = v
		}
	}
}

// Policy returns the parsed derivation policy.
func (c Config) Policy() (features.DerivationPolicy, error) {
	return features.ParsePolicy(c.DerivationPolicy)
}

// Validate returns the first problem that would stop a run before any
// stage starts: a missing option, an unknown policy or a missing input.
func (c Config) Validate() error {
	required := []struct{ value, flag, env string }{
		{c.InputPath, "--input", "LEADSCORE_INPUT"},
		{c.ModelPath, "--model", "LEADSCORE_MODEL"},
		{c.PreprocessorDir, "--preprocessors", "LEADSCORE_PREPROCESSORS"},
		{c.OutputPath, "--output", "LEADSCORE_OUTPUT"},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%s (or %s) is required", r.flag, r.env)
		}
	}

	if _, err := c.Policy(); err != nil {
		return err
	}
	return c.ValidateInputs()
}

// ValidateInputs checks that the input file and both artifact locations
// exist.
func (c Config) ValidateInputs() error {
	files := []struct{ what, path string }{
		{"input file", c.InputPath},
		{"model file", c.ModelPath},
		{"preprocessor directory", c.PreprocessorDir},
		{"encoder artifact", filepath.Join(c.PreprocessorDir, encoding.EncoderFile)},
		{"expected columns artifact", filepath.Join(c.PreprocessorDir, encoding.ExpectedColumnsFile)},
	}
	for _, f := range files {
		if _, err := os.Stat(f.path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return failure.NotFound("validate config", "%s not found at: %s", f.what, f.path)
			}
			return fmt.Errorf("stat %s: %w", f.path, err)
		}
	}
	return nil
}
