package cmd

import (
	"github.com/abhisek/leadscore/internal/config"
	"github.com/abhisek/leadscore/internal/features"
	"github.com/abhisek/leadscore/internal/store"
	"github.com/spf13/cobra"
)

// pathFlags maps flag names to the config fields they override.
var pathFlags = []struct {
	name  string
	usage string
	field func(c *config.Config) *string
}{
	{"input", "Raw leads CSV", func(c *config.Config) *string { return &c.InputPath }},
	{"model", "Model artifact (model.json)", func(c *config.Config) *string { return &c.ModelPath }},
	{"preprocessors", "Directory holding encoder.json and expected_columns.json", func(c *config.Config) *string { return &c.PreprocessorDir }},
	{"output", "Output CSV", func(c *config.Config) *string { return &c.OutputPath }},
	{"log-dir", "Directory for per-run log files", func(c *config.Config) *string { return &c.LogDir }},
	{"metrics-file", "Write Prometheus metrics to this textfile after the run", func(c *config.Config) *string { return &c.MetricsFile }},
}

// addConfigFlags registers --config, --strict-features and the named path
// flags on cmd.
func addConfigFlags(cmd *cobra.Command, names ...string) {
	cmd.Flags().String("config", "", "YAML config file")
	cmd.Flags().Bool("strict-features", false, "Fail when a derived feature's source columns are missing")
	for _, f := range pathFlags {
		for _, n := range names {
			if f.name == n {
				cmd.Flags().String(f.name, "", f.usage)
			}
		}
	}
}

// loadConfig resolves the config: defaults, then --config file, then
// environment, then flags that were set explicitly.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	for _, f := range pathFlags {
		if fl := cmd.Flags().Lookup(f.name); fl != nil && fl.Changed {
			*f.field(&cfg) = fl.Value.String()
		}
	}
	if strict, _ := cmd.Flags().GetBool("strict-features"); strict {
		cfg.DerivationPolicy = string(features.PolicyStrict)
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	return cfg, nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then LEADSCORE_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	p, _ := cmd.Flags().GetString("db")
	return store.DBPath(p)
}

// openStore opens the run ledger.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	path, err := resolveDBPath(cmd)
	if err != nil {
		return nil, err
	}
	return store.Open(path)
}
