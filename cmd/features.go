package cmd

import (
	"fmt"
	"os"

	"github.com/abhisek/leadscore/internal/logging"
	"github.com/abhisek/leadscore/internal/merge"
	"github.com/abhisek/leadscore/internal/pipeline"
	"github.com/spf13/cobra"
)

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "Write the encoded feature matrix the model would receive",
	Long: "Runs only the normalize and encode stages and writes the resulting " +
		"feature table as CSV, for checking the feature layout against training.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.InputPath == "" || cfg.PreprocessorDir == "" {
			return fmt.Errorf("--input and --preprocessors are required")
		}
		policy, err := cfg.Policy()
		if err != nil {
			return err
		}

		log, closer, err := logging.Setup(cfg.LogLevel, "")
		if err != nil {
			return err
		}
		defer closer.Close()

		f, err := pipeline.Features(cfg.InputPath, cfg.PreprocessorDir, policy, log)
		if err != nil {
			return err
		}
		if cfg.OutputPath == "" || cfg.OutputPath == "-" {
			return f.WriteCSV(os.Stdout)
		}
		if err := merge.WriteCSV(cfg.OutputPath, f); err != nil {
			return err
		}
		log.Info("Features written", "output", cfg.OutputPath, "shape", [2]int{f.Len(), f.Width()})
		return nil
	},
}

func init() {
	addConfigFlags(featuresCmd, "input", "preprocessors", "output")
}
