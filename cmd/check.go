package cmd

import (
	"fmt"

	"github.com/abhisek/leadscore/internal/pipeline"
	"github.com/abhisek/leadscore/internal/report"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the model and preprocessor artifacts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.ModelPath == "" || cfg.PreprocessorDir == "" {
			return fmt.Errorf("--model and --preprocessors are required")
		}

		summary, err := pipeline.Inspect(cfg.ModelPath, cfg.PreprocessorDir)
		if err != nil {
			return err
		}
		report.Stdout().Artifacts(*summary)
		if !summary.Probabilistic {
			return fmt.Errorf("model of kind %q cannot produce probabilities", summary.ModelKind)
		}
		return nil
	},
}

func init() {
	addConfigFlags(checkCmd, "model", "preprocessors")
}
