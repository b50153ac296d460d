package cmd

import (
	"fmt"
	"os"

	"github.com/abhisek/leadscore/internal/logging"
	"github.com/abhisek/leadscore/internal/merge"
	"github.com/abhisek/leadscore/internal/pipeline"
	"github.com/abhisek/leadscore/internal/report"
	"github.com/spf13/cobra"
)

var prioritizeCmd = &cobra.Command{
	Use:   "prioritize",
	Short: "Add priority levels to an existing predictions file",
	Long: "Reads a CSV with a VehicleSold_Probability column, such as the output " +
		"of predict, and writes it back with a Priority_Level column.",
	Example: `  leadscore prioritize --input out/test_predictions.csv \
    --output out/test_predictions_with_priority.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.InputPath == "" {
			return fmt.Errorf("--input is required")
		}

		log, closer, err := logging.Setup(cfg.LogLevel, "")
		if err != nil {
			return err
		}
		defer closer.Close()

		f, dist, err := pipeline.Prioritize(cfg.InputPath)
		if err != nil {
			return err
		}
		log.Info("Priority level distribution", "summary", dist.String())

		if cfg.OutputPath == "" || cfg.OutputPath == "-" {
			return f.WriteCSV(os.Stdout)
		}
		if err := merge.WriteCSV(cfg.OutputPath, f); err != nil {
			return err
		}
		out := report.Stdout()
		out.Distribution(dist)
		log.Info("Results saved", "output", cfg.OutputPath)
		return nil
	},
}

func init() {
	addConfigFlags(prioritizeCmd, "input", "output")
}
