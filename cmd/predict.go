package cmd

import (
	"fmt"
	"os"

	"github.com/abhisek/leadscore/internal/logging"
	"github.com/abhisek/leadscore/internal/merge"
	"github.com/abhisek/leadscore/internal/pipeline"
	"github.com/spf13/cobra"
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Write sale probabilities without priorities",
	Long: "Scores the leads file and writes an intermediate predictions CSV with " +
		"an ID column and VehicleSold_Probability. ID is copied from the input's " +
		"ID column, or is the row index when the input has none.",
	Example: `  leadscore predict --input data/leads.csv --model models/model.json \
    --preprocessors models/preprocessors --output out/test_predictions.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.InputPath == "" || cfg.ModelPath == "" || cfg.PreprocessorDir == "" {
			return fmt.Errorf("--input, --model and --preprocessors are required")
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

		f, err := pipeline.Predict(cfg.InputPath, cfg.ModelPath, cfg.PreprocessorDir, policy, log)
		if err != nil {
			return err
		}
		if cfg.OutputPath == "" || cfg.OutputPath == "-" {
			return f.WriteCSV(os.Stdout)
		}
		if err := merge.WriteCSV(cfg.OutputPath, f); err != nil {
			return err
		}
		log.Info("Predictions saved", "output", cfg.OutputPath, "records", f.Len())
		return nil
	},
}

func init() {
	addConfigFlags(predictCmd, "input", "model", "preprocessors", "output")
}
