package cmd

import (
	"time"

	"github.com/abhisek/leadscore/internal/logging"
	"github.com/abhisek/leadscore/internal/pipeline"
	"github.com/abhisek/leadscore/internal/report"
	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a leads file and write predictions",
	Example: `  leadscore score --input data/leads.csv --model models/model.json \
    --preprocessors models/preprocessors --output out/predictions.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		log, closer, err := logging.Setup(cfg.LogLevel, cfg.LogDir)
		if err != nil {
			return err
		}
		defer closer.Close()

		opts := pipeline.Options{Logger: log}
		if noLedger, _ := cmd.Flags().GetBool("no-ledger"); !noLedger {
			s, err := openStore(cmd)
			if err != nil {
				log.Warn("Run ledger unavailable", "error", err)
			} else {
				defer s.Close()
				opts.Runs = s.RunRepo()
			}
		}

		out := report.Stdout()
		started := time.Now()
		res, err := pipeline.Run(cmd.Context(), cfg, opts)
		if err != nil {
			if se, ok := pipeline.IsStageError(err); ok {
				out.Failure(se.RunID, string(se.Stage), se.Err)
				return reported(err)
			}
			return err
		}

		out.Summary(res.RunID, res.Summary, time.Since(started))
		return nil
	},
}

func init() {
	addConfigFlags(scoreCmd, "input", "model", "preprocessors", "output", "log-dir", "metrics-file")
	scoreCmd.Flags().Bool("no-ledger", false, "Do not record this run in the run ledger")
}
