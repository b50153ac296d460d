package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "leadscore",
	Short: "Score vehicle sales leads",
	Long: "leadscore turns a CSV of raw vehicle-sales leads into a CSV with a " +
		"sale probability and a High/Medium/Low follow-up priority for every lead.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. An interrupt cancels the command's
// context; the pipeline stops before its next stage.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// ErrReported marks an error the command has already shown to the user.
var ErrReported = errors.New("error already reported")

type reportedError struct{ err error }

func (e *reportedError) Error() string   { return e.err.Error() }
func (e *reportedError) Unwrap() []error { return []error{e.err, ErrReported} }

func reported(err error) error { return &reportedError{err: err} }

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to the run ledger database (overrides LEADSCORE_DB env var)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides LEADSCORE_LOG_LEVEL)")

	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(featuresCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(prioritizeCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(versionCmd)
}
