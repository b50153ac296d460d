package cmd

import (
	"github.com/abhisek/leadscore/internal/report"
	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect past scoring runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := s.RunRepo().List(cmd.Context(), limit)
		if err != nil {
			return err
		}
		report.Stdout().Runs(runs)
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one run; a unique id prefix is enough",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		run, err := s.RunRepo().Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		report.Stdout().Run(run)
		return nil
	},
}

func init() {
	runsListCmd.Flags().Int("limit", 10, "Maximum number of runs to show (0 = all)")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
}
