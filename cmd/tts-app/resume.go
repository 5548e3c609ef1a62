package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resumeCmd = &cobra.Command{
	Use:   "resume <job-name>",
	Short: "Reset failed and stuck chunks, then reprocess the job",
	Long: `Resume resets every failed chunk, and any chunk stuck in processing from
a crashed worker, back to pending, incrementing its retry counter, then
drives the worker pool again. Completed chunks are untouched and their audio
is not regenerated. The persisted chunk set is reused; input is never
re-segmented. Pass --no-run to only reset.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		noRun, _ := cmd.Flags().GetBool("no-run")
		workers, _ := cmd.Flags().GetInt("workers")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		count, err := a.manager.Resume(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("reset %d chunk(s) to pending\n", count)

		if noRun {
			return nil
		}

		if workers <= 0 {
			workers = a.cfg().Defaults.Workers
		}
		return a.manager.Process(cmd.Context(), args[0], workers)
	},
}

func init() {
	resumeCmd.Flags().IntP("workers", "w", 0, "worker count (default: from config)")
	resumeCmd.Flags().Bool("no-run", false, "only reset chunks, do not reprocess")
}
