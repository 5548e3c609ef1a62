package main

import (
	"github.com/spf13/cobra"

	"github.com/innovatorved/tts-app/internal/limits"
)

var processCmd = &cobra.Command{
	Use:   "process <job-name>",
	Short: "Drive the worker pool for a job until no pending chunks remain",
	Long: `Process spawns the requested number of workers, each repeatedly claiming
the next pending chunk from the store and synthesizing it. Workers coordinate
only through the store's atomic claim, so running process for the same job
from several terminals is safe. When no work remains, the job is finalized:
fully completed jobs are merged (if requested); anything else is marked
failed and can be resumed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		workers, _ := cmd.Flags().GetInt("workers")
		niceness, _ := cmd.Flags().GetInt("niceness")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if workers <= 0 {
			workers = a.cfg().Defaults.Workers
		}

		limits.Apply(limits.Options{
			MaxProcs: workers + 1,
			Niceness: niceness,
		}, a.logger)

		return a.manager.Process(cmd.Context(), args[0], workers)
	},
}

func init() {
	processCmd.Flags().IntP("workers", "w", 0, "worker count (default: from config)")
	processCmd.Flags().Int("niceness", 0, "advisory process niceness (unix only)")
}
