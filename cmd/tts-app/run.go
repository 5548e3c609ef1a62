package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/innovatorved/tts-app/internal/jobs"
	"github.com/innovatorved/tts-app/internal/limits"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Create a job and process it to completion in one step",
	Long: `Run combines create, process and a final status report: the input is
segmented into a durable chunk set, the worker pool runs to exhaustion, and
(if requested) the generated segments are merged into a single audio file.
If the job ends failed, it can be continued later with "resume".`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		workers, _ := cmd.Flags().GetInt("workers")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		req, err := submitRequestFromFlags(cmd, a)
		if err != nil {
			return err
		}

		jobName, err := a.manager.Submit(cmd.Context(), req)
		if err != nil {
			return err
		}
		fmt.Println(jobName)

		if workers <= 0 {
			workers = a.cfg().Defaults.Workers
		}
		limits.Apply(limits.Options{MaxProcs: workers + 1}, a.logger)

		if err := a.manager.Process(cmd.Context(), jobName, workers); err != nil &&
			!errors.Is(err, jobs.ErrJobIncomplete) {
			return err
		}

		// The job is terminal here, so this prints one stats line and returns,
		// carrying ErrJobIncomplete when the job ended failed.
		return a.manager.Monitor(cmd.Context(), jobName, 0, os.Stdout)
	},
}

func init() {
	addJobFlags(runCmd)
	runCmd.Flags().IntP("workers", "w", 0, "worker count (default: from config)")
}
