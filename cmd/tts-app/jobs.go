package main

import (
	"github.com/spf13/cobra"

	"github.com/innovatorved/tts-app/internal/output"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List all jobs, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		summaries, err := a.store.GetAllJobs(cmd.Context())
		if err != nil {
			return err
		}

		return output.Print(summaries)
	},
}
