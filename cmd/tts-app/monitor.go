package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor <job-name>",
	Short: "Poll a job's progress until it reaches a terminal status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		interval, _ := cmd.Flags().GetDuration("interval")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		return a.manager.Monitor(cmd.Context(), args[0], interval, os.Stdout)
	},
}

func init() {
	monitorCmd.Flags().Duration("interval", 2*time.Second, "poll interval")
}
