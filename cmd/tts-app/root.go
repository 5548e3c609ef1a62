package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/innovatorved/tts-app/internal/output"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "tts-app",
	Short: "Scalable text-to-speech conversion with durable, resumable jobs",
	Long: `tts-app converts large text and PDF inputs to speech, coordinating
CPU/GPU-bound synthesis across a pool of workers.

Input text is split into persisted chunks that workers claim atomically from
a shared SQLite store, so progress survives crashes and restarts: a failed or
interrupted job resumes exactly where it left off, and completed chunk audio
is never regenerated. Finished segments are merged into a single audio file
in original text order.`,
	Version: Version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.tts-app/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "tts-app home directory (default: ~/.tts-app)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "enable debug logging",
	)

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		output.SetFormat(outputFormat)

		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		})))
	}

	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(jobsCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}
