package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/innovatorved/tts-app/internal/config"
	"github.com/innovatorved/tts-app/internal/jobs"
	"github.com/innovatorved/tts-app/internal/store"
)

// addJobFlags registers the job-submission flags shared by create and run.
// Flag defaults mirror config defaults; values from the loaded config apply
// when a flag is left unset.
func addJobFlags(cmd *cobra.Command) {
	defaults := config.DefaultConfig()

	cmd.Flags().String("file", "", "input file to convert (.txt, .md, .pdf)")
	cmd.Flags().String("text", "", "direct text to convert")
	cmd.Flags().String("name", "", "job name (default: derived from file name or timestamp)")
	cmd.Flags().String("output-dir", "", "directory for generated audio (default: from config/home)")
	cmd.Flags().String("engine", defaults.Defaults.Engine, "synthesis engine: kokoro or chatterbox")
	cmd.Flags().String("device", defaults.Defaults.Device, "compute device: cpu, cuda or mps")
	cmd.Flags().Int("paragraphs-per-chunk", defaults.Defaults.ParagraphsPerChunk, "paragraphs grouped into one chunk")
	cmd.Flags().Bool("merge", defaults.Defaults.MergeOutput, "merge segment audio into one file on completion")

	cmd.Flags().String("lang", defaults.Kokoro.Lang, "language code (kokoro)")
	cmd.Flags().String("voice", defaults.Kokoro.Voice, "voice model (kokoro)")
	cmd.Flags().Float64("speed", defaults.Kokoro.Speed, "speech speed multiplier (kokoro)")

	cmd.Flags().String("cb-audio-prompt", defaults.Chatterbox.AudioPrompt, "reference audio path (chatterbox)")
	cmd.Flags().Float64("cb-exaggeration", defaults.Chatterbox.Exaggeration, "exaggeration (chatterbox)")
	cmd.Flags().Float64("cb-cfg-weight", defaults.Chatterbox.CFGWeight, "cfg weight (chatterbox)")
	cmd.Flags().Float64("cb-temperature", defaults.Chatterbox.Temperature, "sampling temperature (chatterbox)")
	cmd.Flags().Float64("cb-top-p", defaults.Chatterbox.TopP, "top-p (chatterbox)")
	cmd.Flags().Float64("cb-min-p", defaults.Chatterbox.MinP, "min-p (chatterbox)")
	cmd.Flags().Float64("cb-repetition-penalty", defaults.Chatterbox.RepetitionPenalty, "repetition penalty (chatterbox)")

	cmd.MarkFlagsMutuallyExclusive("file", "text")
	cmd.MarkFlagsOneRequired("file", "text")
}

// submitRequestFromFlags resolves flags (falling back to loaded config for
// unset ones) into a submit request.
func submitRequestFromFlags(cmd *cobra.Command, a *app) (jobs.SubmitRequest, error) {
	flags := cmd.Flags()
	cfg := a.cfg()

	str := func(name, cfgVal string) string {
		if !flags.Changed(name) && cfgVal != "" {
			return cfgVal
		}
		v, _ := flags.GetString(name)
		return v
	}
	f64 := func(name string, cfgVal float64) float64 {
		if !flags.Changed(name) && cfgVal != 0 {
			return cfgVal
		}
		v, _ := flags.GetFloat64(name)
		return v
	}

	file, _ := flags.GetString("file")
	text, _ := flags.GetString("text")
	name, _ := flags.GetString("name")
	paragraphs, _ := flags.GetInt("paragraphs-per-chunk")
	if !flags.Changed("paragraphs-per-chunk") && cfg.Defaults.ParagraphsPerChunk > 0 {
		paragraphs = cfg.Defaults.ParagraphsPerChunk
	}
	merge, _ := flags.GetBool("merge")
	if !flags.Changed("merge") {
		merge = cfg.Defaults.MergeOutput
	}

	outputDir := str("output-dir", "")
	if outputDir == "" {
		outputDir = a.outputDir()
	}

	engine := store.Engine(str("engine", cfg.Defaults.Engine))
	params := store.EngineParams{Engine: engine}
	switch engine {
	case store.EngineKokoro:
		params.Kokoro = &store.KokoroParams{
			Lang:  str("lang", cfg.Kokoro.Lang),
			Voice: str("voice", cfg.Kokoro.Voice),
			Speed: f64("speed", cfg.Kokoro.Speed),
		}
	case store.EngineChatterbox:
		params.Chatterbox = &store.ChatterboxParams{
			AudioPromptPath:   str("cb-audio-prompt", cfg.Chatterbox.AudioPrompt),
			Exaggeration:      f64("cb-exaggeration", cfg.Chatterbox.Exaggeration),
			CFGWeight:         f64("cb-cfg-weight", cfg.Chatterbox.CFGWeight),
			Temperature:       f64("cb-temperature", cfg.Chatterbox.Temperature),
			TopP:              f64("cb-top-p", cfg.Chatterbox.TopP),
			MinP:              f64("cb-min-p", cfg.Chatterbox.MinP),
			RepetitionPenalty: f64("cb-repetition-penalty", cfg.Chatterbox.RepetitionPenalty),
		}
	default:
		return jobs.SubmitRequest{}, fmt.Errorf("%w: %q", store.ErrUnknownEngine, engine)
	}

	return jobs.SubmitRequest{
		InputFile:          file,
		Text:               text,
		JobName:            name,
		OutputDir:          outputDir,
		ParagraphsPerChunk: paragraphs,
		Device:             str("device", cfg.Defaults.Device),
		MergeOutput:        merge,
		Params:             params,
	}, nil
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a job from a file or direct text",
	Long: `Create segments the input into paragraph-grouped chunks and persists the
job and its chunk set. The job is not processed; use "process" to run it, or
"run" for both in one step. Creating a job with an existing name returns that
job unchanged.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
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
		return nil
	},
}

func init() {
	addJobFlags(createCmd)
}
