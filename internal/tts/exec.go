package tts

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/innovatorved/tts-app/internal/store"
)

// Default CLI binaries bridging to the model runtimes. Overridable for
// installs that ship the models under different entry points.
const (
	DefaultKokoroBinary     = "kokoro-tts"
	DefaultChatterboxBinary = "chatterbox-tts"
)

// NewEngine constructs the synthesis engine for a job based on its engine
// selector and persisted voice parameters.
func NewEngine(job store.Job) (Engine, error) {
	if err := job.Params.Validate(); err != nil {
		return nil, err
	}
	switch job.Params.Engine {
	case store.EngineKokoro:
		return NewKokoro(*job.Params.Kokoro, job.Device), nil
	case store.EngineChatterbox:
		return NewChatterbox(*job.Params.Chatterbox, job.Device), nil
	default:
		return nil, fmt.Errorf("%w: %q", store.ErrUnknownEngine, job.Params.Engine)
	}
}

// Kokoro invokes the kokoro model CLI once per segment.
type Kokoro struct {
	Binary string
	params store.KokoroParams
	device string
}

// NewKokoro creates a kokoro engine with the given voice parameters.
func NewKokoro(params store.KokoroParams, device string) *Kokoro {
	return &Kokoro{Binary: DefaultKokoroBinary, params: params, device: device}
}

func (k *Kokoro) Name() string { return string(store.EngineKokoro) }

func (k *Kokoro) Synthesize(ctx context.Context, text, outPath string) error {
	args := []string{
		"--lang", k.params.Lang,
		"--voice", k.params.Voice,
		"--speed", strconv.FormatFloat(k.params.Speed, 'f', -1, 64),
		"--output", outPath,
	}
	if k.device != "" {
		args = append(args, "--device", k.device)
	}
	return runSynthesis(ctx, k.Binary, args, text)
}

func (k *Kokoro) Close() error { return nil }

// Chatterbox invokes the chatterbox model CLI once per segment.
type Chatterbox struct {
	Binary string
	params store.ChatterboxParams
	device string
}

// NewChatterbox creates a chatterbox engine with the given voice parameters.
func NewChatterbox(params store.ChatterboxParams, device string) *Chatterbox {
	return &Chatterbox{Binary: DefaultChatterboxBinary, params: params, device: device}
}

func (c *Chatterbox) Name() string { return string(store.EngineChatterbox) }

func (c *Chatterbox) Synthesize(ctx context.Context, text, outPath string) error {
	args := []string{
		"--exaggeration", formatFloat(c.params.Exaggeration),
		"--cfg-weight", formatFloat(c.params.CFGWeight),
		"--temperature", formatFloat(c.params.Temperature),
		"--top-p", formatFloat(c.params.TopP),
		"--min-p", formatFloat(c.params.MinP),
		"--repetition-penalty", formatFloat(c.params.RepetitionPenalty),
		"--output", outPath,
	}
	if c.params.AudioPromptPath != "" {
		args = append(args, "--audio-prompt", c.params.AudioPromptPath)
	}
	if c.device != "" {
		args = append(args, "--device", c.device)
	}
	return runSynthesis(ctx, c.Binary, args, text)
}

func (c *Chatterbox) Close() error { return nil }

// runSynthesis executes a model CLI with the segment text on stdin.
func runSynthesis(ctx context.Context, binary string, args []string, text string) error {
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdin = strings.NewReader(text)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s failed: %w\nOutput: %s", binary, err, string(output))
	}
	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
