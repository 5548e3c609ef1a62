package store

import (
	"errors"
	"time"
)

// Status is the lifecycle state shared by jobs and chunks.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Engine selects the synthesis backend for a job.
type Engine string

const (
	EngineKokoro     Engine = "kokoro"
	EngineChatterbox Engine = "chatterbox"
)

var (
	// ErrJobNotFound is returned when a job lookup finds no row.
	ErrJobNotFound = errors.New("job not found")
	// ErrUnknownEngine is returned for an engine selector outside the known set.
	ErrUnknownEngine = errors.New("unknown synthesis engine")
)

// KokoroParams are the generation parameters for the kokoro engine.
type KokoroParams struct {
	Lang  string
	Voice string
	Speed float64
}

// ChatterboxParams are the generation parameters for the chatterbox engine.
type ChatterboxParams struct {
	AudioPromptPath   string
	Exaggeration      float64
	CFGWeight         float64
	Temperature       float64
	TopP              float64
	MinP              float64
	RepetitionPenalty float64
}

// EngineParams is a tagged variant keyed by Engine. Exactly one of the
// parameter pointers is non-nil for a valid value.
type EngineParams struct {
	Engine     Engine
	Kokoro     *KokoroParams
	Chatterbox *ChatterboxParams
}

// Validate checks that the variant tag matches the populated parameter set.
func (p EngineParams) Validate() error {
	switch p.Engine {
	case EngineKokoro:
		if p.Kokoro == nil {
			return errors.New("kokoro engine selected but kokoro params missing")
		}
	case EngineChatterbox:
		if p.Chatterbox == nil {
			return errors.New("chatterbox engine selected but chatterbox params missing")
		}
	default:
		return ErrUnknownEngine
	}
	return nil
}

// Job is one end-to-end conversion request for one input text.
type Job struct {
	ID          int64
	Name        string
	InputFile   string
	OutputDir   string
	Status      Status
	Device      string
	MergeOutput bool
	Params      EngineParams
	CreatedAt   time.Time
}

// Chunk is a contiguous, ordered slice of a job's input text, the unit of
// claim/processing/retry.
type Chunk struct {
	ID            int64
	JobID         int64
	Index         int
	Text          string
	Status        Status
	AudioFilePath string
	Retries       int
	CreatedAt     time.Time
}

// JobSummary is the listing view of a job.
type JobSummary struct {
	ID        int64     `json:"id" yaml:"id"`
	Name      string    `json:"job_name" yaml:"job_name"`
	Status    Status    `json:"status" yaml:"status"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// JobStats holds per-status chunk counts for a job.
type JobStats struct {
	Pending    int `json:"pending" yaml:"pending"`
	Processing int `json:"processing" yaml:"processing"`
	Completed  int `json:"completed" yaml:"completed"`
	Failed     int `json:"failed" yaml:"failed"`
	Total      int `json:"total" yaml:"total"`
}

// Done reports whether no chunk remains claimable or in flight.
func (s JobStats) Done() bool {
	return s.Pending == 0 && s.Processing == 0
}

// Complete reports whether every chunk finished successfully. A job with any
// chunk outside completed counts as failed, even when recoverable via resume.
func (s JobStats) Complete() bool {
	return s.Total > 0 && s.Completed == s.Total
}
