// Package jobs drives a TTS job through its lifecycle: submission, the
// claim-based worker pool, resume, and finalization. All coordination between
// workers goes through the store; there is no shared in-memory state.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/innovatorved/tts-app/internal/audio"
	"github.com/innovatorved/tts-app/internal/extract"
	"github.com/innovatorved/tts-app/internal/store"
	"github.com/innovatorved/tts-app/internal/textseg"
	"github.com/innovatorved/tts-app/internal/tts"
)

var (
	// ErrNoText is returned by Submit when the input yields no processable text.
	ErrNoText = errors.New("no text content to process")
	// ErrJobIncomplete is returned when a job finishes worker execution with
	// chunks outside the completed state. Recoverable via Resume.
	ErrJobIncomplete = errors.New("job finished with failed or unprocessed chunks")
)

// EngineFactory builds a synthesis engine for a job. Each worker gets its own
// instance; engines are assumed non-reentrant.
type EngineFactory func(job store.Job) (tts.Engine, error)

// Manager turns input text into durable jobs and drives them to a terminal
// status.
type Manager struct {
	store         *store.Store
	logger        *slog.Logger
	engineFactory EngineFactory
}

// ManagerConfig configures a new Manager.
type ManagerConfig struct {
	Store  *store.Store
	Logger *slog.Logger

	// EngineFactory overrides the default exec-backed engine construction.
	// Used by tests to inject fakes.
	EngineFactory EngineFactory
}

// NewManager creates a job manager.
func NewManager(cfg ManagerConfig) *Manager {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	factory := cfg.EngineFactory
	if factory == nil {
		factory = tts.NewEngine
	}
	return &Manager{
		store:         cfg.Store,
		logger:        logger,
		engineFactory: factory,
	}
}

// SubmitRequest describes a new job submission.
type SubmitRequest struct {
	// Set one of InputFile (txt/md/pdf) or Text.
	InputFile string
	Text      string

	// JobName overrides the derived name (file stem or timestamp-based).
	JobName string

	OutputDir          string
	ParagraphsPerChunk int
	Device             string
	MergeOutput        bool
	Params             store.EngineParams
}

// Submit segments the input into paragraph-grouped chunks and persists the
// job plus its chunk set. The returned job name is the handle for all later
// operations. A job is never created when zero chunks would result.
//
// Submission is idempotent on the job name: resubmitting an existing name
// returns it without recreating chunks.
func (m *Manager) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	text := req.Text
	inputFile := "direct_text"
	if req.InputFile != "" {
		extracted, err := extract.FromFile(req.InputFile)
		if err != nil {
			return "", fmt.Errorf("failed to extract text: %w", err)
		}
		text = extracted
		inputFile = req.InputFile
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrNoText
	}

	jobName := req.JobName
	if jobName == "" {
		jobName = deriveJobName(req.InputFile)
	}

	chunks := textseg.GroupIntoChunks(text, req.ParagraphsPerChunk)
	if len(chunks) == 0 {
		return "", ErrNoText
	}

	jobID, err := m.store.CreateJob(ctx, store.Job{
		Name:        jobName,
		InputFile:   inputFile,
		OutputDir:   req.OutputDir,
		Device:      req.Device,
		MergeOutput: req.MergeOutput,
		Params:      req.Params,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create job: %w", err)
	}

	// An idempotent re-submit of an existing name must not re-segment or
	// duplicate the persisted chunk set.
	stats, err := m.store.GetJobStats(ctx, jobID)
	if err != nil {
		return "", fmt.Errorf("failed to check existing chunks: %w", err)
	}
	if stats.Total > 0 {
		m.logger.Info("job already has chunks, skipping segmentation",
			"job", jobName, "chunks", stats.Total)
		return jobName, nil
	}

	count, err := m.store.CreateChunks(ctx, jobID, chunks)
	if err != nil {
		return "", fmt.Errorf("failed to create chunks: %w", err)
	}
	if count == 0 {
		return "", ErrNoText
	}

	m.logger.Info("job submitted", "job", jobName, "chunks", count,
		"engine", req.Params.Engine)
	return jobName, nil
}

// Process drives the worker pool for a job until no pending chunks remain,
// then finalizes. Workers coordinate exclusively through the store's atomic
// claim, so concurrent Process invocations from separate OS processes are
// safe; workers within this process each get a private engine instance.
func (m *Manager) Process(ctx context.Context, jobName string, workers int) error {
	if workers <= 0 {
		workers = 1
	}

	job, err := m.store.GetJobByName(ctx, jobName)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(job.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := m.store.UpdateJobStatus(ctx, job.ID, store.StatusProcessing); err != nil {
		return err
	}

	m.logger.Info("starting worker pool", "job", jobName, "workers", workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			logger := m.logger.With("job", jobName, "worker", workerID)
			engine, err := m.engineFactory(job)
			if err != nil {
				logger.Error("failed to initialize synthesis engine", "error", err)
				return
			}
			defer engine.Close()

			w := &Worker{
				store:  m.store,
				job:    job,
				engine: engine,
				logger: logger,
			}
			processed, err := w.Run(ctx)
			if err != nil {
				logger.Error("worker exited with error", "processed", processed, "error", err)
				return
			}
			logger.Info("worker finished", "processed", processed)
		}(i)
	}
	wg.Wait()

	return m.finalize(ctx, job)
}

// Resume resets every failed or stuck-processing chunk of a job back to
// pending (incrementing retry counters) so a subsequent Process reclaims
// them. The persisted chunk set is reused as-is; input is never re-segmented.
func (m *Manager) Resume(ctx context.Context, jobName string) (int64, error) {
	job, err := m.store.GetJobByName(ctx, jobName)
	if err != nil {
		return 0, err
	}

	count, err := m.store.ResetFailedChunks(ctx, job.ID)
	if err != nil {
		return 0, err
	}

	m.logger.Info("job resumed", "job", jobName, "chunks_reset", count)
	return count, nil
}

// finalize inspects aggregate chunk stats after worker exhaustion and settles
// the job's terminal status. A fully completed job with the merge flag set
// also gets its segment files merged; merge failure is reported but does not
// demote the job, since the segments remain usable individually.
func (m *Manager) finalize(ctx context.Context, job store.Job) error {
	stats, err := m.store.GetJobStats(ctx, job.ID)
	if err != nil {
		return err
	}

	if !stats.Complete() {
		if err := m.store.UpdateJobStatus(ctx, job.ID, store.StatusFailed); err != nil {
			return err
		}
		m.logger.Warn("job failed", "job", job.Name,
			"completed", stats.Completed, "failed", stats.Failed,
			"pending", stats.Pending, "processing", stats.Processing,
			"total", stats.Total)
		return fmt.Errorf("%w: %s (%d/%d completed)",
			ErrJobIncomplete, job.Name, stats.Completed, stats.Total)
	}

	if err := m.store.UpdateJobStatus(ctx, job.ID, store.StatusCompleted); err != nil {
		return err
	}
	m.logger.Info("job completed", "job", job.Name, "chunks", stats.Total)

	if !job.MergeOutput {
		return nil
	}

	if err := m.merge(ctx, job); err != nil {
		m.logger.Error("merge failed, segment files remain on disk",
			"job", job.Name, "error", err)
	}
	return nil
}

// merge orders every generated segment file chronologically and hands the
// list to the ffmpeg collaborator.
func (m *Manager) merge(ctx context.Context, job store.Job) error {
	files, err := audio.SegmentFiles(job.OutputDir, job.Name)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no segment audio files found for job %s", job.Name)
	}
	// A single segment is copied, not concatenated, so ffmpeg is only
	// required when there is real merging to do.
	if len(files) > 1 {
		if err := audio.CheckFFmpegAvailable(); err != nil {
			return err
		}
	}

	mergedPath := filepath.Join(job.OutputDir, audio.MergedFileName(job.Name))
	if err := audio.Merge(ctx, files, mergedPath); err != nil {
		return err
	}

	attrs := []any{"job", job.Name, "segments", len(files), "path", mergedPath}
	if ms, err := audio.Duration(ctx, mergedPath); err == nil {
		attrs = append(attrs, "duration_ms", ms)
	} else {
		m.logger.Debug("could not probe merged duration", "job", job.Name, "error", err)
	}
	m.logger.Info("merged output written", attrs...)
	return nil
}

// deriveJobName builds a job name from the input file stem, or a timestamp
// plus short unique suffix for direct text input.
func deriveJobName(inputFile string) string {
	stamp := time.Now().Format("20060102_150405")
	if inputFile != "" {
		base := filepath.Base(inputFile)
		stem := strings.TrimSuffix(base, filepath.Ext(base))
		return fmt.Sprintf("%s_%s", stem, stamp)
	}
	return fmt.Sprintf("text_%s_%s", stamp, uuid.NewString()[:8])
}
