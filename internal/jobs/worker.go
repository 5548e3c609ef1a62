package jobs

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/innovatorved/tts-app/internal/audio"
	"github.com/innovatorved/tts-app/internal/store"
	"github.com/innovatorved/tts-app/internal/textseg"
	"github.com/innovatorved/tts-app/internal/tts"
)

// Worker is the unit of parallel execution: it claims chunks one at a time
// and delegates synthesis, until no pending work remains. Isolation between
// workers comes from the store's atomic claim, never from shared memory.
type Worker struct {
	store  *store.Store
	job    store.Job
	engine tts.Engine
	logger *slog.Logger
}

// Run claims and processes chunks until the job has no pending chunk left,
// returning how many chunks this worker completed. A single chunk's failure
// never aborts the loop; only a claim error or context cancellation does.
func (w *Worker) Run(ctx context.Context) (int, error) {
	processed := 0
	for {
		if err := ctx.Err(); err != nil {
			return processed, err
		}

		chunk, err := w.store.ClaimChunk(ctx, w.job.ID)
		if err != nil {
			return processed, err
		}
		if chunk == nil {
			w.logger.Debug("no more pending chunks")
			return processed, nil
		}

		if w.processChunk(ctx, *chunk) {
			processed++
		}
	}
}

// processChunk splits the chunk text into synthesis-sized segments and runs
// each through the engine. The chunk completes when at least one segment
// produced audio; only total failure marks it failed. The first generated
// path is recorded; the full segment list is recoverable from the file
// naming convention.
func (w *Worker) processChunk(ctx context.Context, chunk store.Chunk) bool {
	w.logger.Info("processing chunk", "chunk_index", chunk.Index, "retries", chunk.Retries)

	segments := textseg.SmartSplit(chunk.Text)

	var firstPath string
	succeeded := 0
	for i, segment := range segments {
		outPath := filepath.Join(w.job.OutputDir,
			audio.SegmentFileName(w.job.Name, chunk.Index, i))

		if err := w.engine.Synthesize(ctx, segment, outPath); err != nil {
			w.logger.Warn("segment synthesis failed",
				"chunk_index", chunk.Index, "segment", i, "error", err)
			continue
		}
		if firstPath == "" {
			firstPath = outPath
		}
		succeeded++
	}

	if succeeded == 0 {
		w.logger.Warn("chunk produced no audio", "chunk_index", chunk.Index)
		if err := w.store.UpdateChunkStatus(ctx, chunk.ID, store.StatusFailed, ""); err != nil {
			w.logger.Error("failed to mark chunk failed", "chunk_index", chunk.Index, "error", err)
		}
		return false
	}

	if err := w.store.UpdateChunkStatus(ctx, chunk.ID, store.StatusCompleted, firstPath); err != nil {
		// Known limitation: a lost status update leaves the chunk stuck in
		// processing until a resume resets it.
		w.logger.Error("failed to mark chunk completed", "chunk_index", chunk.Index, "error", err)
		return false
	}

	w.logger.Info("chunk completed", "chunk_index", chunk.Index,
		"segments", len(segments), "succeeded", succeeded)
	return true
}
