package jobs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/innovatorved/tts-app/internal/audio"
	"github.com/innovatorved/tts-app/internal/store"
	"github.com/innovatorved/tts-app/internal/tts"
)

// fakeEngineFactory returns a factory whose engines write a placeholder file,
// failing for any segment whose text matches failOn (when non-empty).
func fakeEngineFactory(failOn string) EngineFactory {
	return func(job store.Job) (tts.Engine, error) {
		return tts.EngineFunc(func(ctx context.Context, text, outPath string) error {
			if failOn != "" && strings.Contains(text, failOn) {
				return fmt.Errorf("forced synthesis failure for %q", failOn)
			}
			return os.WriteFile(outPath, []byte("RIFF"), 0o644)
		}), nil
	}
}

func newTestManager(t *testing.T, failOn string) (*Manager, *store.Store) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "tts_jobs.db"), nil)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	m := NewManager(ManagerConfig{
		Store:         s,
		EngineFactory: fakeEngineFactory(failOn),
	})
	return m, s
}

func kokoroRequest(outputDir string) SubmitRequest {
	return SubmitRequest{
		OutputDir:          outputDir,
		ParagraphsPerChunk: 1,
		Device:             "cpu",
		Params: store.EngineParams{
			Engine: store.EngineKokoro,
			Kokoro: &store.KokoroParams{Lang: "a", Voice: "af_heart", Speed: 1.0},
		},
	}
}

const threeParagraphs = "First paragraph of the document.\n\n" +
	"Second paragraph with different words.\n\n" +
	"Third and final paragraph."

func TestSubmit_CreatesChunks(t *testing.T) {
	m, s := newTestManager(t, "")
	ctx := context.Background()

	req := kokoroRequest(t.TempDir())
	req.Text = threeParagraphs
	req.JobName = "submitted"

	jobName, err := m.Submit(ctx, req)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if jobName != "submitted" {
		t.Fatalf("job name = %q, want %q", jobName, "submitted")
	}

	job, err := s.GetJobByName(ctx, jobName)
	if err != nil {
		t.Fatalf("job lookup failed: %v", err)
	}
	chunks, err := s.GetChunksForJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("chunk lookup failed: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
}

func TestSubmit_IdempotentOnName(t *testing.T) {
	m, s := newTestManager(t, "")
	ctx := context.Background()

	req := kokoroRequest(t.TempDir())
	req.Text = threeParagraphs
	req.JobName = "twice"

	if _, err := m.Submit(ctx, req); err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
	if _, err := m.Submit(ctx, req); err != nil {
		t.Fatalf("second submit failed: %v", err)
	}

	job, err := s.GetJobByName(ctx, "twice")
	if err != nil {
		t.Fatalf("job lookup failed: %v", err)
	}
	chunks, err := s.GetChunksForJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("chunk lookup failed: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("resubmit duplicated chunks: got %d, want 3", len(chunks))
	}
}

func TestSubmit_NoText(t *testing.T) {
	m, _ := newTestManager(t, "")

	req := kokoroRequest(t.TempDir())
	req.Text = "   \n\n  "
	if _, err := m.Submit(context.Background(), req); !errors.Is(err, ErrNoText) {
		t.Fatalf("expected ErrNoText, got %v", err)
	}
}

func TestSubmit_FromFile(t *testing.T) {
	m, _ := newTestManager(t, "")

	inputPath := filepath.Join(t.TempDir(), "story.txt")
	if err := os.WriteFile(inputPath, []byte(threeParagraphs), 0o644); err != nil {
		t.Fatalf("failed to write input: %v", err)
	}

	req := kokoroRequest(t.TempDir())
	req.InputFile = inputPath

	jobName, err := m.Submit(context.Background(), req)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if !strings.HasPrefix(jobName, "story_") {
		t.Fatalf("job name %q not derived from file stem", jobName)
	}
}

func TestProcess_EndToEnd(t *testing.T) {
	m, s := newTestManager(t, "")
	ctx := context.Background()
	outputDir := t.TempDir()

	req := kokoroRequest(outputDir)
	req.Text = threeParagraphs
	req.JobName = "happy"

	if _, err := m.Submit(ctx, req); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if err := m.Process(ctx, "happy", 2); err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	job, err := s.GetJobByName(ctx, "happy")
	if err != nil {
		t.Fatalf("job lookup failed: %v", err)
	}
	if job.Status != store.StatusCompleted {
		t.Fatalf("job status = %s, want completed", job.Status)
	}

	chunks, err := s.GetChunksForJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("chunk lookup failed: %v", err)
	}
	for _, chunk := range chunks {
		if chunk.Status != store.StatusCompleted {
			t.Errorf("chunk %d status = %s, want completed", chunk.Index, chunk.Status)
		}
		if chunk.AudioFilePath == "" {
			t.Errorf("chunk %d missing audio path", chunk.Index)
		}
	}

	files, err := audio.SegmentFiles(outputDir, "happy")
	if err != nil {
		t.Fatalf("SegmentFiles failed: %v", err)
	}
	if len(files) < 3 {
		t.Fatalf("expected at least 3 segment files, got %d", len(files))
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			t.Errorf("segment file missing: %v", err)
		}
	}
}

func TestProcess_MergeSingleChunk(t *testing.T) {
	m, s := newTestManager(t, "")
	ctx := context.Background()
	outputDir := t.TempDir()

	req := kokoroRequest(outputDir)
	req.Text = "A single short paragraph."
	req.JobName = "merged"
	req.MergeOutput = true

	if _, err := m.Submit(ctx, req); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if err := m.Process(ctx, "merged", 1); err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	job, err := s.GetJobByName(ctx, "merged")
	if err != nil {
		t.Fatalf("job lookup failed: %v", err)
	}
	if job.Status != store.StatusCompleted {
		t.Fatalf("job status = %s, want completed", job.Status)
	}

	mergedPath := filepath.Join(outputDir, audio.MergedFileName("merged"))
	data, err := os.ReadFile(mergedPath)
	if err != nil {
		t.Fatalf("merged output not written: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("merged output is empty")
	}
}

func TestProcess_FailureThenResume(t *testing.T) {
	m, s := newTestManager(t, "Second paragraph")
	ctx := context.Background()
	outputDir := t.TempDir()

	req := kokoroRequest(outputDir)
	req.Text = threeParagraphs
	req.JobName = "flaky"

	if _, err := m.Submit(ctx, req); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	err := m.Process(ctx, "flaky", 2)
	if !errors.Is(err, ErrJobIncomplete) {
		t.Fatalf("expected ErrJobIncomplete, got %v", err)
	}

	job, err := s.GetJobByName(ctx, "flaky")
	if err != nil {
		t.Fatalf("job lookup failed: %v", err)
	}
	if job.Status != store.StatusFailed {
		t.Fatalf("job status = %s, want failed", job.Status)
	}

	chunks, err := s.GetChunksForJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("chunk lookup failed: %v", err)
	}
	if chunks[1].Status != store.StatusFailed {
		t.Fatalf("chunk 1 status = %s, want failed", chunks[1].Status)
	}
	if chunks[0].Status != store.StatusCompleted || chunks[2].Status != store.StatusCompleted {
		t.Fatal("sibling chunks must complete despite chunk 1 failing")
	}

	// Resume resets only the failed chunk, then a healthy engine finishes it.
	count, err := m.Resume(ctx, "flaky")
	if err != nil {
		t.Fatalf("Resume failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 chunk reset, got %d", count)
	}

	chunks, err = s.GetChunksForJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("chunk lookup failed: %v", err)
	}
	if chunks[1].Status != store.StatusPending || chunks[1].Retries != 1 {
		t.Fatalf("chunk 1 after resume = %s retries=%d, want pending retries=1",
			chunks[1].Status, chunks[1].Retries)
	}

	m.engineFactory = fakeEngineFactory("")
	if err := m.Process(ctx, "flaky", 2); err != nil {
		t.Fatalf("reprocess failed: %v", err)
	}

	job, err = s.GetJobByName(ctx, "flaky")
	if err != nil {
		t.Fatalf("job lookup failed: %v", err)
	}
	if job.Status != store.StatusCompleted {
		t.Fatalf("job status after resume = %s, want completed", job.Status)
	}
}

func TestResume_UnknownJob(t *testing.T) {
	m, _ := newTestManager(t, "")
	if _, err := m.Resume(context.Background(), "ghost"); !errors.Is(err, store.ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
}

func TestMonitor_TerminalStatuses(t *testing.T) {
	m, s := newTestManager(t, "")
	ctx := context.Background()

	req := kokoroRequest(t.TempDir())
	req.Text = threeParagraphs
	req.JobName = "watched"
	if _, err := m.Submit(ctx, req); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if err := m.Process(ctx, "watched", 1); err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	var buf strings.Builder
	if err := m.Monitor(ctx, "watched", 10*time.Millisecond, &buf); err != nil {
		t.Fatalf("Monitor on completed job failed: %v", err)
	}
	if !strings.Contains(buf.String(), "3/3 completed") {
		t.Fatalf("progress line missing counts: %q", buf.String())
	}

	job, err := s.GetJobByName(ctx, "watched")
	if err != nil {
		t.Fatalf("job lookup failed: %v", err)
	}
	if err := s.UpdateJobStatus(ctx, job.ID, store.StatusFailed); err != nil {
		t.Fatalf("status update failed: %v", err)
	}
	if err := m.Monitor(ctx, "watched", 10*time.Millisecond, &strings.Builder{}); !errors.Is(err, ErrJobIncomplete) {
		t.Fatalf("expected ErrJobIncomplete for failed job, got %v", err)
	}
}
