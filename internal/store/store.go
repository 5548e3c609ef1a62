// Package store provides the durable SQLite-backed job and chunk store.
//
// The store is the single source of truth for job progress and the only
// shared mutable state between worker processes. Every mutation that affects
// chunk assignment goes through one of its atomic operations.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"modernc.org/sqlite"
)

// Primary result codes from the SQLite C API. modernc surfaces them via
// sqlite.Error; the low byte of an extended code is the primary code.
const (
	sqliteBusy       = 5
	sqliteLocked     = 6
	sqliteConstraint = 19
)

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  job_name TEXT NOT NULL UNIQUE,
  input_file TEXT,
  output_dir TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  engine TEXT,
  lang TEXT,
  voice TEXT,
  speed REAL,
  device TEXT,
  merge_output BOOLEAN,
  cb_audio_prompt TEXT,
  cb_exaggeration REAL,
  cb_cfg_weight REAL,
  cb_temperature REAL,
  cb_top_p REAL,
  cb_min_p REAL,
  cb_repetition_penalty REAL,
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS chunks (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  job_id INTEGER NOT NULL,
  chunk_index INTEGER NOT NULL,
  text TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  audio_file_path TEXT,
  retries INTEGER NOT NULL DEFAULT 0,
  created_at INTEGER NOT NULL,
  FOREIGN KEY (job_id) REFERENCES jobs (id),
  UNIQUE (job_id, chunk_index)
);

CREATE INDEX IF NOT EXISTS idx_chunks_claim ON chunks (job_id, status, chunk_index);
`

// Store is a durable job/chunk store reachable concurrently by multiple
// OS processes sharing the same database file.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if necessary) the SQLite database at path and ensures
// the schema exists. WAL mode plus a busy timeout lets concurrent worker
// processes share the file; the claim statement provides the actual
// at-most-once guarantee.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dsn := fmt.Sprintf(
		"file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)",
		path,
	)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Debug("job store opened", "path", path)
	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// CreateJob inserts a new job row and returns its id. Creation is idempotent
// on the job name: a duplicate name returns the pre-existing job's id instead
// of failing.
func (s *Store) CreateJob(ctx context.Context, job Job) (int64, error) {
	if err := job.Params.Validate(); err != nil {
		return 0, err
	}

	var (
		lang, voice    sql.NullString
		speed          sql.NullFloat64
		cbPrompt       sql.NullString
		cbExaggeration sql.NullFloat64
		cbCFGWeight    sql.NullFloat64
		cbTemperature  sql.NullFloat64
		cbTopP         sql.NullFloat64
		cbMinP         sql.NullFloat64
		cbRepPenalty   sql.NullFloat64
	)
	switch job.Params.Engine {
	case EngineKokoro:
		k := job.Params.Kokoro
		lang = sql.NullString{String: k.Lang, Valid: true}
		voice = sql.NullString{String: k.Voice, Valid: true}
		speed = sql.NullFloat64{Float64: k.Speed, Valid: true}
	case EngineChatterbox:
		c := job.Params.Chatterbox
		cbPrompt = sql.NullString{String: c.AudioPromptPath, Valid: c.AudioPromptPath != ""}
		cbExaggeration = sql.NullFloat64{Float64: c.Exaggeration, Valid: true}
		cbCFGWeight = sql.NullFloat64{Float64: c.CFGWeight, Valid: true}
		cbTemperature = sql.NullFloat64{Float64: c.Temperature, Valid: true}
		cbTopP = sql.NullFloat64{Float64: c.TopP, Valid: true}
		cbMinP = sql.NullFloat64{Float64: c.MinP, Valid: true}
		cbRepPenalty = sql.NullFloat64{Float64: c.RepetitionPenalty, Valid: true}
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO jobs (job_name, input_file, output_dir, status, engine, lang, voice, speed,
		                  device, merge_output, cb_audio_prompt, cb_exaggeration, cb_cfg_weight,
		                  cb_temperature, cb_top_p, cb_min_p, cb_repetition_penalty, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.Name, job.InputFile, job.OutputDir, StatusPending, string(job.Params.Engine),
		lang, voice, speed, job.Device, job.MergeOutput,
		cbPrompt, cbExaggeration, cbCFGWeight, cbTemperature, cbTopP, cbMinP, cbRepPenalty,
		time.Now().UnixMilli(),
	)
	if err != nil {
		if isConstraintViolation(err) {
			s.logger.Warn("job already exists, returning existing id", "job", job.Name)
			existing, lookupErr := s.GetJobByName(ctx, job.Name)
			if lookupErr != nil {
				return 0, fmt.Errorf("job %q exists but lookup failed: %w", job.Name, lookupErr)
			}
			return existing.ID, nil
		}
		return 0, fmt.Errorf("failed to create job %q: %w", job.Name, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read new job id: %w", err)
	}
	return id, nil
}

const jobColumns = `id, job_name, input_file, output_dir, status, engine, lang, voice, speed,
	device, merge_output, cb_audio_prompt, cb_exaggeration, cb_cfg_weight,
	cb_temperature, cb_top_p, cb_min_p, cb_repetition_penalty, created_at`

// GetJobByName retrieves a job by its unique name.
// Returns ErrJobNotFound when no such job exists.
func (s *Store) GetJobByName(ctx context.Context, name string) (Job, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE job_name = ?`, name)
	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Job{}, ErrJobNotFound
		}
		return Job{}, fmt.Errorf("failed to get job %q: %w", name, err)
	}
	return job, nil
}

// CreateChunks bulk-inserts the chunk set for a job. Blank and whitespace-only
// entries are dropped before index assignment so stored indices are contiguous
// 0..N-1. Returns the number of chunks inserted; zero (with a warning logged)
// when every entry was blank.
func (s *Store) CreateChunks(ctx context.Context, jobID int64, texts []string) (int, error) {
	filtered := make([]string, 0, len(texts))
	for _, t := range texts {
		if trimmed := strings.TrimSpace(t); trimmed != "" {
			filtered = append(filtered, trimmed)
		}
	}
	if skipped := len(texts) - len(filtered); skipped > 0 {
		s.logger.Info("skipped blank chunks", "job_id", jobID, "skipped", skipped)
	}
	if len(filtered) == 0 {
		s.logger.Warn("no non-blank chunks to insert", "job_id", jobID)
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin chunk insert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chunks (job_id, chunk_index, text, status, created_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare chunk insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UnixMilli()
	for i, text := range filtered {
		if _, err := stmt.ExecContext(ctx, jobID, i, text, StatusPending, now); err != nil {
			return 0, fmt.Errorf("failed to insert chunk %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit chunk insert: %w", err)
	}

	s.logger.Info("chunks created", "job_id", jobID, "count", len(filtered))
	return len(filtered), nil
}

// UpdateChunkStatus sets a chunk's status and, for completed chunks, records
// the first generated audio file path.
func (s *Store) UpdateChunkStatus(ctx context.Context, chunkID int64, status Status, audioPath string) error {
	path := sql.NullString{String: audioPath, Valid: audioPath != ""}
	_, err := s.db.ExecContext(ctx,
		`UPDATE chunks SET status = ?, audio_file_path = ? WHERE id = ?`,
		status, path, chunkID)
	if err != nil {
		return fmt.Errorf("failed to update chunk %d status: %w", chunkID, err)
	}
	return nil
}

// UpdateJobStatus sets a job's status.
func (s *Store) UpdateJobStatus(ctx context.Context, jobID int64, status Status) error {
	_, err := s.db.ExecContext(ctx, `UPDATE jobs SET status = ? WHERE id = ?`, status, jobID)
	if err != nil {
		return fmt.Errorf("failed to update job %d status: %w", jobID, err)
	}
	return nil
}

// GetChunksForJob returns all chunks for a job ordered by chunk index.
func (s *Store) GetChunksForJob(ctx context.Context, jobID int64) ([]Chunk, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+chunkColumns+` FROM chunks WHERE job_id = ? ORDER BY chunk_index ASC`, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks for job %d: %w", jobID, err)
	}
	defer rows.Close()

	var chunks []Chunk
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}

// GetJobStats returns per-status chunk counts plus a total for a job.
func (s *Store) GetJobStats(ctx context.Context, jobID int64) (JobStats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM chunks WHERE job_id = ? GROUP BY status`, jobID)
	if err != nil {
		return JobStats{}, fmt.Errorf("failed to query job %d stats: %w", jobID, err)
	}
	defer rows.Close()

	var stats JobStats
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return JobStats{}, fmt.Errorf("failed to scan job stats: %w", err)
		}
		switch status {
		case StatusPending:
			stats.Pending = count
		case StatusProcessing:
			stats.Processing = count
		case StatusCompleted:
			stats.Completed = count
		case StatusFailed:
			stats.Failed = count
		}
		stats.Total += count
	}
	return stats, rows.Err()
}

// GetAllJobs returns summaries of every job, newest first.
func (s *Store) GetAllJobs(ctx context.Context) ([]JobSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, job_name, status, created_at FROM jobs ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer rows.Close()

	var out []JobSummary
	for rows.Next() {
		var (
			summary   JobSummary
			createdMs int64
		)
		if err := rows.Scan(&summary.ID, &summary.Name, &summary.Status, &createdMs); err != nil {
			return nil, fmt.Errorf("failed to scan job summary: %w", err)
		}
		summary.CreatedAt = time.UnixMilli(createdMs)
		out = append(out, summary)
	}
	return out, rows.Err()
}

// ResetFailedChunks sets every failed or stuck-processing chunk of a job back
// to pending, incrementing its retry counter. Used exclusively by resume;
// completed chunks are never touched.
func (s *Store) ResetFailedChunks(ctx context.Context, jobID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE chunks SET status = ?, retries = retries + 1
		 WHERE job_id = ? AND status IN (?, ?)`,
		StatusPending, jobID, StatusFailed, StatusProcessing)
	if err != nil {
		return 0, fmt.Errorf("failed to reset chunks for job %d: %w", jobID, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count reset chunks: %w", err)
	}
	s.logger.Info("reset failed/stuck chunks to pending", "job_id", jobID, "count", count)
	return count, nil
}

const chunkColumns = `id, job_id, chunk_index, text, status, audio_file_path, retries, created_at`

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanChunk(row rowScanner) (Chunk, error) {
	var (
		chunk     Chunk
		audioPath sql.NullString
		createdMs int64
	)
	err := row.Scan(&chunk.ID, &chunk.JobID, &chunk.Index, &chunk.Text,
		&chunk.Status, &audioPath, &chunk.Retries, &createdMs)
	if err != nil {
		return Chunk{}, err
	}
	chunk.AudioFilePath = audioPath.String
	chunk.CreatedAt = time.UnixMilli(createdMs)
	return chunk, nil
}

func scanJob(row rowScanner) (Job, error) {
	var (
		job            Job
		inputFile      sql.NullString
		outputDir      sql.NullString
		engine         sql.NullString
		lang, voice    sql.NullString
		speed          sql.NullFloat64
		device         sql.NullString
		mergeOutput    sql.NullBool
		cbPrompt       sql.NullString
		cbExaggeration sql.NullFloat64
		cbCFGWeight    sql.NullFloat64
		cbTemperature  sql.NullFloat64
		cbTopP         sql.NullFloat64
		cbMinP         sql.NullFloat64
		cbRepPenalty   sql.NullFloat64
		createdMs      int64
	)
	err := row.Scan(&job.ID, &job.Name, &inputFile, &outputDir, &job.Status,
		&engine, &lang, &voice, &speed, &device, &mergeOutput,
		&cbPrompt, &cbExaggeration, &cbCFGWeight, &cbTemperature,
		&cbTopP, &cbMinP, &cbRepPenalty, &createdMs)
	if err != nil {
		return Job{}, err
	}

	job.InputFile = inputFile.String
	job.OutputDir = outputDir.String
	job.Device = device.String
	job.MergeOutput = mergeOutput.Bool
	job.CreatedAt = time.UnixMilli(createdMs)

	job.Params.Engine = Engine(engine.String)
	switch job.Params.Engine {
	case EngineKokoro:
		job.Params.Kokoro = &KokoroParams{
			Lang:  lang.String,
			Voice: voice.String,
			Speed: speed.Float64,
		}
	case EngineChatterbox:
		job.Params.Chatterbox = &ChatterboxParams{
			AudioPromptPath:   cbPrompt.String,
			Exaggeration:      cbExaggeration.Float64,
			CFGWeight:         cbCFGWeight.Float64,
			Temperature:       cbTemperature.Float64,
			TopP:              cbTopP.Float64,
			MinP:              cbMinP.Float64,
			RepetitionPenalty: cbRepPenalty.Float64,
		}
	}
	return job, nil
}

// isConstraintViolation reports whether err is a SQLite constraint failure
// (e.g. a duplicate job name).
func isConstraintViolation(err error) bool {
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code()&0xff == sqliteConstraint
	}
	return false
}

// isBusy reports whether err is a transient SQLITE_BUSY/SQLITE_LOCKED failure
// caused by another process holding the write lock.
func isBusy(err error) bool {
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code() & 0xff
		return code == sqliteBusy || code == sqliteLocked
	}
	return false
}
