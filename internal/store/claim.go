package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
)

// ClaimChunk atomically claims the lowest-index pending chunk of a job for
// the caller: the chunk's status moves to processing and its full row is
// returned. No two concurrent callers ever receive the same chunk, even
// across separate OS processes sharing the database file: the select and
// the status update are a single SQL statement, so SQLite's write lock
// serializes the whole claim.
//
// Returns (nil, nil) when no pending chunk remains. Transient busy errors
// from a competing process are retried a few times before giving up; a claim
// that errors out leaves the chunk pending.
//
// There is no lease or timeout on a claim: a worker killed mid-chunk leaves
// the chunk stuck in processing until an explicit resume resets it.
func (s *Store) ClaimChunk(ctx context.Context, jobID int64) (*Chunk, error) {
	var claimed *Chunk

	err := retry.Do(
		func() error {
			row := s.db.QueryRowContext(ctx, `
				UPDATE chunks SET status = ?
				WHERE id = (
					SELECT id FROM chunks
					WHERE job_id = ? AND status = ?
					ORDER BY chunk_index ASC
					LIMIT 1
				)
				RETURNING `+chunkColumns,
				StatusProcessing, jobID, StatusPending)

			chunk, err := scanChunk(row)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					claimed = nil
					return nil
				}
				return err
			}
			claimed = &chunk
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(5),
		retry.Delay(50*time.Millisecond),
		retry.RetryIf(isBusy),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to claim chunk for job %d: %w", jobID, err)
	}

	if claimed != nil {
		s.logger.Debug("chunk claimed", "job_id", jobID, "chunk_index", claimed.Index)
	}
	return claimed, nil
}
