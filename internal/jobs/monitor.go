package jobs

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/innovatorved/tts-app/internal/store"
)

// DefaultMonitorInterval is the poll interval used when none is supplied.
const DefaultMonitorInterval = 2 * time.Second

// Monitor polls a job's aggregate stats at a bounded interval and writes a
// progress line per tick, returning once the job reaches a terminal status.
// A failed job returns ErrJobIncomplete. There is no push mechanism; the
// store is the only source of truth.
func (m *Manager) Monitor(ctx context.Context, jobName string, interval time.Duration, out io.Writer) error {
	if interval <= 0 {
		interval = DefaultMonitorInterval
	}

	job, err := m.store.GetJobByName(ctx, jobName)
	if err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		job, err = m.store.GetJobByName(ctx, jobName)
		if err != nil {
			return err
		}
		stats, err := m.store.GetJobStats(ctx, job.ID)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "job %s [%s] %d/%d completed, %d failed, %d processing, %d pending\n",
			jobName, job.Status, stats.Completed, stats.Total,
			stats.Failed, stats.Processing, stats.Pending)

		switch job.Status {
		case store.StatusCompleted:
			return nil
		case store.StatusFailed:
			return fmt.Errorf("%w: %s", ErrJobIncomplete, jobName)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
