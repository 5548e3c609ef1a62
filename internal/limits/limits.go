// Package limits applies advisory process-level resource limits at worker
// startup. Nothing here affects correctness; claims stay safe regardless.
package limits

import (
	"log/slog"
	"runtime"
)

// Options describes the advisory limits to apply.
type Options struct {
	// MaxProcs caps GOMAXPROCS when > 0. Typically the worker count plus one
	// for the coordinating goroutine.
	MaxProcs int

	// Niceness lowers scheduling priority on platforms that support it
	// (positive values are lower priority).
	Niceness int
}

// Apply applies the limits, logging what took effect. Failures are logged
// and ignored.
func Apply(opts Options, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	if opts.MaxProcs > 0 {
		n := opts.MaxProcs
		if max := runtime.NumCPU(); n > max {
			n = max
		}
		runtime.GOMAXPROCS(n)
		logger.Debug("GOMAXPROCS capped", "procs", n)
	}

	if opts.Niceness != 0 {
		if err := setNiceness(opts.Niceness); err != nil {
			logger.Warn("failed to set process niceness", "error", err)
		} else {
			logger.Debug("process niceness set", "niceness", opts.Niceness)
		}
	}
}
