// Package tts defines the synthesis-engine collaborator interface and the
// exec-backed kokoro and chatterbox implementations.
package tts

import (
	"context"
	"sync"
)

// Engine converts one text segment into an audio file. Implementations may be
// slow, GPU-bound, and not safe for concurrent use within one instance; each
// worker constructs its own Engine, so cross-worker isolation comes from the
// store's atomic claim rather than from language-level locks.
type Engine interface {
	// Name returns the engine selector (e.g. "kokoro").
	Name() string

	// Synthesize renders text into an audio file at outPath.
	Synthesize(ctx context.Context, text, outPath string) error

	// Close releases the engine's resources.
	Close() error
}

// EngineFunc adapts a function to the Engine interface. Used by tests and
// in-process fakes.
type EngineFunc func(ctx context.Context, text, outPath string) error

func (f EngineFunc) Name() string { return "func" }

func (f EngineFunc) Synthesize(ctx context.Context, text, outPath string) error {
	return f(ctx, text, outPath)
}

func (f EngineFunc) Close() error { return nil }

// Locked wraps a non-reentrant engine with a mutex so a single instance can
// be shared by concurrent callers within one process. The cross-process
// worker pool does not need this, since each worker owns its instance, but
// an in-process thread-pool variant does.
type Locked struct {
	mu    sync.Mutex
	inner Engine
}

// NewLocked wraps inner in a mutual-exclusion wrapper.
func NewLocked(inner Engine) *Locked {
	return &Locked{inner: inner}
}

func (l *Locked) Name() string { return l.inner.Name() }

func (l *Locked) Synthesize(ctx context.Context, text, outPath string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inner.Synthesize(ctx, text, outPath)
}

func (l *Locked) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inner.Close()
}
