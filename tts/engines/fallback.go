package engines

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/readaloud/tts"
)

// FallbackEngine wraps a primary engine with automatic fallback to a
// secondary engine when the primary fails consistently.
type FallbackEngine struct {
	primary     tts.Engine
	fallback    tts.Engine
	maxFailures int
	logger      *log.Logger

	mu            sync.Mutex
	failures      int
	usingFallback bool
}

// NewFallbackEngine creates an engine that switches to fallback after
// maxFailures consecutive primary failures.
func NewFallbackEngine(primary, fallback tts.Engine, maxFailures int, logger *log.Logger) *FallbackEngine {
	if maxFailures < 1 {
		maxFailures = 1
	}
	if logger == nil {
		logger = log.Default()
	}
	return &FallbackEngine{
		primary:     primary,
		fallback:    fallback,
		maxFailures: maxFailures,
		logger:      logger,
	}
}

// Name returns the name of the engine currently in use.
func (f *FallbackEngine) Name() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.usingFallback {
		return f.fallback.Name()
	}
	return f.primary.Name()
}

// Speak uses the active engine. A primary failure that reaches the limit
// switches to the fallback and retries the utterance there.
func (f *FallbackEngine) Speak(ctx context.Context, u tts.Utterance, started func()) error {
	f.mu.Lock()
	usingFallback := f.usingFallback
	f.mu.Unlock()

	if usingFallback {
		return f.fallback.Speak(ctx, u, started)
	}

	err := f.primary.Speak(ctx, u, started)
	if err == nil || ctx.Err() != nil {
		f.mu.Lock()
		if err == nil && f.failures > 0 {
			f.logger.Info("Primary engine recovered", "failures", f.failures)
			f.failures = 0
		}
		f.mu.Unlock()
		return err
	}

	f.mu.Lock()
	f.failures++
	switched := f.failures >= f.maxFailures
	if switched {
		f.usingFallback = true
	}
	failures := f.failures
	f.mu.Unlock()

	f.logger.Warn("Primary engine failed", "engine", f.primary.Name(), "attempt", failures, "max", f.maxFailures, "err", err)
	if !switched {
		return err
	}

	f.logger.Warn("Switching to fallback engine", "engine", f.fallback.Name())
	if ferr := f.fallback.Speak(ctx, u, started); ferr != nil {
		return fmt.Errorf("both engines failed: %w", errors.Join(err, ferr))
	}
	return nil
}

// Reset returns to the primary engine.
func (f *FallbackEngine) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = 0
	f.usingFallback = false
}

// Status describes which engine is active.
func (f *FallbackEngine) Status() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.usingFallback {
		return fmt.Sprintf("Using fallback engine (primary failed %d times)", f.failures)
	}
	return fmt.Sprintf("Using primary engine (failures: %d/%d)", f.failures, f.maxFailures)
}

// Close closes both engines.
func (f *FallbackEngine) Close() error {
	return errors.Join(f.primary.Close(), f.fallback.Close())
}
