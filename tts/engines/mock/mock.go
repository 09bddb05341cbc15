// Package mock provides a speech engine that simulates speaking time
// without producing audio. It backs tests and the "mock" engine setting.
package mock

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dgnsrekt/readaloud/tts"
)

// MockEngine implements tts.Engine by sleeping for the estimated
// speaking time of each utterance.
type MockEngine struct {
	mu sync.Mutex

	// Configuration
	wordsPerMinute int
	delay          time.Duration // Fixed speaking time, overrides the estimate

	// Control for testing
	shouldFail   bool
	failureError error

	// State
	spoken      []tts.Utterance
	callCount   int
	interrupted int
	active      int
	maxActive   int
	closed      bool
}

// New creates a new mock engine speaking at 150 words per minute.
func New() *MockEngine {
	return &MockEngine{wordsPerMinute: 150}
}

// NewWithConfig creates a mock engine from configuration.
func NewWithConfig(cfg tts.MockConfig) *MockEngine {
	e := New()
	if cfg.WordsPerMinute > 0 {
		e.wordsPerMinute = cfg.WordsPerMinute
	}
	return e
}

// Name returns "mock".
func (e *MockEngine) Name() string {
	return tts.EngineMock
}

// Speak records the utterance and blocks for its simulated duration or
// until ctx is canceled.
func (e *MockEngine) Speak(ctx context.Context, u tts.Utterance, started func()) error {
	e.mu.Lock()
	e.callCount++
	if e.shouldFail {
		err := e.failureError
		e.mu.Unlock()
		return err
	}
	e.spoken = append(e.spoken, u)
	e.active++
	e.maxActive = max(e.maxActive, e.active)
	d := e.duration(u)
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.active--
		e.mu.Unlock()
	}()

	if started != nil {
		started()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		e.mu.Lock()
		e.interrupted++
		e.mu.Unlock()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Close marks the engine closed.
func (e *MockEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

// Test control methods

// SetDelay sets a fixed speaking time for every utterance.
func (e *MockEngine) SetDelay(delay time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.delay = delay
}

// SetFailure configures the engine to fail with the given error.
func (e *MockEngine) SetFailure(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.shouldFail = true
	e.failureError = err
}

// ClearFailure resets the engine to normal operation.
func (e *MockEngine) ClearFailure() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.shouldFail = false
	e.failureError = nil
}

// CallCount returns the number of Speak calls.
func (e *MockEngine) CallCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.callCount
}

// Spoken returns the utterances spoken so far.
func (e *MockEngine) Spoken() []tts.Utterance {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]tts.Utterance(nil), e.spoken...)
}

// Interrupted returns how many utterances were canceled.
func (e *MockEngine) Interrupted() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.interrupted
}

// MaxActive returns the highest number of overlapping Speak calls seen.
func (e *MockEngine) MaxActive() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.maxActive
}

// Closed reports whether Close was called.
func (e *MockEngine) Closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// duration estimates speaking time for u. Callers hold e.mu.
func (e *MockEngine) duration(u tts.Utterance) time.Duration {
	if e.delay > 0 {
		return e.delay
	}
	words := len(strings.Fields(u.Text))
	if words < 1 {
		words = 1
	}
	rate := u.Rate
	if rate <= 0 {
		rate = tts.DefaultRate
	}
	seconds := float64(words) * 60.0 / float64(e.wordsPerMinute) / rate
	return time.Duration(seconds * float64(time.Second))
}
