package audio

import (
	"context"
	"sync"
	"time"

	"github.com/dgnsrekt/readaloud/tts"
)

// MockPlayer implements tts.Player without a sound device. It waits for
// the real duration of the PCM, scaled by a speed multiplier.
type MockPlayer struct {
	mu sync.Mutex

	speedMultiplier float64
	playError       error

	history   []PlaybackEvent
	active    int
	maxActive int
	closed    bool
}

// PlaybackEvent records an event for test verification.
type PlaybackEvent struct {
	Type      string // "play", "finish", "cancel"
	Timestamp time.Time
	Bytes     int
}

// NewMockPlayer creates a mock player playing in real time.
func NewMockPlayer() *MockPlayer {
	return &MockPlayer{speedMultiplier: 1.0}
}

// Play simulates playback of pcm.
func (mp *MockPlayer) Play(ctx context.Context, pcm []byte, started func()) error {
	mp.mu.Lock()
	if mp.playError != nil {
		err := mp.playError
		mp.mu.Unlock()
		return err
	}
	if len(pcm) == 0 {
		mp.mu.Unlock()
		return tts.ErrNothingToPlay
	}
	mp.active++
	mp.maxActive = max(mp.maxActive, mp.active)
	mp.recordEvent("play", len(pcm))
	d := time.Duration(float64(tts.PCMDuration(pcm)) / mp.speedMultiplier)
	mp.mu.Unlock()

	defer func() {
		mp.mu.Lock()
		mp.active--
		mp.mu.Unlock()
	}()

	if started != nil {
		started()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		mp.mu.Lock()
		mp.recordEvent("cancel", len(pcm))
		mp.mu.Unlock()
		return ctx.Err()
	case <-timer.C:
		mp.mu.Lock()
		mp.recordEvent("finish", len(pcm))
		mp.mu.Unlock()
		return nil
	}
}

// Close marks the player closed.
func (mp *MockPlayer) Close() error {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.closed = true
	return nil
}

// Test control methods

// SetSpeedMultiplier speeds up (>1) or slows down (<1) simulated playback.
func (mp *MockPlayer) SetSpeedMultiplier(multiplier float64) {
	if multiplier <= 0 {
		return
	}
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.speedMultiplier = multiplier
}

// InjectError makes subsequent Play calls fail with err. Nil clears it.
func (mp *MockPlayer) InjectError(err error) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.playError = err
}

// History returns a copy of the recorded events.
func (mp *MockPlayer) History() []PlaybackEvent {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return append([]PlaybackEvent(nil), mp.history...)
}

// MaxActive returns the highest number of overlapping Play calls seen.
func (mp *MockPlayer) MaxActive() int {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.maxActive
}

// Closed reports whether Close was called.
func (mp *MockPlayer) Closed() bool {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.closed
}

// recordEvent appends to the history. Callers hold mp.mu.
func (mp *MockPlayer) recordEvent(eventType string, n int) {
	mp.history = append(mp.history, PlaybackEvent{
		Type:      eventType,
		Timestamp: time.Now(),
		Bytes:     n,
	})
}
