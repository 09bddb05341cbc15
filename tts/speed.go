package tts

import (
	"fmt"
	"sync"
)

// Rate limits.
const (
	MinRate     = 0.5
	MaxRate     = 2.0
	DefaultRate = 1.0
)

// Speed manages the speaking rate with predefined steps.
type Speed struct {
	current float64
	steps   []float64
	mu      sync.RWMutex
}

// NewSpeed creates a speed control at normal rate.
func NewSpeed() *Speed {
	return &Speed{
		current: DefaultRate,
		steps:   []float64{0.5, 0.75, 1.0, 1.25, 1.5, 1.75, 2.0},
	}
}

// Rate returns the current rate multiplier.
func (s *Speed) Rate() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// SetRate sets the rate multiplier (0.5 to 2.0).
func (s *Speed) SetRate(rate float64) error {
	if rate < MinRate || rate > MaxRate {
		return fmt.Errorf("%w: %.2f", ErrInvalidRate, rate)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = rate
	return nil
}

// Faster moves to the next higher step and returns the new rate.
func (s *Speed) Faster() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, step := range s.steps {
		if step > s.current {
			s.current = step
			break
		}
	}
	return s.current
}

// Slower moves to the next lower step and returns the new rate.
func (s *Speed) Slower() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(s.steps) - 1; i >= 0; i-- {
		if s.steps[i] < s.current {
			s.current = s.steps[i]
			break
		}
	}
	return s.current
}

// LengthScale converts a rate to Piper's length-scale parameter.
// Piper scales inversely: a faster rate is a smaller length-scale.
func LengthScale(rate float64) string {
	if rate <= 0 {
		rate = DefaultRate
	}
	return fmt.Sprintf("%.2f", 1.0/rate)
}
