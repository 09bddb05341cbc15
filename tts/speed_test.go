package tts

import (
	"errors"
	"testing"
)

func TestSpeedSteps(t *testing.T) {
	s := NewSpeed()
	if s.Rate() != 1.0 {
		t.Fatalf("initial rate = %v, want 1.0", s.Rate())
	}

	for _, want := range []float64{1.25, 1.5, 1.75, 2.0, 2.0} {
		if got := s.Faster(); got != want {
			t.Errorf("Faster() = %v, want %v", got, want)
		}
	}
	for _, want := range []float64{1.75, 1.5, 1.25, 1.0, 0.75, 0.5, 0.5} {
		if got := s.Slower(); got != want {
			t.Errorf("Slower() = %v, want %v", got, want)
		}
	}
}

func TestSpeedBetweenSteps(t *testing.T) {
	s := NewSpeed()
	if err := s.SetRate(1.1); err != nil {
		t.Fatal(err)
	}
	if got := s.Faster(); got != 1.25 {
		t.Errorf("Faster() from 1.1 = %v, want 1.25", got)
	}
	if err := s.SetRate(1.1); err != nil {
		t.Fatal(err)
	}
	if got := s.Slower(); got != 1.0 {
		t.Errorf("Slower() from 1.1 = %v, want 1.0", got)
	}
}

func TestSetRate(t *testing.T) {
	tests := []struct {
		rate    float64
		wantErr bool
	}{
		{0.5, false},
		{2.0, false},
		{1.3, false},
		{0.49, true},
		{2.01, true},
		{0, true},
	}

	for _, tt := range tests {
		s := NewSpeed()
		err := s.SetRate(tt.rate)
		if (err != nil) != tt.wantErr {
			t.Errorf("SetRate(%v) error = %v, wantErr %v", tt.rate, err, tt.wantErr)
		}
		if err != nil {
			if !errors.Is(err, ErrInvalidRate) {
				t.Errorf("SetRate(%v) error = %v, want ErrInvalidRate", tt.rate, err)
			}
			if s.Rate() != 1.0 {
				t.Errorf("rejected SetRate(%v) changed rate to %v", tt.rate, s.Rate())
			}
		}
	}
}

func TestLengthScale(t *testing.T) {
	tests := map[float64]string{
		1.0:  "1.00",
		2.0:  "0.50",
		0.5:  "2.00",
		1.5:  "0.67",
		0.75: "1.33",
		0:    "1.00",
	}
	for rate, want := range tests {
		if got := LengthScale(rate); got != want {
			t.Errorf("LengthScale(%v) = %q, want %q", rate, got, want)
		}
	}
}
