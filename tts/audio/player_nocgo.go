//go:build nocgo
// +build nocgo

package audio

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/readaloud/tts"
)

// Player is unavailable in builds without cgo.
type Player struct{}

// NewPlayer reports that no sound device is available.
func NewPlayer(_ *log.Logger) (*Player, error) {
	return nil, tts.ErrAudioDeviceUnavailable
}

// Play always fails.
func (p *Player) Play(_ context.Context, _ []byte, _ func()) error {
	return tts.ErrAudioDeviceUnavailable
}

// Close does nothing.
func (p *Player) Close() error {
	return nil
}
