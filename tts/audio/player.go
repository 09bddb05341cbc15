//go:build !nocgo
// +build !nocgo

// Package audio plays synthesized PCM through the system sound device.
package audio

import (
	"bytes"
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"

	"github.com/dgnsrekt/readaloud/tts"
)

// pollInterval is how often Play checks for the end of playback.
const pollInterval = 10 * time.Millisecond

// oto allows one context per process.
var (
	sharedContext *oto.Context
	contextErr    error
	contextOnce   sync.Once
)

func audioContext() (*oto.Context, error) {
	contextOnce.Do(func() {
		options := &oto.NewContextOptions{
			SampleRate:   tts.SampleRate,
			ChannelCount: tts.Channels,
			Format:       oto.FormatSignedInt16LE,
		}

		switch runtime.GOOS {
		case "darwin":
			options.BufferSize = 100 * time.Millisecond
		default:
			options.BufferSize = 50 * time.Millisecond
		}

		ctx, ready, err := oto.NewContext(options)
		if err != nil {
			contextErr = fmt.Errorf("%w: %w", tts.ErrAudioDeviceUnavailable, err)
			return
		}
		<-ready
		sharedContext = ctx
	})
	return sharedContext, contextErr
}

// Player plays PCM through oto. One clip plays at a time.
type Player struct {
	mu      sync.Mutex
	current *oto.Player
	logger  *log.Logger
}

// NewPlayer opens the sound device.
func NewPlayer(logger *log.Logger) (*Player, error) {
	if logger == nil {
		logger = log.Default()
	}
	if _, err := audioContext(); err != nil {
		return nil, err
	}
	return &Player{logger: logger}, nil
}

// Play blocks until pcm has been played or ctx is canceled.
func (p *Player) Play(ctx context.Context, pcm []byte, started func()) error {
	if len(pcm) == 0 {
		return tts.ErrNothingToPlay
	}
	if len(pcm)%(tts.BytesPerSample*tts.Channels) != 0 {
		return fmt.Errorf("%w: %d bytes is not a whole number of samples", tts.ErrInvalidAudioFormat, len(pcm))
	}

	otoCtx, err := audioContext()
	if err != nil {
		return err
	}

	player := otoCtx.NewPlayer(bytes.NewReader(pcm))
	p.mu.Lock()
	p.current = player
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		if p.current == player {
			p.current = nil
		}
		p.mu.Unlock()
		if err := player.Close(); err != nil {
			p.logger.Debug("Closing audio player", "err", err)
		}
	}()

	player.Play()
	if started != nil {
		started()
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			player.Pause()
			return ctx.Err()
		case <-ticker.C:
			if !player.IsPlaying() {
				if err := player.Err(); err != nil {
					return fmt.Errorf("%w: %w", tts.ErrPlaybackFailed, err)
				}
				return nil
			}
		}
	}
}

// Close pauses any clip still playing. The device stays open for the
// life of the process.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current != nil {
		p.current.Pause()
		p.current = nil
	}
	return nil
}
