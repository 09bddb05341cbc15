package tts

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
)

// PCMEngine speaks by synthesizing audio and handing it to a player.
// Synthesized audio is cached so replayed chunks skip synthesis.
type PCMEngine struct {
	synth  Synthesizer
	player Player
	cache  AudioCache
	logger *log.Logger
}

// NewPCMEngine composes an Engine. cache may be nil.
func NewPCMEngine(synth Synthesizer, player Player, cache AudioCache, logger *log.Logger) *PCMEngine {
	if logger == nil {
		logger = log.Default()
	}
	return &PCMEngine{synth: synth, player: player, cache: cache, logger: logger}
}

// Name returns the synthesizer name.
func (e *PCMEngine) Name() string {
	return e.synth.Name()
}

// Speak synthesizes u, or takes it from the cache, and plays it.
func (e *PCMEngine) Speak(ctx context.Context, u Utterance, started func()) error {
	key := CacheKey(e.synth.Name(), u)

	var pcm []byte
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			e.logger.Debug("Audio cache hit", "engine", e.synth.Name(), "bytes", len(cached))
			pcm = cached
		}
	}

	if pcm == nil {
		audio, err := e.synth.Synthesize(ctx, u.Text, u.Rate)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return NewError(ErrSynthesisFailed, e.synth.Name(), "synthesize").WithCause(err)
		}
		if len(audio) == 0 {
			return NewError(ErrNothingToPlay, e.synth.Name(), "synthesize")
		}
		pcm = audio
		if e.cache != nil {
			if err := e.cache.Put(key, pcm); err != nil {
				e.logger.Warn("Could not cache audio", "err", err)
			}
		}
	}

	if err := e.player.Play(ctx, pcm, started); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return NewError(ErrPlaybackFailed, "player", "play").WithCause(err)
	}
	return nil
}

// Close releases the player.
func (e *PCMEngine) Close() error {
	if err := e.player.Close(); err != nil {
		return fmt.Errorf("unable to close player: %w", err)
	}
	return nil
}
