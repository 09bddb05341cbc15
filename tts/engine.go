package tts

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// PCM format shared by synthesizers, the player and the audio cache.
const (
	SampleRate     = 22050
	Channels       = 1
	BytesPerSample = 2
)

// Utterance is one speech request.
type Utterance struct {
	Text string
	Rate float64 // 1.0 is normal speed
}

// Engine is the speech collaborator. Speak blocks until the utterance has
// been spoken or ctx is canceled, calling started once audio begins.
// Canceling ctx is the only way to interrupt an utterance.
type Engine interface {
	Name() string
	Speak(ctx context.Context, u Utterance, started func()) error
	Close() error
}

// Synthesizer converts text to 16-bit mono PCM at SampleRate.
type Synthesizer interface {
	Name() string
	Synthesize(ctx context.Context, text string, rate float64) ([]byte, error)
}

// Player plays PCM audio. Play blocks until playback finishes or ctx is
// canceled and calls started when the first samples are queued.
type Player interface {
	Play(ctx context.Context, pcm []byte, started func()) error
	Close() error
}

// AudioCache stores synthesized PCM keyed by CacheKey.
type AudioCache interface {
	Get(key string) ([]byte, bool)
	Put(key string, audio []byte) error
}

// CacheKey identifies the audio produced by engine for u.
func CacheKey(engine string, u Utterance) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%.2f|%s", engine, u.Rate, u.Text)))
	return hex.EncodeToString(sum[:])
}

// PCMDuration returns the playing time of pcm.
func PCMDuration(pcm []byte) time.Duration {
	samples := len(pcm) / (BytesPerSample * Channels)
	return time.Duration(samples) * time.Second / SampleRate
}
