// Package gtts synthesizes speech with Google Translate's voice through
// gtts-cli, converting its MP3 output to PCM with ffmpeg.
package gtts

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/dgnsrekt/readaloud/tts"
)

// Synthesizer calls gtts-cli once per utterance. Requests are rate
// limited because the service throttles aggressive clients.
type Synthesizer struct {
	cfg     tts.GTTSConfig
	runner  tts.CommandRunner
	limiter *rate.Limiter
	tempDir string
	logger  *log.Logger
}

// New creates a gTTS synthesizer. runner may be nil.
func New(cfg tts.GTTSConfig, runner tts.CommandRunner, logger *log.Logger) *Synthesizer {
	if runner == nil {
		runner = tts.NewSubprocess(cfg.Timeout)
	}
	if logger == nil {
		logger = log.Default()
	}
	rpm := max(cfg.RequestsPerMinute, 1)
	return &Synthesizer{
		cfg:     cfg,
		runner:  runner,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1),
		tempDir: os.TempDir(),
		logger:  logger,
	}
}

// Name returns "gtts".
func (s *Synthesizer) Name() string {
	return tts.EngineGTTS
}

// Synthesize fetches MP3 audio for text and converts it to PCM at the
// given speed.
func (s *Synthesizer) Synthesize(ctx context.Context, text string, speed float64) ([]byte, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("gtts rate limit: %w", err)
	}

	mp3, err := os.CreateTemp(s.tempDir, "readaloud-gtts-*.mp3")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	mp3Path := mp3.Name()
	_ = mp3.Close()
	defer os.Remove(mp3Path)

	s.logger.Debug("gTTS generating MP3", "chars", len(text), "lang", s.cfg.Language)
	if _, err := s.runner.Run(ctx, "", s.cfg.Binary, text, "--output", mp3Path, "--lang", s.cfg.Language); err != nil {
		return nil, err
	}

	pcm, err := s.runner.Run(ctx, "", s.cfg.FFmpeg, FFmpegArgs(mp3Path, speed)...)
	if err != nil {
		return nil, err
	}
	if len(pcm) == 0 {
		return nil, fmt.Errorf("ffmpeg produced no audio")
	}

	s.logger.Debug("gTTS synthesized", "bytes", len(pcm), "duration", tts.PCMDuration(pcm))
	return pcm, nil
}

// FFmpegArgs builds the conversion from an MP3 file to raw 16-bit mono
// PCM on stdout. The atempo filter accepts 0.5 to 2.0.
func FFmpegArgs(input string, speed float64) []string {
	args := []string{
		"-loglevel", "error",
		"-i", input,
		"-f", "s16le",
		"-ar", fmt.Sprint(tts.SampleRate),
		"-ac", fmt.Sprint(tts.Channels),
	}
	if speed > 0 && speed != 1.0 {
		speed = min(max(speed, tts.MinRate), tts.MaxRate)
		args = append(args, "-filter:a", fmt.Sprintf("atempo=%.2f", speed))
	}
	return append(args, "-")
}
