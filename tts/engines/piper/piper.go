// Package piper synthesizes speech with the Piper command line tool.
package piper

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mitchellh/go-homedir"

	"github.com/dgnsrekt/readaloud/tts"
)

// modelDirs are searched when the configured model is a bare file name.
var modelDirs = []string{
	"~/.local/share/piper-voices",
	"~/.config/piper/voices",
	"/usr/share/piper-voices",
	"/usr/local/share/piper-voices",
	"/opt/piper/voices",
}

// Synthesizer runs one Piper process per utterance and reads raw
// 16-bit mono PCM from its stdout.
type Synthesizer struct {
	binary string
	model  string
	runner tts.CommandRunner
	logger *log.Logger
}

// New creates a Piper synthesizer. runner may be nil.
func New(cfg tts.PiperConfig, runner tts.CommandRunner, logger *log.Logger) *Synthesizer {
	if runner == nil {
		runner = tts.NewSubprocess(cfg.Timeout)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Synthesizer{
		binary: cfg.Binary,
		model:  ResolveModel(cfg.Model),
		runner: runner,
		logger: logger,
	}
}

// Name returns "piper".
func (s *Synthesizer) Name() string {
	return tts.EnginePiper
}

// Model returns the resolved model path.
func (s *Synthesizer) Model() string {
	return s.model
}

// Available checks that the binary and model can be found.
func (s *Synthesizer) Available() error {
	if _, err := exec.LookPath(s.binary); err != nil {
		return tts.NewError(tts.ErrEngineNotAvailable, "piper", "lookup").WithCause(err)
	}
	if _, err := os.Stat(s.model); err != nil {
		return tts.NewError(tts.ErrEngineNotAvailable, "piper", "model").
			WithCause(err).
			WithContext("model", s.model)
	}
	return nil
}

// Synthesize converts text to PCM at the given rate.
func (s *Synthesizer) Synthesize(ctx context.Context, text string, rate float64) ([]byte, error) {
	args := []string{
		"--model", s.model,
		"--output-raw",
		"--length_scale", tts.LengthScale(rate),
	}

	s.logger.Debug("Piper synthesizing", "chars", len(text), "rate", rate)
	pcm, err := s.runner.Run(ctx, strings.TrimSpace(text)+"\n", s.binary, args...)
	if err != nil {
		return nil, err
	}
	if len(pcm) == 0 {
		return nil, fmt.Errorf("piper produced no audio")
	}

	// Piper writes whole samples, but keep the player aligned regardless.
	if odd := len(pcm) % tts.BytesPerSample; odd != 0 {
		pcm = pcm[:len(pcm)-odd]
	}
	s.logger.Debug("Piper synthesized", "bytes", len(pcm), "duration", tts.PCMDuration(pcm))
	return pcm, nil
}

// ResolveModel expands a leading ~ and, for bare names, searches the
// usual voice directories. Unresolvable names are returned expanded.
func ResolveModel(model string) string {
	expanded, err := homedir.Expand(model)
	if err != nil {
		expanded = model
	}
	if filepath.IsAbs(expanded) || strings.ContainsRune(expanded, filepath.Separator) {
		return expanded
	}

	name := expanded
	if filepath.Ext(name) != ".onnx" {
		name += ".onnx"
	}
	for _, dir := range modelDirs {
		dir, err := homedir.Expand(dir)
		if err != nil {
			continue
		}
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return expanded
}
