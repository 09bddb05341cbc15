package piper

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dgnsrekt/readaloud/tts"
)

// fakeRunner records the command it was asked to run.
type fakeRunner struct {
	stdin  string
	name   string
	args   []string
	output []byte
	err    error
}

func (r *fakeRunner) Run(_ context.Context, stdin string, name string, args ...string) ([]byte, error) {
	r.stdin = stdin
	r.name = name
	r.args = args
	return r.output, r.err
}

func testConfig() tts.PiperConfig {
	return tts.PiperConfig{Binary: "piper", Model: "/voices/en.onnx", Timeout: time.Second}
}

func TestSynthesize(t *testing.T) {
	runner := &fakeRunner{output: []byte{1, 2, 3, 4, 5}}
	s := New(testConfig(), runner, nil)

	pcm, err := s.Synthesize(context.Background(), "  hello world ", 2.0)
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}

	if len(pcm) != 4 {
		t.Errorf("len(pcm) = %d, want 4 (trailing odd byte dropped)", len(pcm))
	}
	if runner.name != "piper" {
		t.Errorf("binary = %q, want piper", runner.name)
	}
	if runner.stdin != "hello world\n" {
		t.Errorf("stdin = %q", runner.stdin)
	}
	want := "--model /voices/en.onnx --output-raw --length_scale 0.50"
	if got := strings.Join(runner.args, " "); got != want {
		t.Errorf("args = %q, want %q", got, want)
	}
}

func TestSynthesizeErrors(t *testing.T) {
	tests := []struct {
		name   string
		runner *fakeRunner
	}{
		{"runner failure", &fakeRunner{err: errors.New("exit status 1")}},
		{"empty output", &fakeRunner{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(testConfig(), tt.runner, nil)
			if _, err := s.Synthesize(context.Background(), "text", 1); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestResolveModel(t *testing.T) {
	dir := t.TempDir()
	model := filepath.Join(dir, "en_US-test.onnx")
	if err := os.WriteFile(model, []byte("onnx"), 0o600); err != nil {
		t.Fatal(err)
	}

	saved := modelDirs
	modelDirs = []string{dir}
	t.Cleanup(func() { modelDirs = saved })

	tests := []struct {
		in   string
		want string
	}{
		{model, model},
		{"en_US-test", model},
		{"en_US-test.onnx", model},
		{"missing.onnx", "missing.onnx"},
		{"relative/path.onnx", "relative/path.onnx"},
	}

	for _, tt := range tests {
		if got := ResolveModel(tt.in); got != tt.want {
			t.Errorf("ResolveModel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAvailable(t *testing.T) {
	cfg := testConfig()
	cfg.Binary = "readaloud_missing_piper_xyz"
	s := New(cfg, &fakeRunner{}, nil)

	err := s.Available()
	if !errors.Is(err, tts.ErrEngineNotAvailable) {
		t.Errorf("Available() error = %v, want ErrEngineNotAvailable", err)
	}
}
