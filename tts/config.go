package tts

import (
	"fmt"
	"strings"
	"time"
)

// Engine names accepted in configuration.
const (
	EngineMock  = "mock"
	EnginePiper = "piper"
	EngineGTTS  = "gtts"
)

// Config contains all speech configuration options.
type Config struct {
	Engine   string  `yaml:"engine"`
	Fallback string  `yaml:"fallback"` // Used when Engine keeps failing, empty for none
	Rate     float64 `yaml:"rate"`

	Cache CacheConfig `yaml:"cache"`

	// Engine-specific configurations
	Piper PiperConfig `yaml:"piper"`
	GTTS  GTTSConfig  `yaml:"gtts"`
	Mock  MockConfig  `yaml:"mock"`
}

// CacheConfig controls the synthesized audio cache.
type CacheConfig struct {
	Dir          string `yaml:"dir"`
	MaxSizeMB    int    `yaml:"max_size"`
	MemorySizeMB int    `yaml:"memory_size"`
}

// PiperConfig contains Piper engine specific settings.
type PiperConfig struct {
	Binary  string        `yaml:"binary"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

// GTTSConfig contains gTTS engine specific settings.
type GTTSConfig struct {
	Binary            string        `yaml:"binary"`
	FFmpeg            string        `yaml:"ffmpeg"`
	Language          string        `yaml:"language"`
	RequestsPerMinute int           `yaml:"requests_per_minute"`
	Timeout           time.Duration `yaml:"timeout"`
}

// MockConfig contains mock engine settings for tests and demos.
type MockConfig struct {
	WordsPerMinute int `yaml:"words_per_minute"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Engine: EnginePiper,
		Rate:   DefaultRate,
		Cache: CacheConfig{
			MaxSizeMB:    100,
			MemorySizeMB: 16,
		},
		Piper: PiperConfig{
			Binary:  "piper",
			Model:   "en_US-lessac-medium.onnx",
			Timeout: 30 * time.Second,
		},
		GTTS: GTTSConfig{
			Binary:            "gtts-cli",
			FFmpeg:            "ffmpeg",
			Language:          "en",
			RequestsPerMinute: 60,
			Timeout:           20 * time.Second,
		},
		Mock: MockConfig{
			WordsPerMinute: 150,
		},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	c.Engine = strings.ToLower(strings.TrimSpace(c.Engine))
	switch c.Engine {
	case EngineMock, EnginePiper, EngineGTTS:
	default:
		return fmt.Errorf("%w: engine %q must be one of %v", ErrInvalidConfig, c.Engine,
			[]string{EngineMock, EnginePiper, EngineGTTS})
	}

	c.Fallback = strings.ToLower(strings.TrimSpace(c.Fallback))
	switch c.Fallback {
	case "", EngineMock, EnginePiper, EngineGTTS:
	default:
		return fmt.Errorf("%w: fallback %q is not an engine", ErrInvalidConfig, c.Fallback)
	}
	if c.Fallback == c.Engine {
		c.Fallback = ""
	}

	if c.Rate < MinRate || c.Rate > MaxRate {
		return fmt.Errorf("%w: rate %.2f", ErrInvalidRate, c.Rate)
	}

	if c.Cache.MaxSizeMB < 0 || c.Cache.MemorySizeMB < 0 {
		return fmt.Errorf("%w: cache sizes cannot be negative", ErrInvalidConfig)
	}

	switch c.Engine {
	case EnginePiper:
		if err := c.Piper.Validate(); err != nil {
			return fmt.Errorf("piper config: %w", err)
		}
	case EngineGTTS:
		if err := c.GTTS.Validate(); err != nil {
			return fmt.Errorf("gtts config: %w", err)
		}
	case EngineMock:
		if err := c.Mock.Validate(); err != nil {
			return fmt.Errorf("mock config: %w", err)
		}
	}

	return nil
}

// Validate checks if the Piper configuration is valid.
func (c *PiperConfig) Validate() error {
	if c.Binary == "" {
		return fmt.Errorf("%w: piper binary path cannot be empty", ErrInvalidConfig)
	}
	if c.Model == "" {
		return fmt.Errorf("%w: piper model cannot be empty", ErrInvalidConfig)
	}
	if c.Timeout < time.Second {
		return fmt.Errorf("%w: timeout must be at least 1 second, got %v", ErrInvalidConfig, c.Timeout)
	}
	return nil
}

// Validate checks if the gTTS configuration is valid.
func (c *GTTSConfig) Validate() error {
	if c.Binary == "" || c.FFmpeg == "" {
		return fmt.Errorf("%w: gtts and ffmpeg binaries are required", ErrInvalidConfig)
	}
	if c.Language == "" {
		return fmt.Errorf("%w: gtts language cannot be empty", ErrInvalidConfig)
	}
	if c.RequestsPerMinute < 1 {
		return fmt.Errorf("%w: requests_per_minute must be positive, got %d", ErrInvalidConfig, c.RequestsPerMinute)
	}
	if c.Timeout < time.Second {
		return fmt.Errorf("%w: timeout must be at least 1 second, got %v", ErrInvalidConfig, c.Timeout)
	}
	return nil
}

// Validate checks if the mock configuration is valid.
func (c *MockConfig) Validate() error {
	if c.WordsPerMinute < 50 || c.WordsPerMinute > 500 {
		return fmt.Errorf("%w: words_per_minute must be between 50 and 500, got %d", ErrInvalidConfig, c.WordsPerMinute)
	}
	return nil
}
