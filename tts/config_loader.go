package tts

import (
	"fmt"

	"github.com/spf13/viper"
)

// LoadConfigFromViper loads speech configuration from Viper.
func LoadConfigFromViper() (Config, error) {
	return LoadConfig(viper.GetViper())
}

// LoadConfig loads speech configuration from v, starting from the defaults.
func LoadConfig(v *viper.Viper) (Config, error) {
	cfg := DefaultConfig()

	if v.IsSet("tts.engine") {
		cfg.Engine = v.GetString("tts.engine")
	}
	if v.IsSet("tts.fallback") {
		cfg.Fallback = v.GetString("tts.fallback")
	}
	if v.IsSet("tts.rate") {
		cfg.Rate = v.GetFloat64("tts.rate")
	}

	// Cache
	if v.IsSet("tts.cache.dir") {
		cfg.Cache.Dir = v.GetString("tts.cache.dir")
	}
	if v.IsSet("tts.cache.max_size") {
		cfg.Cache.MaxSizeMB = v.GetInt("tts.cache.max_size")
	}
	if v.IsSet("tts.cache.memory_size") {
		cfg.Cache.MemorySizeMB = v.GetInt("tts.cache.memory_size")
	}

	// Piper
	if v.IsSet("tts.piper.binary") {
		cfg.Piper.Binary = v.GetString("tts.piper.binary")
	}
	if v.IsSet("tts.piper.model") {
		cfg.Piper.Model = v.GetString("tts.piper.model")
	}
	if v.IsSet("tts.piper.timeout") {
		cfg.Piper.Timeout = v.GetDuration("tts.piper.timeout")
	}

	// gTTS
	if v.IsSet("tts.gtts.binary") {
		cfg.GTTS.Binary = v.GetString("tts.gtts.binary")
	}
	if v.IsSet("tts.gtts.ffmpeg") {
		cfg.GTTS.FFmpeg = v.GetString("tts.gtts.ffmpeg")
	}
	if v.IsSet("tts.gtts.language") {
		cfg.GTTS.Language = v.GetString("tts.gtts.language")
	}
	if v.IsSet("tts.gtts.requests_per_minute") {
		cfg.GTTS.RequestsPerMinute = v.GetInt("tts.gtts.requests_per_minute")
	}
	if v.IsSet("tts.gtts.timeout") {
		cfg.GTTS.Timeout = v.GetDuration("tts.gtts.timeout")
	}

	// Mock
	if v.IsSet("tts.mock.words_per_minute") {
		cfg.Mock.WordsPerMinute = v.GetInt("tts.mock.words_per_minute")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid speech configuration: %w", err)
	}

	return cfg, nil
}

// SetDefaults sets default values in v for speech configuration.
func SetDefaults(v *viper.Viper) {
	defaults := DefaultConfig()

	v.SetDefault("tts.engine", defaults.Engine)
	v.SetDefault("tts.fallback", defaults.Fallback)
	v.SetDefault("tts.rate", defaults.Rate)

	v.SetDefault("tts.cache.max_size", defaults.Cache.MaxSizeMB)
	v.SetDefault("tts.cache.memory_size", defaults.Cache.MemorySizeMB)

	v.SetDefault("tts.piper.binary", defaults.Piper.Binary)
	v.SetDefault("tts.piper.model", defaults.Piper.Model)
	v.SetDefault("tts.piper.timeout", defaults.Piper.Timeout.String())

	v.SetDefault("tts.gtts.binary", defaults.GTTS.Binary)
	v.SetDefault("tts.gtts.ffmpeg", defaults.GTTS.FFmpeg)
	v.SetDefault("tts.gtts.language", defaults.GTTS.Language)
	v.SetDefault("tts.gtts.requests_per_minute", defaults.GTTS.RequestsPerMinute)
	v.SetDefault("tts.gtts.timeout", defaults.GTTS.Timeout.String())

	v.SetDefault("tts.mock.words_per_minute", defaults.Mock.WordsPerMinute)
}
