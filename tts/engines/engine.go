// Package engines builds speech engines from configuration.
package engines

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/readaloud/internal/cache"
	"github.com/dgnsrekt/readaloud/tts"
	"github.com/dgnsrekt/readaloud/tts/audio"
	"github.com/dgnsrekt/readaloud/tts/engines/gtts"
	"github.com/dgnsrekt/readaloud/tts/engines/mock"
	"github.com/dgnsrekt/readaloud/tts/engines/piper"
)

// maxPrimaryFailures is how many consecutive failures switch to the
// fallback engine.
const maxPrimaryFailures = 2

// Options override the collaborators New would otherwise create.
type Options struct {
	Logger *log.Logger
	Player tts.Player        // nil opens the sound device
	Cache  tts.AudioCache    // nil builds one from the cache config
	Runner tts.CommandRunner // nil runs real subprocesses
}

// New builds the configured engine, wrapped with the fallback engine
// when one is configured.
func New(cfg tts.Config, opts Options) (tts.Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	b := &builder{cfg: cfg, opts: opts}

	primary, err := b.build(cfg.Engine)
	if err != nil {
		if cfg.Fallback == "" {
			return nil, b.fail(err)
		}
		opts.Logger.Warn("Primary engine unavailable, using fallback", "engine", cfg.Engine, "fallback", cfg.Fallback, "err", err)
		fb, ferr := b.build(cfg.Fallback)
		if ferr != nil {
			return nil, b.fail(errors.Join(err, ferr))
		}
		return b.wrap(fb), nil
	}

	if cfg.Fallback == "" {
		return b.wrap(primary), nil
	}

	fb, err := b.build(cfg.Fallback)
	if err != nil {
		opts.Logger.Warn("Fallback engine unavailable", "engine", cfg.Fallback, "err", err)
		return b.wrap(primary), nil
	}
	return b.wrap(NewFallbackEngine(primary, fb, maxPrimaryFailures, opts.Logger)), nil
}

// builder shares one player and one cache between the engines it builds.
type builder struct {
	cfg  tts.Config
	opts Options

	player tts.Player
	cache  tts.AudioCache
	closer io.Closer // the cache, when New created it
}

func (b *builder) build(name string) (tts.Engine, error) {
	switch name {
	case tts.EngineMock:
		return mock.NewWithConfig(b.cfg.Mock), nil
	case tts.EnginePiper:
		synth := piper.New(b.cfg.Piper, b.opts.Runner, b.opts.Logger)
		if b.opts.Runner == nil {
			if err := synth.Available(); err != nil {
				return nil, err
			}
		}
		return b.pcmEngine(synth)
	case tts.EngineGTTS:
		return b.pcmEngine(gtts.New(b.cfg.GTTS, b.opts.Runner, b.opts.Logger))
	default:
		return nil, fmt.Errorf("%w: %s", tts.ErrInvalidEngine, name)
	}
}

func (b *builder) pcmEngine(synth tts.Synthesizer) (tts.Engine, error) {
	if b.player == nil {
		if b.opts.Player != nil {
			b.player = b.opts.Player
		} else {
			p, err := audio.NewPlayer(b.opts.Logger)
			if err != nil {
				return nil, err
			}
			b.player = p
		}
	}

	if b.cache == nil {
		if b.opts.Cache != nil {
			b.cache = b.opts.Cache
		} else {
			m, err := cache.NewManager(cache.Config{
				MemoryCapacity:   int64(b.cfg.Cache.MemorySizeMB) << 20,
				DiskCapacity:     int64(b.cfg.Cache.MaxSizeMB) << 20,
				DiskPath:         b.cfg.Cache.Dir,
				CompressionLevel: cache.DefaultConfig().CompressionLevel,
			}, b.opts.Logger)
			if err != nil {
				// Speech works without a cache.
				b.opts.Logger.Warn("Audio cache disabled", "err", err)
			} else {
				b.cache = m
				b.closer = m
			}
		}
	}

	return tts.NewPCMEngine(synth, b.player, b.cache, b.opts.Logger), nil
}

// wrap attaches the cache to the engine's Close.
func (b *builder) wrap(e tts.Engine) tts.Engine {
	if b.closer == nil {
		return e
	}
	return &closingEngine{Engine: e, closer: b.closer}
}

// fail releases what was built before returning err.
func (b *builder) fail(err error) error {
	if b.closer != nil {
		_ = b.closer.Close()
	}
	if b.player != nil && b.opts.Player == nil {
		_ = b.player.Close()
	}
	return err
}

type closingEngine struct {
	tts.Engine
	closer io.Closer
}

func (e *closingEngine) Close() error {
	return errors.Join(e.Engine.Close(), e.closer.Close())
}
