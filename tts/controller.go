// Package tts speaks text through a pluggable speech engine.
package tts

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

// Callbacks observe the utterance lifecycle. They run on the utterance's
// goroutine and must not call Speak or Stop synchronously.
type Callbacks struct {
	OnStarted func()
	OnEnded   func()
	OnError   func(error)
}

// Controller keeps at most one utterance active. A new Speak cuts off the
// previous utterance instead of queueing behind it.
type Controller struct {
	engine Engine
	speed  *Speed
	logger *log.Logger

	mu     sync.Mutex // serializes Speak, Stop and Close
	active *utterance
	closed bool

	speaking atomic.Bool

	cbMu      sync.RWMutex
	callbacks Callbacks
}

type utterance struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// NewController creates a controller speaking through engine.
func NewController(engine Engine, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.Default()
	}
	return &Controller{
		engine: engine,
		speed:  NewSpeed(),
		logger: logger,
	}
}

// SetCallbacks replaces the lifecycle callbacks.
func (c *Controller) SetCallbacks(cb Callbacks) {
	c.cbMu.Lock()
	defer c.cbMu.Unlock()
	c.callbacks = cb
}

// Speak interrupts any active utterance and starts speaking text at the
// current rate. Empty text is ignored. Speak returns once the new
// utterance has been handed to the engine.
func (c *Controller) Speak(text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrControllerClosed
	}

	c.interrupt()

	ctx, cancel := context.WithCancel(context.Background())
	u := &utterance{cancel: cancel, done: make(chan struct{})}
	c.active = u

	utt := Utterance{Text: text, Rate: c.speed.Rate()}
	c.logger.Debug("Speaking", "engine", c.engine.Name(), "words", len(strings.Fields(text)), "rate", utt.Rate)
	go c.run(ctx, u, utt)

	return nil
}

// Stop cancels the active utterance, if any, and waits for it to end.
// It is safe to call when already silent.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.interrupt()
	c.speaking.Store(false)
}

// Close stops speech and releases the engine.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.interrupt()
	c.speaking.Store(false)
	return c.engine.Close()
}

// Done returns a channel closed when the current utterance ends. With no
// utterance the channel is already closed.
func (c *Controller) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return c.active.done
}

// Speaking reports whether audio is playing.
func (c *Controller) Speaking() bool {
	return c.speaking.Load()
}

// State returns the current speech state.
func (c *Controller) State() SpeechState {
	if c.speaking.Load() {
		return Speaking
	}
	return Silent
}

// Rate returns the rate used for the next utterance.
func (c *Controller) Rate() float64 {
	return c.speed.Rate()
}

// SetRate sets the rate for subsequent utterances.
func (c *Controller) SetRate(rate float64) error {
	return c.speed.SetRate(rate)
}

// FasterRate steps the rate up and returns it.
func (c *Controller) FasterRate() float64 {
	return c.speed.Faster()
}

// SlowerRate steps the rate down and returns it.
func (c *Controller) SlowerRate() float64 {
	return c.speed.Slower()
}

// EngineName returns the name of the underlying engine.
func (c *Controller) EngineName() string {
	return c.engine.Name()
}

// interrupt cancels the active utterance and waits until its goroutine
// has finished. Callers hold c.mu.
func (c *Controller) interrupt() {
	if c.active == nil {
		return
	}
	c.active.cancel()
	<-c.active.done
	c.active = nil
}

func (c *Controller) run(ctx context.Context, u *utterance, utt Utterance) {
	defer close(u.done)
	defer u.cancel()

	err := c.engine.Speak(ctx, utt, func() {
		c.speaking.Store(true)
		c.cbMu.RLock()
		fn := c.callbacks.OnStarted
		c.cbMu.RUnlock()
		if fn != nil {
			fn()
		}
	})
	c.speaking.Store(false)

	c.cbMu.RLock()
	cb := c.callbacks
	c.cbMu.RUnlock()

	if err != nil && ctx.Err() == nil {
		c.logger.Error("Speech failed", "engine", c.engine.Name(), "err", err)
		if cb.OnError != nil {
			cb.OnError(err)
		}
		return
	}
	if cb.OnEnded != nil {
		cb.OnEnded()
	}
}
