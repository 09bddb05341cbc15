// Package session ties a document load to chunked speech playback. It owns
// the word store, drives extraction and reports a snapshot of its state on
// every change.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/readaloud/internal/extract"
	"github.com/dgnsrekt/readaloud/internal/words"
	"github.com/dgnsrekt/readaloud/tts"
)

const (
	// ChunkSize is the number of words spoken per NextChunk call.
	ChunkSize = 10

	// NoTextPhrase is spoken when NextChunk finds no words.
	NoTextPhrase = "No readable text found."
	// NotReadyPhrase is spoken when ReadAll finds no words.
	NotReadyPhrase = "Document not ready."
)

// ErrClosed is returned by operations on a closed session.
var ErrClosed = errors.New("session closed")

// Speaker plays one utterance at a time. Speak interrupts whatever is
// playing. *tts.Controller implements it.
type Speaker interface {
	Speak(text string) error
	Stop()
	Speaking() bool
	SetCallbacks(cb tts.Callbacks)
}

// Snapshot is what a caller can observe of the session.
type Snapshot struct {
	State     State
	Name      string // open file name
	Status    string
	Progress  string
	Preview   string // text of the last chunk
	Speaking  bool
	Words     int
	Cursor    int
	Complete  bool  // every page is in the store
	Err       error // extraction failure
	SpeechErr error // last engine failure
}

// Session plays one document at a time.
type Session struct {
	store   *words.Store
	loader  *extract.Loader
	speaker Speaker
	logger  *log.Logger

	base     context.Context
	shutdown context.CancelFunc

	mu        sync.Mutex
	machine   *StateMachine
	gen       words.Generation
	cancel    context.CancelFunc
	load      *extract.Load
	name      string
	status    string
	progress  string
	preview   string
	complete  bool
	err       error
	speechErr error
	closed    bool

	cbMu     sync.Mutex
	onChange func(Snapshot)
}

// New creates a session speaking through speaker. A nil registry selects
// the default formats. The session takes over the speaker's callbacks.
func New(speaker Speaker, formats *extract.Registry, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.Default()
	}
	store := words.New()
	base, shutdown := context.WithCancel(context.Background())

	s := &Session{
		store:    store,
		loader:   extract.NewLoader(store, formats, logger),
		speaker:  speaker,
		logger:   logger,
		base:     base,
		shutdown: shutdown,
		machine:  NewStateMachine(),
		status:   "No document",
	}
	s.setupStates()

	speaker.SetCallbacks(tts.Callbacks{
		OnStarted: s.changed,
		OnEnded:   s.changed,
		OnError: func(err error) {
			s.mu.Lock()
			s.speechErr = err
			s.mu.Unlock()
			s.changed()
		},
	})
	return s
}

// setupStates keeps the status line in step with the state machine. The
// callbacks run with s.mu held.
func (s *Session) setupStates() {
	s.machine.OnEnter(StateIdle, func() {
		s.status = "No document"
		s.progress = ""
		s.preview = ""
		s.complete = false
		s.err = nil
		s.speechErr = nil
	})
	s.machine.OnEnter(StateOpeningFile, func() {
		s.status = fmt.Sprintf("Opening %s", s.name)
	})
	s.machine.OnEnter(StateExtractingFast, func() {
		s.status = fmt.Sprintf("Reading first page of %s", s.name)
	})
	s.machine.OnEnter(StateReady, func() {
		s.status = fmt.Sprintf("Ready: %s", s.name)
	})
	s.machine.OnEnter(StateFailed, func() {
		switch {
		case errors.Is(s.err, extract.ErrUnsupportedFormat):
			s.status = fmt.Sprintf("Unsupported file format: %s", s.name)
		case s.err != nil:
			s.status = fmt.Sprintf("Extraction failed: %v", s.err)
		default:
			s.status = "Extraction failed"
		}
	})
}

// OnChange registers fn to receive a snapshot after every change. fn may be
// called from any goroutine and must not call back into the session
// synchronously.
func (s *Session) OnChange(fn func(Snapshot)) {
	s.cbMu.Lock()
	defer s.cbMu.Unlock()
	s.onChange = fn
}

// OpenFile reads path from disk and opens it.
func (s *Session) OpenFile(ctx context.Context, path string) error {
	src, err := extract.ReadFile(path)
	if err != nil {
		return err
	}
	return s.Open(ctx, src)
}

// Open replaces the current document with src. Speech stops, the previous
// load is canceled and its late writes are discarded. Open returns once the
// first page is readable; the remaining pages keep arriving in the
// background. A load superseded by a newer Open returns words.ErrStale.
func (s *Session) Open(ctx context.Context, src extract.Source) error {
	s.speaker.Stop()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.cancel != nil {
		s.cancel()
	}
	loadCtx, cancel := context.WithCancel(s.base)
	s.cancel = cancel
	s.load = nil
	s.gen = s.store.Begin()
	gen := s.gen
	s.machine.Reset()
	s.name = src.Name
	s.mu.Unlock()
	s.changed()

	s.logger.Debug("Opening document", "name", src.Name, "gen", gen, "bytes", len(src.Data))

	// The caller's context only bounds the first page.
	stop := context.AfterFunc(ctx, cancel)
	ld, err := s.loader.Load(loadCtx, gen, src, s.handle)
	stop()
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.gen == gen {
		s.load = ld
	}
	s.mu.Unlock()
	return nil
}

// handle applies a load event. Events from superseded loads are dropped.
func (s *Session) handle(e extract.Event) {
	s.mu.Lock()
	if e.Gen != s.gen || s.closed {
		s.mu.Unlock()
		return
	}

	from := s.machine.Current()
	switch e.Kind {
	case extract.EventOpening:
		s.transition(StateOpeningFile)
	case extract.EventExtractingFast:
		s.transition(StateExtractingFast)
	case extract.EventReady:
		s.transition(StateReady)
		if e.Pages > 1 {
			s.progress = fmt.Sprintf("Page 1 of %d", e.Pages)
		}
	case extract.EventPageStarted:
		s.transition(StateExtractingBackground)
		s.progress = fmt.Sprintf("Parsing page %d of %d", e.Page, e.Pages)
	case extract.EventPageDone:
		s.transition(StateReady)
		s.progress = fmt.Sprintf("Page %d of %d", e.Page, e.Pages)
	case extract.EventComplete:
		if from == StateExtractingBackground {
			s.transition(StateReady)
		}
		s.complete = true
		s.progress = fmt.Sprintf("Fully parsed, %d words", s.store.Len())
	case extract.EventFailed:
		s.err = e.Err
		s.transition(StateFailed)
		if e.Page > 1 {
			s.progress = fmt.Sprintf("Stopped at page %d of %d", e.Page, e.Pages)
		}
	}
	s.mu.Unlock()

	s.changed()
}

// transition must be called with s.mu held.
func (s *Session) transition(to State) {
	from := s.machine.Current()
	if !s.machine.Transition(to) {
		s.logger.Debug("Ignoring state change", "from", from, "to", to)
	}
}

// NextChunk speaks the next ChunkSize words and returns the spoken text.
// After the last chunk the next call starts over at the first word. An
// empty document speaks NoTextPhrase.
func (s *Session) NextChunk() (string, error) {
	text, _, err := s.store.NextChunk(ChunkSize)
	switch {
	case errors.Is(err, words.ErrEmpty):
		text = NoTextPhrase
	case err != nil:
		return "", err
	default:
		s.mu.Lock()
		s.preview = text
		s.mu.Unlock()
	}
	return text, s.speak(text)
}

// ReadAll speaks the whole document as one utterance and returns the
// spoken text. An empty document speaks NotReadyPhrase.
func (s *Session) ReadAll() (string, error) {
	text, err := s.store.FullText()
	if errors.Is(err, words.ErrEmpty) {
		text = NotReadyPhrase
	} else if err != nil {
		return "", err
	}
	return text, s.speak(text)
}

func (s *Session) speak(text string) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return ErrClosed
	}

	// The speaker's callbacks take s.mu, so it must not be held here.
	err := s.speaker.Speak(text)
	s.changed()
	return err
}

// Stop silences speech. Extraction keeps running.
func (s *Session) Stop() {
	s.speaker.Stop()
	s.changed()
}

// Wait blocks until the background phase of the current load has ended.
func (s *Session) Wait() {
	s.mu.Lock()
	ld := s.load
	s.mu.Unlock()
	if ld != nil {
		ld.Wait()
	}
}

// Close stops speech and cancels extraction. The speaker is left open.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	ld := s.load
	s.mu.Unlock()

	s.shutdown()
	s.speaker.Stop()
	if ld != nil {
		ld.Wait()
	}
	return nil
}

// Snapshot returns the current observable state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	snap := Snapshot{
		State:     s.machine.Current(),
		Name:      s.name,
		Status:    s.status,
		Progress:  s.progress,
		Preview:   s.preview,
		Complete:  s.complete,
		Err:       s.err,
		SpeechErr: s.speechErr,
	}
	s.mu.Unlock()

	snap.Speaking = s.speaker.Speaking()
	snap.Words = s.store.Len()
	snap.Cursor = s.store.Cursor()
	return snap
}

func (s *Session) changed() {
	s.cbMu.Lock()
	fn := s.onChange
	s.cbMu.Unlock()
	if fn != nil {
		fn(s.Snapshot())
	}
}
