package extract

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/readaloud/internal/words"
)

// EventKind identifies a step of a document load.
type EventKind int

const (
	// EventOpening is sent before the file type is detected and opened.
	EventOpening EventKind = iota
	// EventExtractingFast is sent before the first page is read.
	EventExtractingFast
	// EventReady is sent once the first page is in the word store.
	EventReady
	// EventPageStarted is sent before a background page is read.
	EventPageStarted
	// EventPageDone is sent after a background page was appended.
	EventPageDone
	// EventComplete is sent after the last page was appended.
	EventComplete
	// EventFailed is sent when opening or parsing fails.
	EventFailed
)

// String returns the string representation of the event kind.
func (k EventKind) String() string {
	switch k {
	case EventOpening:
		return "opening"
	case EventExtractingFast:
		return "extracting-fast"
	case EventReady:
		return "ready"
	case EventPageStarted:
		return "page-started"
	case EventPageDone:
		return "page-done"
	case EventComplete:
		return "complete"
	case EventFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Event reports load progress. Gen ties it to the load it belongs to.
type Event struct {
	Kind   EventKind
	Gen    words.Generation
	Name   string
	Format string
	Page   int // page the event refers to, 1-based
	Pages  int // total pages, 0 until known
	Words  int // words installed or appended by this step
	Err    error
}

// Notify receives load events. It may be called from a background
// goroutine.
type Notify func(Event)

// Loader extracts documents into a word store.
type Loader struct {
	store   *words.Store
	formats *Registry
	logger  *log.Logger
}

// NewLoader creates a loader writing into store. A nil registry selects
// DefaultRegistry and a nil logger the default logger.
func NewLoader(store *words.Store, formats *Registry, logger *log.Logger) *Loader {
	if formats == nil {
		formats = DefaultRegistry()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Loader{store: store, formats: formats, logger: logger}
}

// Load opens src and installs its first page into the store under gen. It
// returns once the first page is readable; the remaining pages are appended
// by a background goroutine which stops as soon as ctx is canceled or gen is
// superseded.
func (l *Loader) Load(ctx context.Context, gen words.Generation, src Source, notify Notify) (*Load, error) {
	if notify == nil {
		notify = func(Event) {}
	}
	emit := func(e Event) {
		e.Gen = gen
		e.Name = src.Name
		notify(e)
	}
	fail := func(err error) error {
		emit(Event{Kind: EventFailed, Err: err})
		return err
	}

	emit(Event{Kind: EventOpening})
	format, err := l.formats.Detect(src)
	if err != nil {
		l.logger.Warn("Unsupported file", "name", src.Name, "mime", src.MIME)
		return nil, fail(err)
	}

	doc, err := format.Open(ctx, src)
	if err != nil {
		l.logger.Error("Could not open document", "name", src.Name, "format", format.Name(), "err", err)
		return nil, fail(&Error{Op: "open", Name: src.Name, Err: err})
	}

	pages := doc.NumPages()
	emit(Event{Kind: EventExtractingFast, Format: format.Name(), Page: 1, Pages: pages})

	var first []string
	if pages > 0 {
		first, err = doc.PageWords(ctx, 1)
		if err != nil {
			_ = doc.Close()
			l.logger.Error("Could not parse first page", "name", src.Name, "err", err)
			return nil, fail(&Error{Op: "parse", Name: src.Name, Page: 1, Err: err})
		}
	}

	if err := l.store.Reset(gen, first); err != nil {
		_ = doc.Close()
		l.logger.Debug("Load superseded before first page", "name", src.Name, "gen", gen)
		return nil, err
	}
	l.logger.Debug("First page ready", "name", src.Name, "pages", pages, "words", len(first))
	emit(Event{Kind: EventReady, Format: format.Name(), Page: 1, Pages: pages, Words: len(first)})

	ld := &Load{
		gen:    gen,
		name:   src.Name,
		format: format.Name(),
		pages:  pages,
		doc:    doc,
		store:  l.store,
		logger: l.logger,
		done:   make(chan struct{}),
	}
	ld.Start(ctx, notify)
	return ld, nil
}

// Load is one document load whose first page has been installed.
type Load struct {
	gen    words.Generation
	name   string
	format string
	pages  int
	doc    Document
	store  *words.Store
	logger *log.Logger

	started atomic.Bool
	done    chan struct{}
}

// Generation returns the generation the load writes under.
func (ld *Load) Generation() words.Generation { return ld.gen }

// Pages returns the document page count.
func (ld *Load) Pages() int { return ld.pages }

// Start launches the background phase. Only the first call has an effect;
// it reports whether this call started it.
func (ld *Load) Start(ctx context.Context, notify Notify) bool {
	if !ld.started.CompareAndSwap(false, true) {
		return false
	}
	if notify == nil {
		notify = func(Event) {}
	}
	go ld.background(ctx, notify)
	return true
}

// Done is closed when the background phase has ended for any reason.
func (ld *Load) Done() <-chan struct{} { return ld.done }

// Wait blocks until the background phase has ended.
func (ld *Load) Wait() { <-ld.done }

func (ld *Load) background(ctx context.Context, notify Notify) {
	defer close(ld.done)
	defer ld.doc.Close() //nolint:errcheck

	emit := func(e Event) {
		e.Gen = ld.gen
		e.Name = ld.name
		e.Format = ld.format
		e.Pages = ld.pages
		notify(e)
	}

	for page := 2; page <= ld.pages; page++ {
		if ctx.Err() != nil {
			ld.logger.Debug("Background extraction canceled", "name", ld.name, "page", page)
			return
		}

		emit(Event{Kind: EventPageStarted, Page: page})
		pageWords, err := ld.doc.PageWords(ctx, page)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			// Pages appended so far stay in the store.
			ld.logger.Error("Background extraction failed", "name", ld.name, "page", page, "err", err)
			emit(Event{Kind: EventFailed, Page: page, Err: &Error{Op: "parse", Name: ld.name, Page: page, Err: err}})
			return
		}

		if err := ld.store.Append(ld.gen, pageWords); err != nil {
			if errors.Is(err, words.ErrStale) {
				ld.logger.Debug("Discarding page from superseded load", "name", ld.name, "page", page)
			}
			return
		}
		emit(Event{Kind: EventPageDone, Page: page, Words: len(pageWords)})
	}

	ld.logger.Debug("Document fully parsed", "name", ld.name, "pages", ld.pages)
	emit(Event{Kind: EventComplete, Page: ld.pages})
}
