package tts_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dgnsrekt/readaloud/tts"
	"github.com/dgnsrekt/readaloud/tts/engines/mock"
)

// lifecycle records controller callbacks.
type lifecycle struct {
	mu      sync.Mutex
	events  []string
	errs    []error
	started chan struct{}
	ended   chan struct{}
}

func newLifecycle() *lifecycle {
	return &lifecycle{
		started: make(chan struct{}, 64),
		ended:   make(chan struct{}, 64),
	}
}

func (l *lifecycle) callbacks() tts.Callbacks {
	return tts.Callbacks{
		OnStarted: func() {
			l.record("started")
			signal(l.started)
		},
		OnEnded: func() {
			l.record("ended")
			signal(l.ended)
		},
		OnError: func(err error) {
			l.mu.Lock()
			l.errs = append(l.errs, err)
			l.mu.Unlock()
			l.record("error")
			signal(l.ended)
		},
	}
}

func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

func (l *lifecycle) record(event string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

func (l *lifecycle) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

func wait(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func newController(t *testing.T, delay time.Duration) (*tts.Controller, *mock.MockEngine, *lifecycle) {
	t.Helper()
	engine := mock.New()
	engine.SetDelay(delay)
	c := tts.NewController(engine, nil)
	l := newLifecycle()
	c.SetCallbacks(l.callbacks())
	t.Cleanup(func() { _ = c.Close() })
	return c, engine, l
}

func TestSpeakLifecycle(t *testing.T) {
	c, engine, l := newController(t, 200*time.Millisecond)

	if err := c.Speak("hello world"); err != nil {
		t.Fatalf("Speak() error = %v", err)
	}
	wait(t, l.started, "start")
	if !c.Speaking() || c.State() != tts.Speaking {
		t.Error("controller should be speaking after OnStarted")
	}
	wait(t, l.ended, "end")
	<-c.Done()

	if c.Speaking() {
		t.Error("controller should be silent after OnEnded")
	}
	if got := l.snapshot(); len(got) != 2 || got[0] != "started" || got[1] != "ended" {
		t.Errorf("events = %v, want [started ended]", got)
	}
	if spoken := engine.Spoken(); len(spoken) != 1 || spoken[0].Rate != 1.0 {
		t.Errorf("Spoken() = %+v", spoken)
	}
}

func TestSpeakEmptyIsNoop(t *testing.T) {
	c, engine, l := newController(t, time.Millisecond)

	for _, text := range []string{"", "   ", "\n\t"} {
		if err := c.Speak(text); err != nil {
			t.Errorf("Speak(%q) error = %v", text, err)
		}
	}
	<-c.Done()

	if engine.CallCount() != 0 {
		t.Errorf("engine called %d times for empty text", engine.CallCount())
	}
	if len(l.snapshot()) != 0 {
		t.Errorf("callbacks fired for empty text: %v", l.snapshot())
	}
}

func TestSpeakInterruptsActiveUtterance(t *testing.T) {
	c, engine, l := newController(t, time.Hour)

	if err := c.Speak("first"); err != nil {
		t.Fatal(err)
	}
	wait(t, l.started, "first start")

	if err := c.Speak("second"); err != nil {
		t.Fatal(err)
	}
	wait(t, l.ended, "first end")
	wait(t, l.started, "second start")

	if engine.MaxActive() != 1 {
		t.Errorf("MaxActive() = %d, want 1", engine.MaxActive())
	}
	if engine.Interrupted() != 1 {
		t.Errorf("Interrupted() = %d, want 1", engine.Interrupted())
	}
	got := l.snapshot()
	want := []string{"started", "ended", "started"}
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}
}

func TestRapidSpeakKeepsOneActive(t *testing.T) {
	c, engine, _ := newController(t, time.Hour)

	for i := 0; i < 20; i++ {
		if err := c.Speak("chunk"); err != nil {
			t.Fatal(err)
		}
	}
	c.Stop()

	if engine.MaxActive() != 1 {
		t.Errorf("MaxActive() = %d, want 1", engine.MaxActive())
	}
	if engine.CallCount() != 20 {
		t.Errorf("CallCount() = %d, want 20", engine.CallCount())
	}
}

func TestStopIsIdempotent(t *testing.T) {
	c, _, l := newController(t, time.Hour)

	c.Stop()
	if c.Speaking() {
		t.Error("Stop() on a silent controller should leave it silent")
	}

	if err := c.Speak("words"); err != nil {
		t.Fatal(err)
	}
	wait(t, l.started, "start")

	c.Stop()
	c.Stop()

	if c.Speaking() || c.State() != tts.Silent {
		t.Error("controller should be silent after Stop")
	}
	select {
	case <-c.Done():
	default:
		t.Error("Done() should be closed after Stop")
	}
	if got := l.snapshot(); len(got) != 2 || got[1] != "ended" {
		t.Errorf("events = %v, want [started ended]", got)
	}
}

func TestSpeakEngineFailure(t *testing.T) {
	c, engine, l := newController(t, time.Millisecond)
	engine.SetFailure(errors.New("no voice"))

	if err := c.Speak("words"); err != nil {
		t.Fatal(err)
	}
	wait(t, l.ended, "error")

	if got := l.snapshot(); len(got) != 1 || got[0] != "error" {
		t.Errorf("events = %v, want [error]", got)
	}
	if c.Speaking() {
		t.Error("controller should be silent after an error")
	}
}

func TestRateControl(t *testing.T) {
	c, engine, l := newController(t, time.Millisecond)

	if got := c.FasterRate(); got != 1.25 {
		t.Errorf("FasterRate() = %v, want 1.25", got)
	}
	if err := c.SetRate(3); !errors.Is(err, tts.ErrInvalidRate) {
		t.Errorf("SetRate(3) error = %v, want ErrInvalidRate", err)
	}
	if err := c.SetRate(1.5); err != nil {
		t.Fatal(err)
	}
	if got := c.SlowerRate(); got != 1.25 {
		t.Errorf("SlowerRate() = %v, want 1.25", got)
	}

	if err := c.Speak("at speed"); err != nil {
		t.Fatal(err)
	}
	wait(t, l.ended, "end")

	if spoken := engine.Spoken(); len(spoken) != 1 || spoken[0].Rate != 1.25 {
		t.Errorf("Spoken() = %+v, want rate 1.25", spoken)
	}
}

func TestCloseRejectsSpeak(t *testing.T) {
	c, engine, _ := newController(t, time.Hour)

	if err := c.Speak("words"); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if !engine.Closed() {
		t.Error("Close() should close the engine")
	}
	if err := c.Speak("more"); !errors.Is(err, tts.ErrControllerClosed) {
		t.Errorf("Speak after Close error = %v, want ErrControllerClosed", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
