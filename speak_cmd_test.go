package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dgnsrekt/readaloud/internal/extract"
	"github.com/dgnsrekt/readaloud/internal/session"
	"github.com/dgnsrekt/readaloud/tts"
	"github.com/dgnsrekt/readaloud/tts/engines/mock"
)

func newMockReader(t *testing.T, text string) (*session.Session, *tts.Controller, *mock.MockEngine) {
	t.Helper()
	engine := mock.New()
	engine.SetDelay(5 * time.Millisecond)
	ctrl := tts.NewController(engine, nil)
	sess := session.New(ctrl, nil, nil)
	t.Cleanup(func() {
		_ = sess.Close()
		_ = ctrl.Close()
	})

	if err := sess.Open(context.Background(), extract.Source{Name: "doc.txt", Data: []byte(text)}); err != nil {
		t.Fatal(err)
	}
	sess.Wait()
	return sess, ctrl, engine
}

func TestSpeakChunks(t *testing.T) {
	words := make([]string, 23)
	for i := range words {
		words[i] = "w"
	}
	sess, ctrl, engine := newMockReader(t, strings.Join(words, " "))

	var out bytes.Buffer
	if err := speakChunks(context.Background(), sess, ctrl, &out); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Errorf("printed %d chunks, want 3:\n%s", len(lines), out.String())
	}
	if n := len(engine.Spoken()); n != 3 {
		t.Errorf("spoke %d chunks, want 3", n)
	}
	if engine.Interrupted() != 0 {
		t.Errorf("chunks interrupted each other %d times", engine.Interrupted())
	}
}

func TestSpeakAll(t *testing.T) {
	sess, ctrl, engine := newMockReader(t, "hello   out there")

	var out bytes.Buffer
	if err := speakAll(context.Background(), sess, ctrl, &out); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(out.String()); got != "hello out there" {
		t.Errorf("printed %q", got)
	}
	spoken := engine.Spoken()
	if len(spoken) != 1 || spoken[0].Text != "hello out there" {
		t.Errorf("spoken = %+v", spoken)
	}
}

func TestSpeakCanceled(t *testing.T) {
	sess, ctrl, engine := newMockReader(t, "a b c")
	engine.SetDelay(time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := speakAll(ctx, sess, ctrl, &bytes.Buffer{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("speakAll() error = %v, want DeadlineExceeded", err)
	}
	if ctrl.Speaking() {
		t.Error("still speaking after cancel")
	}
}

func TestSpeakEngineFailure(t *testing.T) {
	sess, ctrl, engine := newMockReader(t, "a b c")
	engine.SetFailure(tts.ErrSynthesisFailed)

	err := speakAll(context.Background(), sess, ctrl, &bytes.Buffer{})
	if !errors.Is(err, tts.ErrSynthesisFailed) {
		t.Errorf("speakAll() error = %v, want ErrSynthesisFailed", err)
	}
}
