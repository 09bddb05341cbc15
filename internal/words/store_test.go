package words

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
)

func letters(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = string(rune('a' + i))
	}
	return out
}

func newStore(t *testing.T, words []string) (*Store, Generation) {
	t.Helper()
	s := New()
	gen := s.Begin()
	if err := s.Reset(gen, words); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	return s, gen
}

func TestNextChunkLargerThanSequence(t *testing.T) {
	s, _ := newStore(t, letters(5))

	chunk, cursor, err := s.NextChunk(10)
	if err != nil {
		t.Fatalf("NextChunk failed: %v", err)
	}
	if chunk != "a b c d e" {
		t.Errorf("Expected %q, got %q", "a b c d e", chunk)
	}
	if cursor != 0 {
		t.Errorf("Expected cursor to wrap to 0, got %d", cursor)
	}
}

func TestNextChunkExactLengthRepeats(t *testing.T) {
	s, _ := newStore(t, letters(10))

	first, _, err := s.NextChunk(10)
	if err != nil {
		t.Fatalf("NextChunk failed: %v", err)
	}
	second, _, err := s.NextChunk(10)
	if err != nil {
		t.Fatalf("NextChunk failed: %v", err)
	}
	want := "a b c d e f g h i j"
	if first != want || second != want {
		t.Errorf("Expected both chunks to be %q, got %q and %q", want, first, second)
	}
}

func TestNextChunkCircularity(t *testing.T) {
	tests := []struct {
		length int
		size   int
	}{
		{1, 1},
		{7, 3},
		{10, 10},
		{23, 10},
		{30, 10},
		{4, 9},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("L%d_K%d", tt.length, tt.size), func(t *testing.T) {
			seq := make([]string, tt.length)
			for i := range seq {
				seq[i] = fmt.Sprintf("w%d", i)
			}
			s, _ := newStore(t, seq)

			calls := (tt.length + tt.size - 1) / tt.size
			var lap []string
			for i := 0; i < calls; i++ {
				chunk, _, err := s.NextChunk(tt.size)
				if err != nil {
					t.Fatalf("NextChunk failed: %v", err)
				}
				lap = append(lap, strings.Fields(chunk)...)
			}
			if strings.Join(lap, " ") != strings.Join(seq, " ") {
				t.Fatalf("One lap should visit every word once, got %v", lap)
			}
			if s.Cursor() != 0 {
				t.Fatalf("Cursor should be back at 0 after a lap, got %d", s.Cursor())
			}

			var again []string
			for i := 0; i < calls; i++ {
				chunk, _, _ := s.NextChunk(tt.size)
				again = append(again, strings.Fields(chunk)...)
			}
			if strings.Join(again, " ") != strings.Join(lap, " ") {
				t.Errorf("Second lap differs: %v vs %v", again, lap)
			}
		})
	}
}

func TestResetZeroesCursor(t *testing.T) {
	s, gen := newStore(t, letters(20))
	if _, _, err := s.NextChunk(10); err != nil {
		t.Fatalf("NextChunk failed: %v", err)
	}
	if s.Cursor() != 10 {
		t.Fatalf("Expected cursor 10, got %d", s.Cursor())
	}

	if err := s.Reset(gen, letters(3)); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if s.Cursor() != 0 {
		t.Errorf("Reset should zero the cursor, got %d", s.Cursor())
	}
	if s.Len() != 3 {
		t.Errorf("Expected 3 words, got %d", s.Len())
	}
}

func TestAppendKeepsCursor(t *testing.T) {
	s, gen := newStore(t, letters(15))
	if _, _, err := s.NextChunk(10); err != nil {
		t.Fatalf("NextChunk failed: %v", err)
	}

	if err := s.Append(gen, []string{"x", "y"}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if s.Cursor() != 10 {
		t.Errorf("Append should not move the cursor, got %d", s.Cursor())
	}
}

func TestAppendGrowsWrappedLap(t *testing.T) {
	s, gen := newStore(t, letters(5))

	if _, cursor, _ := s.NextChunk(10); cursor != 0 {
		t.Fatalf("Expected wrap, got cursor %d", cursor)
	}
	if err := s.Append(gen, []string{"f", "g"}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	chunk, _, err := s.NextChunk(10)
	if err != nil {
		t.Fatalf("NextChunk failed: %v", err)
	}
	if chunk != "a b c d e f g" {
		t.Errorf("The next lap should see the appended tail, got %q", chunk)
	}
}

func TestFullTextConcatenation(t *testing.T) {
	s, gen := newStore(t, []string{"one", "two"})
	for _, page := range [][]string{{"three"}, {"four", "five"}, {}} {
		if err := s.Append(gen, page); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	text, err := s.FullText()
	if err != nil {
		t.Fatalf("FullText failed: %v", err)
	}
	if text != "one two three four five" {
		t.Errorf("Unexpected full text %q", text)
	}
}

func TestEmptyStore(t *testing.T) {
	s := New()

	if _, _, err := s.NextChunk(10); !errors.Is(err, ErrEmpty) {
		t.Errorf("Expected ErrEmpty from NextChunk, got %v", err)
	}
	if _, err := s.FullText(); !errors.Is(err, ErrEmpty) {
		t.Errorf("Expected ErrEmpty from FullText, got %v", err)
	}
}

func TestInvalidChunkSize(t *testing.T) {
	s, _ := newStore(t, letters(3))
	if _, _, err := s.NextChunk(0); !errors.Is(err, ErrInvalidChunkSize) {
		t.Errorf("Expected ErrInvalidChunkSize, got %v", err)
	}
}

func TestStaleWritesRejected(t *testing.T) {
	s, old := newStore(t, []string{"old"})

	next := s.Begin()
	if err := s.Append(old, []string{"stale"}); !errors.Is(err, ErrStale) {
		t.Errorf("Expected ErrStale for append, got %v", err)
	}
	if err := s.Reset(old, []string{"stale"}); !errors.Is(err, ErrStale) {
		t.Errorf("Expected ErrStale for reset, got %v", err)
	}

	// Previous words stay readable until the new load installs its own.
	if text, _ := s.FullText(); text != "old" {
		t.Errorf("Expected old words to remain, got %q", text)
	}

	if err := s.Reset(next, []string{"new"}); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	_ = s.Append(old, []string{"stale"})
	if text, _ := s.FullText(); text != "new" {
		t.Errorf("Stale words leaked into the new sequence: %q", text)
	}
}

func TestConcurrentAppendAndRead(t *testing.T) {
	s, gen := newStore(t, letters(10))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_ = s.Append(gen, []string{"p"})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			if _, cursor, err := s.NextChunk(10); err != nil || cursor < 0 {
				t.Errorf("NextChunk returned cursor %d, err %v", cursor, err)
				return
			}
		}
	}()
	wg.Wait()

	if s.Len() != 210 {
		t.Errorf("Expected 210 words, got %d", s.Len())
	}
	if c := s.Cursor(); c < 0 || c > s.Len() {
		t.Errorf("Cursor out of range: %d", c)
	}
}
