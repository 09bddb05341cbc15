// Package words holds the flat word sequence of the open document and the
// read cursor used for chunked playback.
package words

import (
	"errors"
	"strings"
	"sync"
)

var (
	// ErrEmpty is returned when a read is attempted on an empty sequence.
	ErrEmpty = errors.New("no words available")

	// ErrStale is returned when a write belongs to a load that has been
	// superseded by a newer one.
	ErrStale = errors.New("write from a superseded load")

	// ErrInvalidChunkSize is returned for chunk sizes below one.
	ErrInvalidChunkSize = errors.New("chunk size must be positive")
)

// Generation identifies one document load. Writes tagged with an older
// generation are discarded.
type Generation uint64

// Store is the single word sequence shared between extraction (writer) and
// playback (reader). It is safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	words  []string
	cursor int
	gen    Generation
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// Begin starts a new load generation. The current words stay readable
// until the new load calls Reset.
func (s *Store) Begin() Generation {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	return s.gen
}

// Generation returns the current load generation.
func (s *Store) Generation() Generation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

// Reset replaces the whole sequence and moves the cursor to 0.
func (s *Store) Reset(gen Generation, words []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return ErrStale
	}
	s.words = append(make([]string, 0, len(words)), words...)
	s.cursor = 0
	return nil
}

// Append grows the tail of the sequence without touching the cursor.
func (s *Store) Append(gen Generation, words []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return ErrStale
	}
	s.words = append(s.words, words...)
	return nil
}

// NextChunk returns up to size words starting at the cursor, joined by
// single spaces, and the new cursor. A read that reaches the end wraps the
// cursor back to 0, so repeated calls loop over the document forever.
func (s *Store) NextChunk(size int) (string, int, error) {
	if size < 1 {
		return "", 0, ErrInvalidChunkSize
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.words)
	if n == 0 {
		return "", s.cursor, ErrEmpty
	}

	start := s.cursor
	if start > n {
		start = n
	}
	end := start + size
	chunk := s.words[start:min(end, n)]

	if end >= n {
		s.cursor = 0
	} else {
		s.cursor = end
	}
	return strings.Join(chunk, " "), s.cursor, nil
}

// FullText returns the whole sequence joined by single spaces.
func (s *Store) FullText() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.words) == 0 {
		return "", ErrEmpty
	}
	return strings.Join(s.words, " "), nil
}

// Len returns the number of stored words.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.words)
}

// Cursor returns the offset the next chunk starts at.
func (s *Store) Cursor() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursor
}

// Words returns a copy of the stored sequence.
func (s *Store) Words() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.words...)
}
