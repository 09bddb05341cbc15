package extract

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is returned for files that are neither PDF, plain
	// text nor DOCX.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrExtractionFailed is matched by every error raised while opening or
	// parsing a supported file.
	ErrExtractionFailed = errors.New("text extraction failed")
)

// Error describes a failed extraction step.
type Error struct {
	Op   string // "open" or "page"
	Name string // file name
	Page int    // 1-based page, 0 when not page specific
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("%s %s page %d: %v", e.Op, e.Name, e.Page, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Name, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports every Error as an ErrExtractionFailed.
func (e *Error) Is(target error) bool {
	return target == ErrExtractionFailed
}
