package extract

import (
	"context"
	"strings"
)

// TextFormat implements Format for plain text files.
type TextFormat struct{}

func (TextFormat) Name() string         { return "Text" }
func (TextFormat) Extensions() []string { return []string{".txt"} }
func (TextFormat) MIMETypes() []string  { return []string{"text/plain"} }

// Open splits the whole file into words.
func (TextFormat) Open(_ context.Context, src Source) (Document, error) {
	return &wordsDocument{words: Split(strings.ToValidUTF8(string(src.Data), "\uFFFD"))}, nil
}
