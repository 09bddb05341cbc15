package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/nguyenthenguyen/docx"
	"golang.org/x/net/html"
)

// DOCXExtractor returns the plain text of a whole DOCX document.
type DOCXExtractor func(data []byte) (string, error)

// DOCXFormat implements Format for Word documents.
type DOCXFormat struct {
	extract DOCXExtractor
}

// NewDOCXFormat returns a DOCX format using extract, or the bundled DOCX
// reader when extract is nil.
func NewDOCXFormat(extract DOCXExtractor) *DOCXFormat {
	if extract == nil {
		extract = ExtractDOCXText
	}
	return &DOCXFormat{extract: extract}
}

func (f *DOCXFormat) Name() string         { return "DOCX" }
func (f *DOCXFormat) Extensions() []string { return []string{".docx"} }
func (f *DOCXFormat) MIMETypes() []string {
	return []string{"application/vnd.openxmlformats-officedocument.wordprocessingml.document"}
}

// Open extracts the document text and splits it into words.
func (f *DOCXFormat) Open(_ context.Context, src Source) (Document, error) {
	text, err := f.extract(src.Data)
	if err != nil {
		return nil, err
	}
	return &wordsDocument{words: Split(text)}, nil
}

// ExtractDOCXText reads the main document part of a DOCX file and reduces
// its markup to plain text.
func ExtractDOCXText(data []byte) (string, error) {
	r, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open docx: %w", err)
	}
	defer r.Close() //nolint:errcheck

	return markupText(r.Editable().GetContent()), nil
}

// markupText keeps the character data of WordprocessingML and turns
// paragraph, tab and break elements into spaces so that words from
// neighbouring paragraphs never run together.
func markupText(markup string) string {
	z := html.NewTokenizer(strings.NewReader(markup))

	var out strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return out.String()
		case html.TextToken:
			out.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "w:p", "w:tab", "w:br", "w:cr":
				out.WriteByte(' ')
			}
		}
	}
}
