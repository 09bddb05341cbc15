// Package extract turns uploaded files into word sequences. PDF files are
// read in two phases: the first page synchronously, the rest in the
// background.
package extract

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
)

// Format defines a file format reader for extracting words.
type Format interface {
	Name() string
	Extensions() []string
	MIMETypes() []string
	Open(ctx context.Context, src Source) (Document, error)
}

// Document is an opened file. Pages are numbered from 1; single-part
// formats report one page.
type Document interface {
	NumPages() int
	PageWords(ctx context.Context, page int) ([]string, error)
	Close() error
}

// Registry maps media types and extensions to formats.
type Registry struct {
	formats []Format
}

// NewRegistry returns a registry holding the given formats.
func NewRegistry(formats ...Format) *Registry {
	return &Registry{formats: formats}
}

// DefaultRegistry returns a registry with the PDF, plain text and DOCX
// formats backed by their real collaborators.
func DefaultRegistry() *Registry {
	return NewRegistry(NewPDFFormat(nil), TextFormat{}, NewDOCXFormat(nil))
}

// Register adds a format. Later registrations do not override earlier ones.
func (r *Registry) Register(f Format) {
	r.formats = append(r.formats, f)
}

// Detect picks the format for src, trying the declared media type first and
// the file extension second.
func (r *Registry) Detect(src Source) (Format, error) {
	if mt, _, err := mime.ParseMediaType(src.MIME); err == nil {
		for _, f := range r.formats {
			for _, m := range f.MIMETypes() {
				if strings.EqualFold(mt, m) {
					return f, nil
				}
			}
		}
	}

	ext := strings.ToLower(filepath.Ext(src.Name))
	if ext != "" {
		for _, f := range r.formats {
			for _, e := range f.Extensions() {
				if ext == e {
					return f, nil
				}
			}
		}
	}

	kind := ext
	if kind == "" {
		kind = src.MIME
	}
	if kind == "" {
		kind = "unknown type"
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, kind)
}

// SupportedFormats returns registered format names with their extensions.
func (r *Registry) SupportedFormats() []string {
	var out []string
	for _, f := range r.formats {
		out = append(out, f.Name()+" ("+strings.Join(f.Extensions(), ", ")+")")
	}
	return out
}

// wordsDocument is a single page document whose words are known up front.
type wordsDocument struct {
	words []string
}

func (d *wordsDocument) NumPages() int { return 1 }

func (d *wordsDocument) PageWords(_ context.Context, page int) ([]string, error) {
	if page != 1 {
		return nil, fmt.Errorf("page %d out of range", page)
	}
	return d.words, nil
}

func (d *wordsDocument) Close() error { return nil }
