package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDetect(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		name    string
		src     Source
		want    string
		wantErr error
	}{
		{"pdf mime", Source{Name: "upload", MIME: "application/pdf"}, "PDF", nil},
		{"text mime with charset", Source{Name: "upload", MIME: "text/plain; charset=utf-8"}, "Text", nil},
		{"docx mime", Source{Name: "upload", MIME: "application/vnd.openxmlformats-officedocument.wordprocessingml.document"}, "DOCX", nil},
		{"pdf extension", Source{Name: "report.PDF"}, "PDF", nil},
		{"txt extension", Source{Name: "notes.txt"}, "Text", nil},
		{"docx extension", Source{Name: "letter.docx"}, "DOCX", nil},
		{"extension when mime is generic", Source{Name: "letter.docx", MIME: "application/octet-stream"}, "DOCX", nil},
		{"mime wins over extension", Source{Name: "scan.txt", MIME: "application/pdf"}, "PDF", nil},
		{"epub", Source{Name: "book.epub", MIME: "application/epub+zip"}, "", ErrUnsupportedFormat},
		{"doc", Source{Name: "old.doc"}, "", ErrUnsupportedFormat},
		{"no hints", Source{Name: "blob"}, "", ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := r.Detect(tt.src)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Detect failed: %v", err)
			}
			if f.Name() != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, f.Name())
			}
		})
	}
}

func TestSupportedFormats(t *testing.T) {
	got := DefaultRegistry().SupportedFormats()
	want := []string{"PDF (.pdf)", "Text (.txt)", "DOCX (.docx)"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name      string
		fragments []string
		want      []string
	}{
		{"single spaces", []string{"a b c"}, []string{"a", "b", "c"}},
		{"runs of whitespace", []string{"  Hello \t\n world  "}, []string{"Hello", "world"}},
		{"empty fragments", []string{"", "   ", "x"}, []string{"x"}},
		{"fragments are not joined", []string{"Hel", "lo"}, []string{"Hel", "lo"}},
		{"no input", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Split(tt.fragments...)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
			for _, w := range got {
				if w == "" {
					t.Error("Split returned an empty token")
				}
			}
		})
	}
}

func TestTextFormat(t *testing.T) {
	doc, err := TextFormat{}.Open(context.Background(), Source{Name: "a.txt", Data: []byte("one  two\nthree\t four")})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer doc.Close() //nolint:errcheck

	if doc.NumPages() != 1 {
		t.Errorf("Expected 1 page, got %d", doc.NumPages())
	}
	got, err := doc.PageWords(context.Background(), 1)
	if err != nil {
		t.Fatalf("PageWords failed: %v", err)
	}
	want := []string{"one", "two", "three", "four"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %q, got %q", want, got)
	}
	if _, err := doc.PageWords(context.Background(), 2); err == nil {
		t.Error("Expected an error for page 2")
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("hi"), 0o600); err != nil {
		t.Fatal(err)
	}

	src, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if src.Name != "notes.txt" || string(src.Data) != "hi" {
		t.Errorf("Unexpected source %+v", src)
	}
	if _, err := DefaultRegistry().Detect(src); err != nil {
		t.Errorf("Detect failed: %v", err)
	}

	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("Expected an error for a missing file")
	}
}
