package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
)

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>%s</w:body>
</w:document>`

func buildDOCX(t *testing.T, body string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := map[string]string{
		"word/document.xml": fmt.Sprintf(documentXML, body),
		"word/_rels/document.xml.rels": `<?xml version="1.0" encoding="UTF-8"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`,
	}
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDOCXMultipleSpaces(t *testing.T) {
	data := buildDOCX(t, `<w:p><w:r><w:t xml:space="preserve">Hello   world</w:t></w:r></w:p>`)

	doc, err := NewDOCXFormat(nil).Open(context.Background(), Source{Name: "hello.docx", Data: data})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	got, err := doc.PageWords(context.Background(), 1)
	if err != nil {
		t.Fatalf("PageWords failed: %v", err)
	}
	if want := []string{"Hello", "world"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestDOCXParagraphsAndRuns(t *testing.T) {
	body := `<w:p><w:r><w:t>First</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>sec</w:t></w:r><w:r><w:t>ond</w:t></w:r><w:r><w:tab/><w:t>tab&amp;bed</w:t></w:r></w:p>`
	text, err := ExtractDOCXText(buildDOCX(t, body))
	if err != nil {
		t.Fatalf("ExtractDOCXText failed: %v", err)
	}

	got := Split(text)
	want := []string{"First", "second", "tab&bed"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestDOCXInvalidArchive(t *testing.T) {
	_, err := ExtractDOCXText([]byte("not a zip"))
	if err == nil {
		t.Fatal("Expected an error for invalid data")
	}
}

func TestDOCXCustomExtractor(t *testing.T) {
	boom := errors.New("boom")
	f := NewDOCXFormat(func([]byte) (string, error) { return "", boom })
	if _, err := f.Open(context.Background(), Source{Name: "x.docx"}); !errors.Is(err, boom) {
		t.Errorf("Expected extractor error, got %v", err)
	}
}
