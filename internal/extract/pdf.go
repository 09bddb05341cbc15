package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Pages is the PDF collaborator: a page count and, per page, the text
// fragments of that page in layout order.
type Pages interface {
	NumPages() int
	Fragments(page int) ([]string, error)
}

// PDFOpener parses raw PDF bytes.
type PDFOpener func(data []byte) (Pages, error)

// PDFFormat implements Format for PDF files.
type PDFFormat struct {
	open PDFOpener
}

// NewPDFFormat returns a PDF format using open, or the bundled PDF reader
// when open is nil.
func NewPDFFormat(open PDFOpener) *PDFFormat {
	if open == nil {
		open = OpenPDF
	}
	return &PDFFormat{open: open}
}

func (f *PDFFormat) Name() string         { return "PDF" }
func (f *PDFFormat) Extensions() []string { return []string{".pdf"} }
func (f *PDFFormat) MIMETypes() []string  { return []string{"application/pdf"} }

// Open parses the document structure. Page text is read lazily.
func (f *PDFFormat) Open(_ context.Context, src Source) (Document, error) {
	pages, err := f.open(src.Data)
	if err != nil {
		return nil, err
	}
	return &pdfDocument{pages: pages}, nil
}

type pdfDocument struct {
	pages Pages
}

func (d *pdfDocument) NumPages() int { return d.pages.NumPages() }

func (d *pdfDocument) PageWords(ctx context.Context, page int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fragments, err := d.pages.Fragments(page)
	if err != nil {
		return nil, err
	}
	return Split(fragments...), nil
}

func (d *pdfDocument) Close() error { return nil }

// ledongthucPages adapts github.com/ledongthuc/pdf to Pages.
type ledongthucPages struct {
	reader *pdf.Reader
}

// OpenPDF parses data with github.com/ledongthuc/pdf. The library panics on
// some malformed files; those panics come back as errors.
func OpenPDF(data []byte) (p Pages, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	return &ledongthucPages{reader: reader}, nil
}

func (p *ledongthucPages) NumPages() int {
	return p.reader.NumPage()
}

// Fragments returns the page's text line by line.
func (p *ledongthucPages) Fragments(page int) (fragments []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed page: %v", r)
		}
	}()

	pg := p.reader.Page(page)
	if pg.V.IsNull() {
		return nil, nil
	}
	text, err := pg.GetPlainText(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read page text: %w", err)
	}
	return strings.Split(text, "\n"), nil
}
