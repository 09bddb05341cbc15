package extract

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// Source is one uploaded file.
type Source struct {
	Name string // file name, used for extension based detection
	MIME string // declared media type, may be empty
	Data []byte
}

// ReadFile loads a file from disk and infers its media type from the
// extension.
func ReadFile(path string) (Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Source{}, fmt.Errorf("unable to read file: %w", err)
	}
	return Source{
		Name: filepath.Base(path),
		MIME: mime.TypeByExtension(strings.ToLower(filepath.Ext(path))),
		Data: data,
	}, nil
}

// Split breaks text fragments into words on runs of whitespace. A single
// fragment may hold several words; empty tokens are dropped.
func Split(fragments ...string) []string {
	var out []string
	for _, f := range fragments {
		out = append(out, strings.Fields(f)...)
	}
	return out
}
