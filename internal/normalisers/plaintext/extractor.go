// Package plaintext reads papers that are already plain text or Markdown.
package plaintext

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/paperpilot/internal/core/domain"
	"github.com/custodia-labs/paperpilot/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// extensions lists the file types read verbatim.
var extensions = map[string]bool{
	".txt":      true,
	".text":     true,
	".md":       true,
	".markdown": true,
}

// Extractor returns file contents unchanged.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// Supports reports whether the file name is a plain text or Markdown file.
func (e *Extractor) Supports(name string) bool {
	return extensions[strings.ToLower(filepath.Ext(name))]
}

// Extract returns the document text. Invalid UTF-8 is an extraction failure.
func (e *Extractor) Extract(_ context.Context, doc domain.Document) (string, error) {
	if err := doc.Validate(); err != nil {
		return "", err
	}

	data := doc.Data
	if !doc.HasData() {
		var err error
		data, err = os.ReadFile(doc.Path)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %w", domain.ErrExtraction, doc.Name, err)
		}
	}

	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s: not valid UTF-8 text", domain.ErrExtraction, doc.Name)
	}
	return string(data), nil
}
