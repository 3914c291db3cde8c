package domain

import (
	"path/filepath"
	"strings"
)

// Document is a source paper supplied for indexing.
// Documents are ephemeral: only the passages derived from them persist.
type Document struct {
	// Name identifies the document in source attributions (usually the file name).
	Name string

	// Path is the file location. Empty when Data is supplied instead.
	Path string

	// Data holds the raw file bytes for uploads that never touched disk.
	Data []byte
}

// DocumentFromPath builds a Document named after the file's base name.
func DocumentFromPath(path string) Document {
	return Document{Name: filepath.Base(path), Path: path}
}

// HasData returns true if the document carries in-memory bytes.
func (d Document) HasData() bool {
	return len(d.Data) > 0
}

// Validate checks the document can be extracted and attributed.
func (d Document) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrInvalidInput
	}
	if d.Path == "" && !d.HasData() {
		return ErrInvalidInput
	}
	return nil
}

// Passage is a contiguous slice of a document's text.
// Passages are immutable once stored in an index.
type Passage struct {
	// ID is the unique identifier for the passage.
	ID string

	// Source is the name of the document the passage came from. Never empty.
	Source string

	// Text is the passage content.
	Text string

	// Position is the insertion order within the index.
	// Earlier positions win similarity ties.
	Position int

	// Embedding is the vector representation used for similarity search.
	Embedding []float32
}

// DocumentFailure records a document that could not be indexed.
type DocumentFailure struct {
	// Name is the document name.
	Name string

	// Err is the reason the document was skipped.
	Err error
}

// IndexReport summarises one reindex run.
type IndexReport struct {
	// Status describes the newly built index.
	Status IndexStatus

	// Indexed lists documents that contributed passages, in input order.
	Indexed []string

	// Failed lists documents whose extraction failed.
	Failed []DocumentFailure

	// Empty lists documents that yielded no text.
	Empty []string
}
