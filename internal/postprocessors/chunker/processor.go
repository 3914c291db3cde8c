// Package chunker splits document text into overlapping passages.
package chunker

import (
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/custodia-labs/paperpilot/internal/core/domain"
	"github.com/custodia-labs/paperpilot/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.Splitter = (*Processor)(nil)

// DefaultChunkSize is the default number of characters per passage.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// Processor splits text into passages of at most chunkSize characters.
// Neighbouring passages share exactly overlap characters, so dropping the
// first overlap characters of every passage after the first and joining
// them reproduces the input.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured passage length.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the configured overlap.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Split divides text into passages. Blank text yields none; text that fits
// in one passage is returned whole. Cuts prefer a paragraph break, then a
// sentence end, then whitespace, searched in the last fifth of the window.
func (p *Processor) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	runes := []rune(text)
	n := len(runes)
	if n <= p.chunkSize {
		return []string{text}
	}

	chunks := make([]string, 0, n/(p.chunkSize-p.overlap)+1)
	start := 0
	for {
		if n-start <= p.chunkSize {
			chunks = append(chunks, string(runes[start:]))
			break
		}

		end := p.boundary(runes, start)
		chunks = append(chunks, string(runes[start:end]))
		start = end - p.overlap
	}

	return chunks
}

// Passages splits text and tags every passage with source.
// Positions are local to the document.
func (p *Processor) Passages(source, text string) []domain.Passage {
	chunks := p.Split(text)
	if len(chunks) == 0 {
		return nil
	}

	passages := make([]domain.Passage, 0, len(chunks))
	for i, chunk := range chunks {
		passages = append(passages, domain.Passage{
			ID:       uuid.New().String(),
			Source:   source,
			Text:     chunk,
			Position: i,
		})
	}
	return passages
}

// boundary returns the exclusive end of the passage starting at start.
// The result always lies in (start+overlap, start+chunkSize].
func (p *Processor) boundary(runes []rune, start int) int {
	limit := start + p.chunkSize
	floor := start + max(p.chunkSize*4/5, p.overlap+1)

	// Paragraph break: cut after the blank line.
	for i := limit - 1; i > floor; i-- {
		if runes[i] == '\n' && runes[i-1] == '\n' {
			return i + 1
		}
	}

	// Sentence end: cut after the whitespace following terminal punctuation.
	for i := limit - 1; i > floor; i-- {
		if unicode.IsSpace(runes[i]) && isSentenceEnd(runes[i-1]) {
			return i + 1
		}
	}

	// Word break.
	for i := limit - 1; i >= floor; i-- {
		if unicode.IsSpace(runes[i]) {
			return i + 1
		}
	}

	return limit
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
