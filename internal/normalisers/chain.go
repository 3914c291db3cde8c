package normalisers

import (
	"context"
	"fmt"

	"github.com/custodia-labs/paperpilot/internal/core/domain"
	"github.com/custodia-labs/paperpilot/internal/core/ports/driven"
)

// Ensure Chain implements the interface.
var _ driven.TextExtractor = (*Chain)(nil)

// Chain dispatches each document to the first extractor that supports it.
type Chain struct {
	extractors []driven.TextExtractor
}

// NewChain creates a chain that tries extractors in order.
func NewChain(extractors ...driven.TextExtractor) *Chain {
	return &Chain{extractors: extractors}
}

// Supports reports whether any extractor handles the file name.
func (c *Chain) Supports(name string) bool {
	return c.find(name) != nil
}

// Extract runs the matching extractor.
func (c *Chain) Extract(ctx context.Context, doc domain.Document) (string, error) {
	e := c.find(doc.Name)
	if e == nil {
		return "", fmt.Errorf("%w: %s: unsupported file type", domain.ErrExtraction, doc.Name)
	}
	return e.Extract(ctx, doc)
}

func (c *Chain) find(name string) driven.TextExtractor {
	for _, e := range c.extractors {
		if e.Supports(name) {
			return e
		}
	}
	return nil
}
