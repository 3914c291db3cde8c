package driven

import (
	"context"

	"github.com/custodia-labs/paperpilot/internal/core/domain"
)

// TextExtractor pulls plain text out of a document.
type TextExtractor interface {
	// Extract returns the text of every page in page order.
	// Failures wrap domain.ErrExtraction.
	Extract(ctx context.Context, doc domain.Document) (string, error)

	// Supports reports whether the extractor handles the file name.
	Supports(name string) bool
}
