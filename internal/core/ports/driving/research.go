package driving

import (
	"context"

	"github.com/custodia-labs/paperpilot/internal/core/domain"
)

// ResearchService runs single-shot prompt helpers over paper text.
// Each helper goes through the shared retrying generator.
type ResearchService interface {
	// PaperText extracts the full text of one document.
	PaperText(ctx context.Context, doc domain.Document) (string, error)

	// CombinedText extracts every document and joins the texts.
	CombinedText(ctx context.Context, docs []domain.Document) (string, error)

	// CompareMethods compares the methodology of two or more papers.
	CompareMethods(ctx context.Context, docs []domain.Document) (string, error)

	// LiteratureReview writes a review over the combined text of the papers.
	LiteratureReview(ctx context.Context, text string) (string, error)

	// ExtractDatasetsMetrics lists datasets and evaluation metrics as tables.
	ExtractDatasetsMetrics(ctx context.Context, text string) (string, error)

	// SuggestQuestions proposes up to n research questions.
	SuggestQuestions(ctx context.Context, text string, n int) ([]string, error)
}
