package driving

import (
	"context"

	"github.com/custodia-labs/paperpilot/internal/core/domain"
)

// QAService answers questions grounded in the indexed papers.
type QAService interface {
	// Answer retrieves the top passages for the question and returns the
	// model's grounded answer verbatim.
	// Returns domain.ErrIndexNotFound if nothing was indexed yet.
	Answer(ctx context.Context, question string) (string, error)

	// AnswerWithSources behaves like Answer and also returns the passages
	// supplied to the model.
	AnswerWithSources(ctx context.Context, question string) (*domain.Answer, error)

	// Search returns the k passages most similar to the query without
	// calling the model. k < 1 uses the service default.
	Search(ctx context.Context, query string, k int) ([]domain.RetrievalHit, error)
}
