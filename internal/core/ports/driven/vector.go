package driven

import (
	"context"

	"github.com/custodia-labs/paperpilot/internal/core/domain"
)

// IndexStore persists the vector index at a well-known location.
// It is single-writer: callers serialise Build against Load and Search.
type IndexStore interface {
	// Build embeds every passage and replaces any existing index with a new
	// generation. The previous index stays readable until the new one is
	// complete; a failed build leaves it untouched.
	Build(ctx context.Context, passages []domain.Passage) (*domain.Index, error)

	// Load returns the current index.
	// Returns domain.ErrIndexNotFound if nothing was built yet.
	Load(ctx context.Context) (*domain.Index, error)

	// Search embeds the query with the build-time model and returns up to k
	// passages by descending similarity.
	Search(ctx context.Context, index *domain.Index, query string, k int) ([]domain.RetrievalHit, error)

	// Status describes the current index without loading vectors.
	// Returns domain.ErrIndexNotFound if nothing was built yet.
	Status(ctx context.Context) (domain.IndexStatus, error)

	// Close releases resources.
	Close() error
}
