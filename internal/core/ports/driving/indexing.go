package driving

import (
	"context"

	"github.com/custodia-labs/paperpilot/internal/core/domain"
)

// IndexingService rebuilds the vector index from a set of documents.
type IndexingService interface {
	// Reindex extracts, chunks and embeds every document and replaces the
	// persisted index. Documents whose extraction fails are reported and
	// skipped. Returns domain.ErrNoPassages when nothing could be indexed.
	Reindex(ctx context.Context, docs []domain.Document) (*domain.IndexReport, error)

	// ReindexDir reindexes every supported file directly inside dir,
	// in name order.
	ReindexDir(ctx context.Context, dir string) (*domain.IndexReport, error)

	// Documents lists the supported files directly inside dir, in name order.
	Documents(dir string) ([]domain.Document, error)

	// Status describes the current index.
	// Returns domain.ErrIndexNotFound if nothing was indexed yet.
	Status(ctx context.Context) (domain.IndexStatus, error)

	// NeedsReindex reports whether the document names differ from those in
	// the current index. A missing index always needs a rebuild.
	NeedsReindex(ctx context.Context, docs []domain.Document) (bool, error)
}
