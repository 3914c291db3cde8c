package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/paperpilot/internal/core/domain"
	"github.com/custodia-labs/paperpilot/internal/core/ports/driven"
	"github.com/custodia-labs/paperpilot/internal/core/ports/driving"
	"github.com/custodia-labs/paperpilot/internal/logger"
)

// Ensure IndexingService implements the interface.
var _ driving.IndexingService = (*IndexingService)(nil)

// IndexingService turns documents into a freshly built vector index.
// It never diffs against the previous index; callers decide when to rebuild.
type IndexingService struct {
	extractor driven.TextExtractor
	splitter  driven.Splitter
	index     driven.IndexStore

	// mu serialises rebuilds within the process.
	mu sync.Mutex
}

// NewIndexingService creates a new indexing pipeline.
func NewIndexingService(extractor driven.TextExtractor, splitter driven.Splitter, index driven.IndexStore) *IndexingService {
	return &IndexingService{
		extractor: extractor,
		splitter:  splitter,
		index:     index,
	}
}

// Reindex extracts and chunks every document, then builds the index once.
// A document whose extraction fails is recorded in the report and skipped.
// When no document yields passages the report is returned together with
// domain.ErrNoPassages and the existing index is left untouched.
func (s *IndexingService) Reindex(ctx context.Context, docs []domain.Document) (*domain.IndexReport, error) {
	logger.Section("Reindex")
	defer logger.Timed("reindex")()

	s.mu.Lock()
	defer s.mu.Unlock()

	report := &domain.IndexReport{}
	var passages []domain.Passage

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		text, err := s.extractor.Extract(ctx, doc)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return report, ctxErr
			}
			logger.Warn("Skipping %s: %v", doc.Name, err)
			report.Failed = append(report.Failed, domain.DocumentFailure{Name: doc.Name, Err: err})
			continue
		}

		chunks := s.splitter.Passages(doc.Name, text)
		if len(chunks) == 0 {
			logger.Info("%s: no text extracted", doc.Name)
			report.Empty = append(report.Empty, doc.Name)
			continue
		}

		logger.Info("%s: %d passages (%s)", doc.Name, len(chunks), s.splitter.Name())
		report.Indexed = append(report.Indexed, doc.Name)
		passages = append(passages, chunks...)
	}

	if len(passages) == 0 {
		return report, domain.ErrNoPassages
	}

	ix, err := s.index.Build(ctx, passages)
	if err != nil {
		return report, fmt.Errorf("build index: %w", err)
	}
	report.Status = ix.Status()

	logger.Info("Indexed %d passages from %d documents (generation %s)",
		report.Status.Passages, len(report.Indexed), report.Status.Generation)
	return report, nil
}

// ReindexDir reindexes every supported file directly inside dir.
func (s *IndexingService) ReindexDir(ctx context.Context, dir string) (*domain.IndexReport, error) {
	docs, err := s.Documents(dir)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return &domain.IndexReport{}, fmt.Errorf("%w: no supported documents in %s", domain.ErrNoPassages, dir)
	}
	return s.Reindex(ctx, docs)
}

// Documents lists the supported files directly inside dir, in name order.
func (s *IndexingService) Documents(dir string) ([]domain.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read document directory: %w", err)
	}

	var docs []domain.Document
	for _, entry := range entries {
		if entry.IsDir() || !s.extractor.Supports(entry.Name()) {
			continue
		}
		docs = append(docs, domain.DocumentFromPath(filepath.Join(dir, entry.Name())))
	}
	return docs, nil
}

// Status describes the current index.
func (s *IndexingService) Status(ctx context.Context) (domain.IndexStatus, error) {
	return s.index.Status(ctx)
}

// NeedsReindex reports whether the document names differ from the indexed set.
func (s *IndexingService) NeedsReindex(ctx context.Context, docs []domain.Document) (bool, error) {
	status, err := s.index.Status(ctx)
	if errors.Is(err, domain.ErrIndexNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}

	names := make([]string, 0, len(docs))
	for _, doc := range docs {
		names = append(names, doc.Name)
	}
	return !sameNames(names, status.Documents), nil
}

// sameNames compares two name lists as sets.
func sameNames(a, b []string) bool {
	set := make(map[string]bool, len(a))
	for _, name := range a {
		set[name] = true
	}
	other := make(map[string]bool, len(b))
	for _, name := range b {
		if !set[name] {
			return false
		}
		other[name] = true
	}
	return len(set) == len(other)
}
