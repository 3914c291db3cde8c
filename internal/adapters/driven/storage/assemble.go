// Package storage holds helpers shared by the index store implementations.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/paperpilot/internal/core/domain"
	"github.com/custodia-labs/paperpilot/internal/core/ports/driven"
	"github.com/custodia-labs/paperpilot/internal/logger"
)

// AssembleIndex embeds passages and returns a new index generation.
// Positions follow input order and missing passage IDs are assigned.
// Documents lists each source once, in order of first appearance.
func AssembleIndex(ctx context.Context, embedder driven.EmbeddingService, passages []domain.Passage) (*domain.Index, error) {
	if len(passages) == 0 {
		return nil, domain.ErrNoPassages
	}
	for i, p := range passages {
		if p.Source == "" {
			return nil, fmt.Errorf("passage %d has no source: %w", i, domain.ErrInvalidInput)
		}
	}

	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Text
	}

	start := time.Now()
	vectors, err := embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding passages: %w", err)
	}
	if len(vectors) != len(passages) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d passages: %w",
			len(vectors), len(passages), domain.ErrEmbeddingMismatch)
	}
	logger.Debug("Embedded %d passages in %v", len(passages), time.Since(start))

	ix := &domain.Index{
		Generation: uuid.New().String(),
		Model:      embedder.ModelName(),
		Dimensions: embedder.Dimensions(),
		CreatedAt:  time.Now().UTC().Truncate(time.Second),
		Passages:   make([]domain.Passage, len(passages)),
	}
	seen := make(map[string]bool)
	for i, p := range passages {
		if len(vectors[i]) != ix.Dimensions {
			return nil, fmt.Errorf("passage %d has %d dimensions, want %d: %w",
				i, len(vectors[i]), ix.Dimensions, domain.ErrEmbeddingMismatch)
		}
		p.Position = i
		p.Embedding = vectors[i]
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		ix.Passages[i] = p
		if !seen[p.Source] {
			seen[p.Source] = true
			ix.Documents = append(ix.Documents, p.Source)
		}
	}
	return ix, nil
}

// CheckModel rejects an index built with a different embedding model.
func CheckModel(embedder driven.EmbeddingService, model string, dimensions int) error {
	if model != embedder.ModelName() || dimensions != embedder.Dimensions() {
		return fmt.Errorf("index built with %s (%d dims), configured %s (%d dims): %w",
			model, dimensions, embedder.ModelName(), embedder.Dimensions(), domain.ErrEmbeddingMismatch)
	}
	return nil
}

// Search embeds the query and ranks the index against it.
func Search(ctx context.Context, embedder driven.EmbeddingService, index *domain.Index, query string, k int) ([]domain.RetrievalHit, error) {
	if index == nil {
		return nil, domain.ErrIndexNotFound
	}
	if k < 1 {
		return nil, fmt.Errorf("k must be at least 1, got %d: %w", k, domain.ErrInvalidInput)
	}
	if err := CheckModel(embedder, index.Model, index.Dimensions); err != nil {
		return nil, err
	}

	vec, err := embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	return index.Nearest(vec, k)
}
