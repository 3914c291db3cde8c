package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/paperpilot/internal/adapters/driven/storage"
	"github.com/custodia-labs/paperpilot/internal/core/domain"
	"github.com/custodia-labs/paperpilot/internal/core/ports/driven"
)

// Ensure IndexStore implements the interface.
var _ driven.IndexStore = (*IndexStore)(nil)

// IndexStore keeps the current index generation in memory.
type IndexStore struct {
	embedder driven.EmbeddingService

	mu      sync.RWMutex
	current *domain.Index
	builds  int
}

// NewIndexStore creates an empty in-memory index store.
func NewIndexStore(embedder driven.EmbeddingService) *IndexStore {
	return &IndexStore{embedder: embedder}
}

// Build embeds the passages and replaces the current index.
func (s *IndexStore) Build(ctx context.Context, passages []domain.Passage) (*domain.Index, error) {
	ix, err := storage.AssembleIndex(ctx, s.embedder, passages)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.current = ix
	s.builds++
	s.mu.Unlock()
	return ix, nil
}

// Load returns the current index.
func (s *IndexStore) Load(_ context.Context) (*domain.Index, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, domain.ErrIndexNotFound
	}
	return s.current, nil
}

// Search embeds the query and returns the k nearest passages.
func (s *IndexStore) Search(ctx context.Context, index *domain.Index, query string, k int) ([]domain.RetrievalHit, error) {
	return storage.Search(ctx, s.embedder, index, query, k)
}

// Status describes the current index.
func (s *IndexStore) Status(_ context.Context) (domain.IndexStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return domain.IndexStatus{}, domain.ErrIndexNotFound
	}
	return s.current.Status(), nil
}

// Builds returns how many times Build succeeded.
func (s *IndexStore) Builds() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.builds
}

// Close drops the index.
func (s *IndexStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	return nil
}
