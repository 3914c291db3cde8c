package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/paperpilot/internal/core/domain"
	"github.com/custodia-labs/paperpilot/internal/core/ports/driven"
	"github.com/custodia-labs/paperpilot/internal/core/ports/driving"
	"github.com/custodia-labs/paperpilot/internal/logger"
)

// Ensure QAService implements the interface.
var _ driving.QAService = (*QAService)(nil)

// QAService answers questions from the indexed passages.
// It holds no state between questions beyond what the index store caches.
type QAService struct {
	index     driven.IndexStore
	generator driven.Generator
	prompts   driven.PromptStore
	k         int
}

// NewQAService creates a QA service retrieving k passages per question.
// k < 1 uses domain.DefaultRetrievalK.
func NewQAService(
	index driven.IndexStore,
	generator driven.Generator,
	prompts driven.PromptStore,
	k int,
) *QAService {
	if k < 1 {
		k = domain.DefaultRetrievalK
	}
	return &QAService{
		index:     index,
		generator: generator,
		prompts:   prompts,
		k:         k,
	}
}

// K returns the number of passages retrieved per question.
func (s *QAService) K() int {
	return s.k
}

// Answer returns the model's grounded answer verbatim.
func (s *QAService) Answer(ctx context.Context, question string) (string, error) {
	answer, err := s.AnswerWithSources(ctx, question)
	if err != nil {
		return "", err
	}
	return answer.Text, nil
}

// AnswerWithSources loads the index, retrieves the top passages, composes
// the grounded prompt and delegates to the generator.
func (s *QAService) AnswerWithSources(ctx context.Context, question string) (*domain.Answer, error) {
	logger.Section("Answer")

	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}
	if s.generator == nil {
		return nil, domain.ErrLLMUnavailable
	}

	hits, err := s.retrieve(ctx, question, s.k)
	if err != nil {
		return nil, err
	}

	prompt, err := s.compose(hits, question)
	if err != nil {
		return nil, err
	}
	logger.Debug("Prompt: %d characters, %d passages", len(prompt), len(hits))

	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return &domain.Answer{
		Question: question,
		Text:     text,
		Sources:  hits,
	}, nil
}

// Search returns the passages most similar to query without calling the model.
func (s *QAService) Search(ctx context.Context, query string, k int) ([]domain.RetrievalHit, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	if k < 1 {
		k = s.k
	}
	return s.retrieve(ctx, query, k)
}

func (s *QAService) retrieve(ctx context.Context, query string, k int) ([]domain.RetrievalHit, error) {
	ix, err := s.index.Load(ctx)
	if err != nil {
		return nil, err
	}

	hits, err := s.index.Search(ctx, ix, query, k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	for _, hit := range hits {
		logger.Debug("Hit: [%s] score=%.4f position=%d", hit.Passage.Source, hit.Score, hit.Passage.Position)
	}
	return hits, nil
}

// compose renders the answer prompt: attributed context, then the question verbatim.
func (s *QAService) compose(hits []domain.RetrievalHit, question string) (string, error) {
	template, err := s.prompts.Load(driven.PromptAnswer)
	if err != nil {
		return "", fmt.Errorf("load answer prompt: %w", err)
	}
	return fmt.Sprintf(template, domain.FormatContext(hits), question), nil
}
