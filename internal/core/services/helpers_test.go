package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paperpilot/internal/adapters/driven/config/file"
	"github.com/custodia-labs/paperpilot/internal/adapters/driven/embedding/hashing"
	"github.com/custodia-labs/paperpilot/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/paperpilot/internal/core/domain"
	"github.com/custodia-labs/paperpilot/internal/core/ports/driven"
	"github.com/custodia-labs/paperpilot/internal/postprocessors/chunker"
)

// --- Test doubles ---

// fakeGenerator records prompts and replies from a script.
type fakeGenerator struct {
	mu      sync.Mutex
	prompts []string
	reply   func(prompt string) (string, error)
}

func newFakeGenerator(reply string) *fakeGenerator {
	return &fakeGenerator{reply: func(string) (string, error) { return reply, nil }}
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	g.prompts = append(g.prompts, prompt)
	g.mu.Unlock()
	return g.reply(prompt)
}

func (g *fakeGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

func (g *fakeGenerator) lastPrompt() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.prompts) == 0 {
		return ""
	}
	return g.prompts[len(g.prompts)-1]
}

func (g *fakeGenerator) ModelName() string            { return "fake" }
func (g *fakeGenerator) Ping(_ context.Context) error { return nil }
func (g *fakeGenerator) Close() error                 { return nil }

// fakeExtractor serves document text from a map keyed by name.
type fakeExtractor struct {
	texts map[string]string
	fail  map[string]bool
}

func (e *fakeExtractor) Extract(_ context.Context, doc domain.Document) (string, error) {
	if e.fail[doc.Name] {
		return "", fmt.Errorf("%w: %s: corrupt file", domain.ErrExtraction, doc.Name)
	}
	text, ok := e.texts[doc.Name]
	if !ok {
		return "", fmt.Errorf("%w: %s: unknown document", domain.ErrExtraction, doc.Name)
	}
	return text, nil
}

func (e *fakeExtractor) Supports(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".pdf")
}

var _ driven.TextExtractor = (*fakeExtractor)(nil)

// --- Fixtures ---

const (
	doc1Text = "The transformer model was trained on dataset X, and the dataset was used for every experiment."
	doc2Text = "Evaluation reports BLEU and ROUGE scores against reference summaries."
)

type fixture struct {
	index     *memory.IndexStore
	extractor *fakeExtractor
	generator *fakeGenerator
	prompts   *file.PromptStore
	indexing  *IndexingService
	qa        *QAService
}

func newFixture(t *testing.T, k int) *fixture {
	t.Helper()

	f := &fixture{
		index: memory.NewIndexStore(hashing.NewEmbeddingService(hashing.Config{Dimensions: 384})),
		extractor: &fakeExtractor{
			texts: map[string]string{"doc1.pdf": doc1Text, "doc2.pdf": doc2Text},
			fail:  map[string]bool{},
		},
		generator: newFakeGenerator("Dataset X was used [doc1.pdf]."),
		prompts:   newPromptStore(t),
	}
	f.indexing = NewIndexingService(f.extractor, chunker.New(), f.index)
	f.qa = NewQAService(f.index, f.generator, f.prompts, k)
	return f
}

func newPromptStore(t *testing.T) *file.PromptStore {
	t.Helper()
	store, err := file.NewPromptStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func docs(names ...string) []domain.Document {
	out := make([]domain.Document, 0, len(names))
	for _, name := range names {
		out = append(out, domain.Document{Name: name, Path: "/papers/" + name})
	}
	return out
}

func (f *fixture) reindex(t *testing.T, names ...string) *domain.IndexReport {
	t.Helper()
	report, err := f.indexing.Reindex(context.Background(), docs(names...))
	require.NoError(t, err)
	return report
}
