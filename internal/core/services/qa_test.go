package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paperpilot/internal/core/domain"
)

func TestNewQAService_DefaultK(t *testing.T) {
	f := newFixture(t, 0)
	assert.Equal(t, domain.DefaultRetrievalK, f.qa.K())

	f = newFixture(t, 7)
	assert.Equal(t, 7, f.qa.K())
}

func TestQAService_AnswerBeforeIndex(t *testing.T) {
	f := newFixture(t, 4)

	_, err := f.qa.Answer(context.Background(), "What dataset was used?")

	require.ErrorIs(t, err, domain.ErrIndexNotFound)
	assert.Equal(t, domain.GuidanceNoIndex, domain.Guidance(err))
	assert.Equal(t, 0, f.generator.calls())
}

func TestQAService_EndToEnd(t *testing.T) {
	f := newFixture(t, 1)
	f.reindex(t, "doc1.pdf", "doc2.pdf")

	answer, err := f.qa.AnswerWithSources(context.Background(), "What dataset was used?")
	require.NoError(t, err)

	assert.Equal(t, "Dataset X was used [doc1.pdf].", answer.Text)
	require.Len(t, answer.Sources, 1)
	assert.Equal(t, "doc1.pdf", answer.Sources[0].Passage.Source)
	assert.Equal(t, []string{"doc1.pdf"}, answer.SourceNames())

	prompt := f.generator.lastPrompt()
	assert.Contains(t, prompt, "[doc1.pdf]\n"+doc1Text)
	assert.NotContains(t, prompt, "doc2.pdf")
	assert.Contains(t, prompt, "Question: What dataset was used?")
	assert.Contains(t, prompt, "Cite sources like [filename.pdf]")
}

func TestQAService_AnswerReturnsModelTextVerbatim(t *testing.T) {
	f := newFixture(t, 4)
	f.generator = newFakeGenerator("  spaced\n\nanswer  ")
	f.qa = NewQAService(f.index, f.generator, f.prompts, 4)
	f.reindex(t, "doc1.pdf")

	text, err := f.qa.Answer(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, "  spaced\n\nanswer  ", text)
}

func TestQAService_ContextBlocksInRetrievalOrder(t *testing.T) {
	f := newFixture(t, 2)
	f.reindex(t, "doc1.pdf", "doc2.pdf")

	answer, err := f.qa.AnswerWithSources(context.Background(), "BLEU and ROUGE scores")
	require.NoError(t, err)
	require.Len(t, answer.Sources, 2)
	assert.Equal(t, "doc2.pdf", answer.Sources[0].Passage.Source)

	prompt := f.generator.lastPrompt()
	first := strings.Index(prompt, "[doc2.pdf]")
	second := strings.Index(prompt, "[doc1.pdf]")
	require.NotEqual(t, -1, first)
	require.NotEqual(t, -1, second)
	assert.Less(t, first, second)
	assert.Contains(t, prompt, "[doc2.pdf]\n"+doc2Text+"\n\n[doc1.pdf]\n"+doc1Text)
}

func TestQAService_PropagatesGenerationFailure(t *testing.T) {
	f := newFixture(t, 4)
	exhausted := &domain.GenerationError{
		Kind:      domain.FailureOverloaded,
		Attempts:  3,
		Exhausted: true,
		Err:       fmt.Errorf("503"),
	}
	f.generator.reply = func(string) (string, error) { return "", exhausted }
	f.reindex(t, "doc1.pdf")

	_, err := f.qa.Answer(context.Background(), "What dataset was used?")
	require.ErrorIs(t, err, domain.ErrOverloaded)
	assert.Equal(t, domain.GuidanceTransient, domain.Guidance(err))
}

func TestQAService_RejectsEmptyQuestion(t *testing.T) {
	f := newFixture(t, 4)
	f.reindex(t, "doc1.pdf")

	_, err := f.qa.Answer(context.Background(), "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 0, f.generator.calls())
}

func TestQAService_NoGenerator(t *testing.T) {
	f := newFixture(t, 4)
	f.reindex(t, "doc1.pdf")
	qa := NewQAService(f.index, nil, f.prompts, 4)

	_, err := qa.Answer(context.Background(), "question")
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)

	// Search works without a model.
	hits, err := qa.Search(context.Background(), "dataset", 0)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestQAService_Search(t *testing.T) {
	f := newFixture(t, 1)
	f.reindex(t, "doc1.pdf", "doc2.pdf")
	ctx := context.Background()

	hits, err := f.qa.Search(ctx, "dataset", 0)
	require.NoError(t, err)
	assert.Len(t, hits, 1)

	hits, err = f.qa.Search(ctx, "dataset", 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.GreaterOrEqual(t, hits[0].Score, hits[1].Score)

	_, err = f.qa.Search(ctx, "", 2)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 0, f.generator.calls())
}

func TestQAService_SourcesComeFromLatestReindex(t *testing.T) {
	f := newFixture(t, 4)
	f.extractor.texts["doc3.pdf"] = "A convolutional network trained on dataset Y."
	f.reindex(t, "doc1.pdf", "doc2.pdf")
	f.reindex(t, "doc3.pdf")

	answer, err := f.qa.AnswerWithSources(context.Background(), "What dataset was used?")
	require.NoError(t, err)
	require.NotEmpty(t, answer.Sources)
	for _, hit := range answer.Sources {
		assert.Equal(t, "doc3.pdf", hit.Passage.Source)
	}
}
