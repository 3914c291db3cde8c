package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passageAt(pos int, source string, vec ...float32) Passage {
	return Passage{ID: source + "-" + string(rune('a'+pos)), Source: source, Text: "text", Position: pos, Embedding: vec}
}

func TestIndex_Nearest_OrderAndBound(t *testing.T) {
	ix := &Index{
		Dimensions: 2,
		Passages: []Passage{
			passageAt(0, "a.pdf", 1, 0),
			passageAt(1, "b.pdf", 0, 1),
			passageAt(2, "c.pdf", 0.7, 0.7),
		},
	}

	hits, err := ix.Nearest([]float32{1, 0.1}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "a.pdf", hits[0].Passage.Source)
	assert.Equal(t, "c.pdf", hits[1].Passage.Source)
	assert.GreaterOrEqual(t, hits[0].Score, hits[1].Score)
}

func TestIndex_Nearest_FewerThanK(t *testing.T) {
	ix := &Index{Dimensions: 2, Passages: []Passage{passageAt(0, "a.pdf", 1, 0)}}

	hits, err := ix.Nearest([]float32{1, 0}, 4)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestIndex_Nearest_TieKeepsInsertionOrder(t *testing.T) {
	ix := &Index{
		Dimensions: 2,
		Passages: []Passage{
			passageAt(0, "first.pdf", 1, 0),
			passageAt(1, "second.pdf", 1, 0),
			passageAt(2, "third.pdf", 1, 0),
		},
	}

	hits, err := ix.Nearest([]float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, "first.pdf", hits[0].Passage.Source)
	assert.Equal(t, "second.pdf", hits[1].Passage.Source)
	assert.Equal(t, "third.pdf", hits[2].Passage.Source)
}

func TestIndex_Nearest_InvalidK(t *testing.T) {
	ix := &Index{Dimensions: 2}

	_, err := ix.Nearest([]float32{1, 0}, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestIndex_Nearest_DimensionMismatch(t *testing.T) {
	ix := &Index{Dimensions: 3, Passages: []Passage{passageAt(0, "a.pdf", 1, 0, 0)}}

	_, err := ix.Nearest([]float32{1, 0}, 1)
	assert.ErrorIs(t, err, ErrEmbeddingMismatch)
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float32{1, 2}, []float32{2, 4}), 1e-9)
	assert.InDelta(t, 0.0, Cosine([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.Equal(t, 0.0, Cosine([]float32{0, 0}, []float32{1, 0}))
	assert.Equal(t, 0.0, Cosine([]float32{1}, []float32{1, 0}))
}

func TestIndex_Status(t *testing.T) {
	ix := &Index{
		Generation: "gen-1",
		Model:      "hashing-v1-384",
		Dimensions: 384,
		Documents:  []string{"a.pdf"},
		Passages:   []Passage{{}, {}},
	}

	status := ix.Status()
	assert.Equal(t, "gen-1", status.Generation)
	assert.Equal(t, 2, status.Passages)
	assert.Equal(t, []string{"a.pdf"}, status.Documents)
}

func TestFormatContext(t *testing.T) {
	hits := []RetrievalHit{
		{Passage: Passage{Source: "doc1.pdf", Text: "We use dataset X."}},
		{Passage: Passage{Source: "doc2.pdf", Text: "BLEU and ROUGE."}},
	}

	assert.Equal(t, "[doc1.pdf]\nWe use dataset X.\n\n[doc2.pdf]\nBLEU and ROUGE.", FormatContext(hits))
	assert.Empty(t, FormatContext(nil))
}

func TestAnswer_SourceNames(t *testing.T) {
	answer := Answer{Sources: []RetrievalHit{
		{Passage: Passage{Source: "b.pdf"}},
		{Passage: Passage{Source: "a.pdf"}},
		{Passage: Passage{Source: "b.pdf"}},
	}}

	assert.Equal(t, []string{"b.pdf", "a.pdf"}, answer.SourceNames())
}
