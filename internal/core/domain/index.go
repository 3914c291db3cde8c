package domain

import (
	"math"
	"sort"
	"time"
)

// DefaultRetrievalK is the default number of passages retrieved per question.
const DefaultRetrievalK = 4

// Index is one persisted generation of passages and their vectors.
// An index is read-only once built; a rebuild replaces it entirely.
type Index struct {
	// Generation uniquely identifies the build that produced the index.
	Generation string

	// Model is the embedding model name used at build time.
	Model string

	// Dimensions is the embedding vector size.
	Dimensions int

	// CreatedAt is when the build completed.
	CreatedAt time.Time

	// Documents lists the source names in insertion order.
	Documents []string

	// Passages are stored in insertion order.
	Passages []Passage
}

// IndexStatus describes an index without its vectors.
type IndexStatus struct {
	Generation string
	Model      string
	Dimensions int
	CreatedAt  time.Time
	Documents  []string
	Passages   int
}

// Status returns the summary of the index.
func (ix *Index) Status() IndexStatus {
	return IndexStatus{
		Generation: ix.Generation,
		Model:      ix.Model,
		Dimensions: ix.Dimensions,
		CreatedAt:  ix.CreatedAt,
		Documents:  append([]string(nil), ix.Documents...),
		Passages:   len(ix.Passages),
	}
}

// Len returns the number of passages.
func (ix *Index) Len() int {
	return len(ix.Passages)
}

// RetrievalHit is a passage matched by a similarity search.
type RetrievalHit struct {
	// Passage is the matched passage.
	Passage Passage

	// Score is the cosine similarity to the query (-1 to 1).
	Score float64
}

// Nearest returns the k passages most similar to the query vector,
// ordered by descending score. Ties keep insertion order.
// Returns every passage when the index holds fewer than k.
func (ix *Index) Nearest(query []float32, k int) ([]RetrievalHit, error) {
	if k < 1 {
		return nil, ErrInvalidInput
	}
	if ix.Dimensions > 0 && len(query) != ix.Dimensions {
		return nil, ErrEmbeddingMismatch
	}

	hits := make([]RetrievalHit, 0, len(ix.Passages))
	for _, p := range ix.Passages {
		hits = append(hits, RetrievalHit{Passage: p, Score: Cosine(query, p.Embedding)})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Passage.Position < hits[j].Passage.Position
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Cosine returns the cosine similarity of two vectors.
// Mismatched lengths and zero vectors score 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
