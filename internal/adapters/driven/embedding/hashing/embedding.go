// Package hashing provides an offline, deterministic embedding service.
//
// Text is lowercased, split into letter and digit runs, stripped of stop
// words and stemmed with the Snowball English stemmer. Each stem is hashed
// into a fixed number of buckets with a sign bit, weighted by log term
// frequency, and the vector is L2-normalised. Texts that share stems score a
// positive cosine similarity, which is all retrieval over short research
// passages needs.
package hashing

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"regexp"
	"runtime"
	"strings"

	"github.com/kljensen/snowball/english"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/paperpilot/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultDimensions = 384
	modelVersion      = "hashing-v1"
)

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

// Config holds configuration for the hashing embedding service.
type Config struct {
	// Dimensions is the embedding vector size (default: 384).
	Dimensions int

	// Workers bounds batch parallelism (default: GOMAXPROCS).
	Workers int
}

// EmbeddingService generates feature-hashing embeddings.
// It is safe for concurrent use.
type EmbeddingService struct {
	dimensions int
	workers    int
}

// NewEmbeddingService creates a new hashing embedding service.
func NewEmbeddingService(cfg Config) *EmbeddingService {
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = DefaultDimensions
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	return &EmbeddingService{
		dimensions: cfg.Dimensions,
		workers:    cfg.Workers,
	}
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.vector(text), nil
}

// EmbedBatch embeds texts in parallel. Output order matches input order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, text := range texts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return fmt.Errorf("embed text %d: %w", i, err)
			}
			embeddings[i] = s.vector(text)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return embeddings, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the model identifier, which includes the vector size.
func (s *EmbeddingService) ModelName() string {
	return fmt.Sprintf("%s-%d", modelVersion, s.dimensions)
}

// Ping always succeeds; the embedder has no remote dependency.
func (s *EmbeddingService) Ping(_ context.Context) error {
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}

func (s *EmbeddingService) vector(text string) []float32 {
	vec := make([]float32, s.dimensions)

	counts := make(map[string]int)
	for _, term := range Terms(text) {
		counts[term]++
	}

	for term, n := range counts {
		h := fnv.New64a()
		_, _ = h.Write([]byte(term))
		sum := h.Sum64()

		weight := float32(1 + math.Log(float64(n)))
		if sum>>63 == 1 {
			weight = -weight
		}
		vec[sum%uint64(s.dimensions)] += weight
	}

	var sumSq float64
	for _, v := range vec {
		sumSq += float64(v) * float64(v)
	}
	if sumSq > 0 {
		norm := float32(1 / math.Sqrt(sumSq))
		for i := range vec {
			vec[i] *= norm
		}
	}
	return vec
}

// Terms returns the stemmed, stop-word-free terms of text in order.
func Terms(text string) []string {
	tokens := tokenPattern.FindAllString(strings.ToLower(text), -1)
	terms := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if stopWords[tok] {
			continue
		}
		terms = append(terms, english.Stem(tok, false))
	}
	return terms
}

var stopWords = map[string]bool{
	"a": true, "about": true, "above": true, "after": true, "again": true, "against": true, "all": true,
	"am": true, "an": true, "and": true, "any": true, "are": true, "as": true, "at": true, "be": true,
	"because": true, "been": true, "before": true, "being": true, "below": true, "between": true,
	"both": true, "but": true, "by": true, "can": true, "did": true, "do": true, "does": true,
	"doing": true, "down": true, "during": true, "each": true, "few": true, "for": true, "from": true,
	"further": true, "had": true, "has": true, "have": true, "having": true, "he": true, "her": true,
	"here": true, "hers": true, "him": true, "his": true, "how": true, "i": true, "if": true, "in": true,
	"into": true, "is": true, "it": true, "its": true, "itself": true, "just": true, "me": true,
	"more": true, "most": true, "my": true, "no": true, "nor": true, "not": true, "now": true, "of": true,
	"off": true, "on": true, "once": true, "only": true, "or": true, "other": true, "our": true,
	"ours": true, "out": true, "over": true, "own": true, "same": true, "she": true, "should": true,
	"so": true, "some": true, "such": true, "than": true, "that": true, "the": true, "their": true,
	"them": true, "then": true, "there": true, "these": true, "they": true, "this": true, "those": true,
	"through": true, "to": true, "too": true, "under": true, "until": true, "up": true, "very": true,
	"was": true, "we": true, "were": true, "what": true, "when": true, "where": true, "which": true,
	"while": true, "who": true, "whom": true, "why": true, "will": true, "with": true, "would": true,
	"you": true, "your": true,
}
