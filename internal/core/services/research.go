package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/paperpilot/internal/core/domain"
	"github.com/custodia-labs/paperpilot/internal/core/ports/driven"
	"github.com/custodia-labs/paperpilot/internal/core/ports/driving"
	"github.com/custodia-labs/paperpilot/internal/logger"
)

// Ensure ResearchService implements the interface.
var _ driving.ResearchService = (*ResearchService)(nil)

// Input limits and fallback results for the research helpers.
const (
	ReviewInputLimit     = 16000
	ExtractionInputLimit = 12000
	QuestionsInputLimit  = 2000
	MinExtractionText    = 200
	MinQuestionText      = 100
	DefaultQuestionCount = 5
	NoMethodsSection     = "No distinct methods section found."
	NoReviewText         = "No text available for review generation."
	NoExtractionText     = "No text provided."
	questionCutset       = "•- \n"
)

var (
	methodsPattern = regexp.MustCompile(
		`(?i)(?:Methodology|Methods|Materials and Methods)([\s\S]*?)` +
			`(?:Results|Experiments|Discussion|Conclusion|References|Bibliography)`)
	numbering = regexp.MustCompile(`^\(?\d+[.)]\s*`)
)

// ResearchService runs the single-shot prompt helpers.
type ResearchService struct {
	extractor driven.TextExtractor
	generator driven.Generator
	prompts   driven.PromptStore
}

// NewResearchService creates a new research service.
func NewResearchService(
	extractor driven.TextExtractor,
	generator driven.Generator,
	prompts driven.PromptStore,
) *ResearchService {
	return &ResearchService{
		extractor: extractor,
		generator: generator,
		prompts:   prompts,
	}
}

// PaperText extracts the full text of one document.
func (s *ResearchService) PaperText(ctx context.Context, doc domain.Document) (string, error) {
	text, err := s.extractor.Extract(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", doc.Name, err)
	}
	return text, nil
}

// CombinedText extracts every document and joins the texts with blank lines.
func (s *ResearchService) CombinedText(ctx context.Context, docs []domain.Document) (string, error) {
	texts := make([]string, 0, len(docs))
	for _, doc := range docs {
		text, err := s.PaperText(ctx, doc)
		if err != nil {
			return "", err
		}
		texts = append(texts, text)
	}
	return strings.Join(texts, "\n\n"), nil
}

// CompareMethods compares the methods sections of two or more papers.
func (s *ResearchService) CompareMethods(ctx context.Context, docs []domain.Document) (string, error) {
	logger.Section("Compare Methods")

	if len(docs) < 2 {
		return "", fmt.Errorf("%w: comparison needs at least two papers", domain.ErrInvalidInput)
	}

	blocks := make([]string, 0, len(docs))
	for _, doc := range docs {
		text, err := s.PaperText(ctx, doc)
		if err != nil {
			return "", err
		}
		section := MethodsSection(text)
		logger.Debug("%s: methods section %d characters", doc.Name, len(section))
		blocks = append(blocks, "["+doc.Name+"]\n"+section)
	}

	return s.generate(ctx, driven.PromptCompareMethods, strings.Join(blocks, "\n\n"))
}

// LiteratureReview writes a review over the combined paper text.
func (s *ResearchService) LiteratureReview(ctx context.Context, text string) (string, error) {
	logger.Section("Literature Review")

	if strings.TrimSpace(text) == "" {
		return NoReviewText, nil
	}
	return s.generate(ctx, driven.PromptLiteratureReview, truncate(text, ReviewInputLimit))
}

// ExtractDatasetsMetrics lists the datasets and metrics mentioned in the text.
func (s *ResearchService) ExtractDatasetsMetrics(ctx context.Context, text string) (string, error) {
	logger.Section("Extract Datasets")

	if utf8.RuneCountInString(strings.TrimSpace(text)) < MinExtractionText {
		return NoExtractionText, nil
	}
	return s.generate(ctx, driven.PromptExtractDatasets, truncate(text, ExtractionInputLimit))
}

// SuggestQuestions proposes up to n research questions about the text.
// Text too short to say anything about yields no questions.
func (s *ResearchService) SuggestQuestions(ctx context.Context, text string, n int) ([]string, error) {
	logger.Section("Suggest Questions")

	if n < 1 {
		n = DefaultQuestionCount
	}
	if utf8.RuneCountInString(strings.TrimSpace(text)) < MinQuestionText {
		return nil, nil
	}

	output, err := s.generate(ctx, driven.PromptSuggestQuestions, n, truncate(text, QuestionsInputLimit))
	if err != nil {
		return nil, err
	}
	return ParseQuestions(output, n), nil
}

func (s *ResearchService) generate(ctx context.Context, name string, args ...any) (string, error) {
	if s.generator == nil {
		return "", domain.ErrLLMUnavailable
	}
	template, err := s.prompts.Load(name)
	if err != nil {
		return "", fmt.Errorf("load %s prompt: %w", name, err)
	}
	return s.generator.Generate(ctx, fmt.Sprintf(template, args...))
}

// MethodsSection returns the text between a methods heading and the next
// results-like heading, or NoMethodsSection.
func MethodsSection(text string) string {
	m := methodsPattern.FindStringSubmatch(text)
	if m == nil {
		return NoMethodsSection
	}
	return strings.TrimSpace(m[1])
}

// ParseQuestions keeps the lines of model output that contain a question
// mark, stripped of bullets and numbering, up to n of them.
func ParseQuestions(output string, n int) []string {
	var questions []string
	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, "?") {
			continue
		}
		q := strings.Trim(line, questionCutset)
		q = strings.TrimSpace(numbering.ReplaceAllString(q, ""))
		if q == "" {
			continue
		}
		questions = append(questions, q)
		if len(questions) == n {
			break
		}
	}
	return questions
}

// truncate returns at most limit runes of s.
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
