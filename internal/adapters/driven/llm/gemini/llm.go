// Package gemini provides a generator adapter using the Google Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/generativelanguage/v1beta"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/custodia-labs/paperpilot/internal/adapters/driven/llm"
	"github.com/custodia-labs/paperpilot/internal/core/domain"
	"github.com/custodia-labs/paperpilot/internal/core/ports/driven"
)

// Ensure Generator implements the interface.
var _ driven.Generator = (*Generator)(nil)

const providerName = "gemini"

// Default configuration values.
const (
	DefaultModel   = "gemini-2.5-flash"
	DefaultTimeout = 120 * time.Second
)

// Config holds configuration for the Gemini generator.
type Config struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// Model is the model to use (default: gemini-2.5-flash).
	Model string

	// BaseURL overrides the API endpoint. Used for tests and proxies.
	BaseURL string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// Generator produces text using the Gemini generateContent API.
type Generator struct {
	service *generativelanguage.Service
	model   string
	timeout time.Duration
}

// NewGenerator creates a new Gemini generator.
func NewGenerator(ctx context.Context, cfg Config) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required (set %s)", domain.AIProviderGemini.APIKeyEnv())
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(strings.TrimSuffix(cfg.BaseURL, "/")+"/"))
	}

	service, err := generativelanguage.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gemini: create service: %w", err)
	}

	return &Generator{
		service: service,
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}, nil
}

// Generate sends the prompt as a single user turn and joins the text parts
// of the first candidate.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req := &generativelanguage.GenerateContentRequest{
		Contents: []*generativelanguage.Content{
			{
				Role:  "user",
				Parts: []*generativelanguage.Part{{Text: prompt}},
			},
		},
	}

	resp, err := g.service.Models.GenerateContent(g.modelPath(), req).Context(ctx).Do()
	if err != nil {
		return "", classify(err)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", domain.NewGenerationError(domain.FailureInvalidInput,
			fmt.Errorf("gemini: prompt blocked: %s", resp.PromptFeedback.BlockReason))
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", domain.NewGenerationError(domain.FailureUnknown, errors.New("gemini: no candidates returned"))
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String(), nil
}

// ModelName returns the name of the model being used.
func (g *Generator) ModelName() string {
	return g.model
}

// Ping fetches the model metadata, which validates the key without inference.
func (g *Generator) Ping(ctx context.Context) error {
	if _, err := g.service.Models.Get(g.modelPath()).Context(ctx).Do(); err != nil {
		return fmt.Errorf("gemini: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (g *Generator) Close() error {
	return nil
}

func (g *Generator) modelPath() string {
	if strings.HasPrefix(g.model, "models/") {
		return g.model
	}
	return "models/" + g.model
}

// classify maps Google API errors onto failure kinds.
func classify(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return domain.NewGenerationError(llm.KindForStatus(apiErr.Code),
			fmt.Errorf("gemini error (status %d): %s", apiErr.Code, apiErr.Message))
	}
	return llm.TransportError(providerName, err)
}
