// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/paperpilot/internal/adapters/driven/embedding/hashing"
	ollamaembed "github.com/custodia-labs/paperpilot/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/paperpilot/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/paperpilot/internal/adapters/driven/llm/anthropic"
	geminillm "github.com/custodia-labs/paperpilot/internal/adapters/driven/llm/gemini"
	ollamallm "github.com/custodia-labs/paperpilot/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/paperpilot/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/paperpilot/internal/adapters/driven/llm/retry"
	"github.com/custodia-labs/paperpilot/internal/core/domain"
	"github.com/custodia-labs/paperpilot/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult contains the AI services built from settings.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	Generator        driven.Generator // Nil when no model is configured.
	Warnings         []string         // Non-fatal issues, e.g. a missing API key.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		_ = r.EmbeddingService.Close()
	}
	if r.Generator != nil {
		_ = r.Generator.Close()
	}
}

// Init builds the embedding service and the retrying generator.
// The embedder is required; a missing generator only produces a warning so
// that indexing and search still work without credentials.
func Init(ctx context.Context, settings domain.AppSettings) (*InitResult, error) {
	embedder, err := CreateEmbeddingService(settings.Embedding)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}

	result := &InitResult{EmbeddingService: embedder}

	if !settings.LLM.IsConfigured() {
		msg := fmt.Sprintf("%s is not configured", settings.LLM.Provider)
		if env := settings.LLM.Provider.APIKeyEnv(); env != "" {
			msg += fmt.Sprintf("; set %s or run 'paperpilot config set-key'", env)
		}
		result.Warnings = append(result.Warnings, msg)
		return result, nil
	}

	gen, err := CreateGenerator(ctx, settings.LLM)
	if err != nil {
		result.Close()
		return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	result.Generator = gen
	return result, nil
}

// CreateEmbeddingService creates the embedding service named by settings.
// An empty provider selects the built-in hashing embedder.
func CreateEmbeddingService(settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	switch settings.Provider {
	case "", domain.AIProviderHashing:
		return hashing.NewEmbeddingService(hashing.Config{Dimensions: settings.Dimensions}), nil

	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		})

	case domain.AIProviderGemini, domain.AIProviderAnthropic:
		return nil, fmt.Errorf("%s is not an embedding provider, use hashing, ollama or openai", settings.Provider)

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateGenerator creates the configured provider wrapped in the shared
// retry policy. Every caller of the model goes through this wrapper.
func CreateGenerator(ctx context.Context, settings domain.LLMSettings) (driven.Generator, error) {
	base, err := CreateProvider(ctx, settings)
	if err != nil {
		return nil, err
	}
	return retry.New(base, retry.PolicyFromSettings(settings.Retry)), nil
}

// CreateProvider creates the bare provider adapter without retries.
func CreateProvider(ctx context.Context, settings domain.LLMSettings) (driven.Generator, error) {
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("%s is not configured", settings.Provider)
	}

	// The retry wrapper enforces the per-attempt timeout; the provider
	// timeout only has to be no shorter.
	timeout := settings.Retry.Timeout

	switch settings.Provider {
	case domain.AIProviderGemini:
		return geminillm.NewGenerator(ctx, geminillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: timeout,
		})

	case domain.AIProviderOllama:
		return ollamallm.NewGenerator(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: timeout,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewGenerator(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: timeout,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewGenerator(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: timeout,
		})

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

// ValidateEmbeddingConfig creates an embedding service and pings it.
func ValidateEmbeddingConfig(ctx context.Context, settings domain.EmbeddingSettings) error {
	if !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%w: service unreachable (%w)", domain.ErrEmbeddingUnavailable, err)
	}
	return nil
}

// ValidateLLMConfig creates the bare provider and pings it once.
func ValidateLLMConfig(ctx context.Context, settings domain.LLMSettings) error {
	if !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateProvider(ctx, settings)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%w: service unreachable (%w)", domain.ErrLLMUnavailable, err)
	}
	return nil
}
