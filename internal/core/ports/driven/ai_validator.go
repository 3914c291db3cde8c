package driven

import (
	"context"

	"github.com/custodia-labs/paperpilot/internal/core/domain"
)

// AIConfigValidator validates AI provider configurations.
// Implementations verify that configurations are valid by testing connectivity
// to the underlying AI services.
type AIConfigValidator interface {
	// ValidateEmbedding validates an embedding configuration by pinging the provider.
	// Returns nil if the configuration is not set up.
	ValidateEmbedding(ctx context.Context, config domain.EmbeddingSettings) error

	// ValidateLLM validates a generative model configuration by pinging the provider.
	// Returns nil if the configuration is not set up.
	ValidateLLM(ctx context.Context, config domain.LLMSettings) error
}
