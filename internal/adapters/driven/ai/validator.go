package ai

import (
	"context"

	"github.com/custodia-labs/paperpilot/internal/core/domain"
	"github.com/custodia-labs/paperpilot/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator validates AI provider configurations.
type ConfigValidator struct{}

// NewConfigValidator creates a new AI config validator.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// ValidateEmbedding validates an embedding configuration by pinging the provider.
func (v *ConfigValidator) ValidateEmbedding(ctx context.Context, config domain.EmbeddingSettings) error {
	return ValidateEmbeddingConfig(ctx, config)
}

// ValidateLLM validates a generative model configuration by pinging the provider.
func (v *ConfigValidator) ValidateLLM(ctx context.Context, config domain.LLMSettings) error {
	return ValidateLLMConfig(ctx, config)
}
