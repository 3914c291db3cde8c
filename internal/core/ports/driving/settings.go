package driving

import (
	"context"

	"github.com/custodia-labs/paperpilot/internal/core/domain"
)

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings, with environment
	// credentials applied.
	Get() (*domain.AppSettings, error)

	// SetLLMProvider configures the generative model provider.
	SetLLMProvider(provider domain.AIProvider, model string) error

	// SetAPIKey stores the API key for the configured LLM provider.
	SetAPIKey(apiKey string) error

	// SetEmbeddingProvider configures the embedding provider.
	SetEmbeddingProvider(provider domain.AIProvider, model string, dimensions int) error

	// Set stores a raw configuration value.
	Set(key string, value any) error

	// Values returns every stored configuration key and value.
	// Secrets are masked.
	Values() map[string]string

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// Validate checks that the configured providers are reachable.
	Validate(ctx context.Context) error
}
