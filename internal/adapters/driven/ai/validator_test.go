package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paperpilot/internal/core/domain"
	"github.com/custodia-labs/paperpilot/internal/core/ports/driven"
)

func TestNewConfigValidator(t *testing.T) {
	validator := NewConfigValidator()

	require.NotNil(t, validator)
}

func TestConfigValidator_ImplementsInterface(t *testing.T) {
	var _ driven.AIConfigValidator = (*ConfigValidator)(nil)
}

func TestConfigValidator_ValidateEmbedding_Unconfigured(t *testing.T) {
	validator := NewConfigValidator()

	err := validator.ValidateEmbedding(context.Background(), domain.EmbeddingSettings{Provider: domain.AIProviderOllama})

	// Nothing to validate without a model.
	assert.NoError(t, err)
}

func TestConfigValidator_ValidateEmbedding_OllamaReachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/version", r.URL.Path)
		_, _ = w.Write([]byte(`{"version":"0.12.0"}`))
	}))
	defer srv.Close()

	err := NewConfigValidator().ValidateEmbedding(context.Background(), domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama,
		Model:    "nomic-embed-text",
		BaseURL:  srv.URL,
	})
	assert.NoError(t, err)
}

func TestConfigValidator_ValidateLLM_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := NewConfigValidator().ValidateLLM(context.Background(), domain.LLMSettings{
		Provider: domain.AIProviderOpenAI,
		APIKey:   "bad-key",
		BaseURL:  srv.URL,
	})
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}
