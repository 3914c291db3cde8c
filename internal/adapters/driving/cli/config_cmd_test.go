package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paperpilot/internal/core/domain"
)

func clearAPIKeyEnv(t *testing.T) {
	t.Helper()
	for _, p := range domain.AllLLMProviders() {
		if env := p.APIKeyEnv(); env != "" {
			t.Setenv(env, "")
		}
	}
}

func TestConfigShow_Defaults(t *testing.T) {
	setupTestServices(t)
	clearAPIKeyEnv(t)

	out, err := run(t, "config")

	require.NoError(t, err)
	assert.Contains(t, out, "Passages per question: 4")
	assert.Contains(t, out, domain.AIProviderHashing.Description())
	assert.Contains(t, out, domain.AIProviderGemini.Description())
	assert.Contains(t, out, "(not set, use GEMINI_API_KEY)")
	assert.Contains(t, out, "Run 'paperpilot config llm'")
}

func TestConfigSet(t *testing.T) {
	env := setupTestServices(t)

	out, err := run(t, "config", "set", "retrieval.k", "6")

	require.NoError(t, err)
	assert.Contains(t, out, "Set retrieval.k = 6")
	assert.Equal(t, 6, env.config.GetInt("retrieval.k"))
}

func TestConfigSet_UnknownKey(t *testing.T) {
	setupTestServices(t)

	_, err := run(t, "config", "set", "no.such.key", "1")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestConfigSetKey(t *testing.T) {
	env := setupTestServices(t)
	clearAPIKeyEnv(t)
	rootCmd.SetIn(strings.NewReader("sk-test-1234567890\n"))

	out, err := run(t, "config", "set-key")

	require.NoError(t, err)
	assert.Contains(t, out, "API key saved (sk-t...7890).")
	assert.Equal(t, "sk-test-1234567890", env.config.GetString("llm.api_key"))
}

func TestConfigSetKey_Empty(t *testing.T) {
	setupTestServices(t)
	clearAPIKeyEnv(t)
	rootCmd.SetIn(strings.NewReader("\n"))

	_, err := run(t, "config", "set-key")

	assert.EqualError(t, err, "API key is required for this provider")
}

func TestConfigSetKey_LocalProvider(t *testing.T) {
	env := setupTestServices(t)
	require.NoError(t, env.config.Set("llm.provider", "ollama"))

	out, err := run(t, "config", "set-key")

	require.NoError(t, err)
	assert.Contains(t, out, "does not need an API key")
}

func TestConfigLLM(t *testing.T) {
	env := setupTestServices(t)
	clearAPIKeyEnv(t)
	// Ollama, default model, no key prompt.
	rootCmd.SetIn(strings.NewReader("2\n\n"))

	out, err := run(t, "config", "llm")

	require.NoError(t, err)
	assert.Contains(t, out, "LLM provider configured: Ollama (local) (llama3.2)")
	assert.Equal(t, "ollama", env.config.GetString("llm.provider"))
}

func TestConfigLLM_PromptsForKey(t *testing.T) {
	env := setupTestServices(t)
	clearAPIKeyEnv(t)
	rootCmd.SetIn(strings.NewReader("3\ngpt-4o\nsk-openai-abcdefgh\n"))

	out, err := run(t, "config", "llm")

	require.NoError(t, err)
	assert.Contains(t, out, "Enter API key (or set OPENAI_API_KEY)")
	assert.Equal(t, "gpt-4o", env.config.GetString("llm.model"))
	assert.Equal(t, "sk-openai-abcdefgh", env.config.GetString("llm.api_key"))
}

func TestConfigEmbedding(t *testing.T) {
	env := setupTestServices(t)
	rootCmd.SetIn(strings.NewReader("2\n\n"))

	out, err := run(t, "config", "embedding")

	require.NoError(t, err)
	assert.Contains(t, out, "Embedding provider configured: Ollama (local)")
	assert.Contains(t, out, "paperpilot index --force")
	assert.Equal(t, "nomic-embed-text", env.config.GetString("embedding.model"))
	assert.Equal(t, 768, env.config.GetInt("embedding.dimensions"))
}

func TestConfigValidate(t *testing.T) {
	setupTestServices(t)

	out, err := run(t, "config", "validate")

	require.NoError(t, err)
	assert.Contains(t, out, "Validating configuration... OK")
}

func TestConfiguredStatus(t *testing.T) {
	assert.Equal(t, "configured", configuredStatus(true))
	assert.Equal(t, "not configured", configuredStatus(false))
}
