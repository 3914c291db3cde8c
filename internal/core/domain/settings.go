package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or generation.
type AIProvider string

// Available AI providers.
const (
	// AIProviderGemini is the Google Gemini API.
	AIProviderGemini AIProvider = "gemini"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderHashing is the built-in offline feature-hashing embedder.
	AIProviderHashing AIProvider = "hashing"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderGemini, AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderHashing:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderGemini || p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderHashing
}

// APIKeyEnv returns the environment variable holding this provider's key.
func (p AIProvider) APIKeyEnv() string {
	switch p {
	case AIProviderGemini:
		return "GEMINI_API_KEY"
	case AIProviderOpenAI:
		return "OPENAI_API_KEY"
	case AIProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return ""
	}
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderGemini:
		return "Google Gemini (cloud)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderHashing:
		return "Feature hashing (built-in, offline)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name (Ollama and OpenAI).
	Model string

	// BaseURL is the API endpoint override.
	BaseURL string

	// APIKey is the API key for OpenAI embeddings.
	APIKey string

	// Dimensions is the vector size.
	Dimensions int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	switch e.Provider {
	case AIProviderHashing:
		return e.Dimensions > 0
	case AIProviderOllama:
		return e.Model != ""
	case AIProviderOpenAI:
		return e.APIKey != ""
	default:
		return false
	}
}

// RetrySettings configures the shared retry policy for model calls.
type RetrySettings struct {
	// MaxAttempts is the total number of calls, including the first.
	MaxAttempts int

	// InitialDelay is the wait before the first retry; it doubles each retry.
	InitialDelay time.Duration

	// Timeout bounds each individual call.
	Timeout time.Duration

	// RequestsPerMinute paces calls to the provider. Zero disables pacing.
	RequestsPerMinute int
}

// LLMSettings holds generative model configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint override.
	BaseURL string

	// APIKey is the API key for cloud providers.
	APIKey string

	// Retry is the retry policy applied to every call.
	Retry RetrySettings
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() || l.Provider == AIProviderHashing {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// ChunkerSettings holds passage splitting configuration.
type ChunkerSettings struct {
	// Size is the target passage length in characters.
	Size int

	// Overlap is the number of characters shared by neighbouring passages.
	Overlap int
}

// AppSettings holds all application settings.
type AppSettings struct {
	// DataDir is the root for the vector index and workspaces.
	DataDir string

	// RetrievalK is the number of passages retrieved per question.
	RetrievalK int

	// Chunker holds passage splitting settings.
	Chunker ChunkerSettings

	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// LLM holds generative model settings.
	LLM LLMSettings

	// PDFCommand is the text extraction executable.
	PDFCommand string
}

// Defaults for AppSettings.
const (
	DefaultChunkSize         = 800
	DefaultChunkOverlap      = 200
	DefaultEmbeddingDims     = 384
	DefaultMaxAttempts       = 3
	DefaultInitialDelay      = 2 * time.Second
	DefaultLLMTimeout        = 60 * time.Second
	DefaultRequestsPerMinute = 60
	DefaultPDFCommand        = "pdftotext"
)

// DefaultAppSettings returns settings with sensible defaults.
// The LLM has no API key until the user provides one.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		RetrievalK: DefaultRetrievalK,
		Chunker: ChunkerSettings{
			Size:    DefaultChunkSize,
			Overlap: DefaultChunkOverlap,
		},
		Embedding: EmbeddingSettings{
			Provider:   AIProviderHashing,
			Dimensions: DefaultEmbeddingDims,
		},
		LLM: LLMSettings{
			Provider: AIProviderGemini,
			Model:    DefaultLLMModels()[AIProviderGemini],
			Retry: RetrySettings{
				MaxAttempts:       DefaultMaxAttempts,
				InitialDelay:      DefaultInitialDelay,
				Timeout:           DefaultLLMTimeout,
				RequestsPerMinute: DefaultRequestsPerMinute,
			},
		},
		PDFCommand: DefaultPDFCommand,
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderHashing,
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support generation.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderGemini,
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderGemini:    "gemini-2.5-flash",
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// DefaultEmbeddingModels returns default models for each model-based embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// EmbeddingDimensions returns the vector dimensions for known embedding models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		"nomic-embed-text":       768,
		"mxbai-embed-large":      1024,
		"all-minilm":             384,
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
