package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/paperpilot/internal/core/domain"
	"github.com/custodia-labs/paperpilot/internal/core/ports/driven"
	"github.com/custodia-labs/paperpilot/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyDataDir           = "data_dir"
	keyRetrievalK        = "retrieval.k"
	keyChunkSize         = "chunker.size"
	keyChunkOverlap      = "chunker.overlap"
	keyEmbedProvider     = "embedding.provider"
	keyEmbedModel        = "embedding.model"
	keyEmbedDims         = "embedding.dimensions"
	keyEmbedBaseURL      = "embedding.base_url"
	keyLLMProvider       = "llm.provider"
	keyLLMModel          = "llm.model"
	keyLLMBaseURL        = "llm.base_url"
	keyLLMAPIKey         = "llm.api_key"
	keyLLMMaxRetries     = "llm.max_retries"
	keyLLMInitialDelay   = "llm.initial_delay"
	keyLLMTimeout        = "llm.timeout"
	keyLLMRequestsPerMin = "llm.requests_per_minute"
	keyPDFCommand        = "pdf.command"
)

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindDuration
	kindEmbeddingProvider
	kindLLMProvider
)

// knownKeys lists every settable key and how its value is parsed.
var knownKeys = map[string]valueKind{
	keyDataDir:           kindString,
	keyRetrievalK:        kindInt,
	keyChunkSize:         kindInt,
	keyChunkOverlap:      kindInt,
	keyEmbedProvider:     kindEmbeddingProvider,
	keyEmbedModel:        kindString,
	keyEmbedDims:         kindInt,
	keyEmbedBaseURL:      kindString,
	keyLLMProvider:       kindLLMProvider,
	keyLLMModel:          kindString,
	keyLLMBaseURL:        kindString,
	keyLLMAPIKey:         kindString,
	keyLLMMaxRetries:     kindInt,
	keyLLMInitialDelay:   kindDuration,
	keyLLMTimeout:        kindDuration,
	keyLLMRequestsPerMin: kindInt,
	keyPDFCommand:        kindString,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
// The aiValidator is optional (can be nil).
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings.
// The provider's environment variable takes precedence over a stored API key.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		DataDir:    s.getString(keyDataDir, defaults.DataDir),
		RetrievalK: s.getInt(keyRetrievalK, defaults.RetrievalK),
		Chunker: domain.ChunkerSettings{
			Size:    s.getInt(keyChunkSize, defaults.Chunker.Size),
			Overlap: s.getInt(keyChunkOverlap, defaults.Chunker.Overlap),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:   s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:      s.configStore.GetString(keyEmbedModel),
			BaseURL:    s.configStore.GetString(keyEmbedBaseURL),
			Dimensions: s.getInt(keyEmbedDims, defaults.Embedding.Dimensions),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			Retry: domain.RetrySettings{
				MaxAttempts:       s.getInt(keyLLMMaxRetries, defaults.LLM.Retry.MaxAttempts),
				InitialDelay:      s.getDuration(keyLLMInitialDelay, defaults.LLM.Retry.InitialDelay),
				Timeout:           s.getDuration(keyLLMTimeout, defaults.LLM.Retry.Timeout),
				RequestsPerMinute: s.getInt(keyLLMRequestsPerMin, defaults.LLM.Retry.RequestsPerMinute),
			},
		},
		PDFCommand: s.getString(keyPDFCommand, defaults.PDFCommand),
	}

	if settings.RetrievalK < 1 {
		settings.RetrievalK = defaults.RetrievalK
	}
	if settings.Chunker.Size < 1 || settings.Chunker.Overlap < 0 || settings.Chunker.Overlap >= settings.Chunker.Size {
		settings.Chunker = defaults.Chunker
	}
	if settings.LLM.Retry.MaxAttempts < 1 {
		settings.LLM.Retry.MaxAttempts = defaults.LLM.Retry.MaxAttempts
	}

	settings.LLM.Model = s.getString(keyLLMModel, domain.DefaultLLMModels()[settings.LLM.Provider])
	settings.LLM.APIKey = s.apiKey(settings.LLM.Provider)
	if settings.Embedding.Provider.RequiresAPIKey() {
		settings.Embedding.APIKey = s.embeddingKey(settings.Embedding.Provider, settings.LLM)
	}

	return settings, nil
}

// SetLLMProvider configures the generative model provider.
// An empty model selects the provider's default.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model string) error {
	if !isOneOf(provider, domain.AllLLMProviders()) {
		return fmt.Errorf("%w: %s is not a generation provider", domain.ErrInvalidInput, provider)
	}
	if model == "" {
		model = domain.DefaultLLMModels()[provider]
	}

	if err := s.configStore.Set(keyLLMProvider, provider.String()); err != nil {
		return fmt.Errorf("save llm provider: %w", err)
	}
	if err := s.configStore.Set(keyLLMModel, model); err != nil {
		return fmt.Errorf("save llm model: %w", err)
	}
	return nil
}

// SetAPIKey stores the API key for the configured LLM provider.
func (s *SettingsService) SetAPIKey(apiKey string) error {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return fmt.Errorf("%w: empty API key", domain.ErrInvalidInput)
	}
	if err := s.configStore.Set(keyLLMAPIKey, apiKey); err != nil {
		return fmt.Errorf("save llm api_key: %w", err)
	}
	return nil
}

// SetEmbeddingProvider configures the embedding provider.
// Dimensions of zero select the provider's or model's default.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model string, dimensions int) error {
	if !isOneOf(provider, domain.AllEmbeddingProviders()) {
		return fmt.Errorf("%w: %s is not an embedding provider", domain.ErrInvalidInput, provider)
	}
	if dimensions < 0 {
		return fmt.Errorf("%w: negative dimensions", domain.ErrInvalidInput)
	}

	switch provider {
	case domain.AIProviderOllama, domain.AIProviderOpenAI:
		if model == "" {
			model = domain.DefaultEmbeddingModels()[provider]
		}
		if dimensions == 0 {
			dimensions = domain.EmbeddingDimensions()[model]
		}
	default:
		model = ""
		if dimensions == 0 {
			dimensions = domain.DefaultEmbeddingDims
		}
	}

	if err := s.configStore.Set(keyEmbedProvider, provider.String()); err != nil {
		return fmt.Errorf("save embedding provider: %w", err)
	}
	if err := s.configStore.Set(keyEmbedModel, model); err != nil {
		return fmt.Errorf("save embedding model: %w", err)
	}
	if dimensions > 0 {
		if err := s.configStore.Set(keyEmbedDims, dimensions); err != nil {
			return fmt.Errorf("save embedding dimensions: %w", err)
		}
	}
	return nil
}

// Set stores a raw configuration value. String values are parsed according
// to the key, so "retrieval.k" accepts "6" and "llm.timeout" accepts "90s".
func (s *SettingsService) Set(key string, value any) error {
	kind, ok := knownKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown config key %q", domain.ErrInvalidInput, key)
	}

	parsed, err := parseValue(kind, value)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}
	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Values returns every stored configuration key and value. API keys are masked.
func (s *SettingsService) Values() map[string]string {
	keys := s.configStore.Keys()
	out := make(map[string]string, len(keys))
	for _, key := range keys {
		val, _ := s.configStore.Get(key)
		str := fmt.Sprint(val)
		if strings.HasSuffix(key, "api_key") {
			str = MaskSecret(str)
		}
		out[key] = str
	}
	return out
}

// SortedKeys returns the keys of values in order.
func SortedKeys(values map[string]string) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Validate pings the configured providers.
func (s *SettingsService) Validate(ctx context.Context) error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	if err := s.aiValidator.ValidateEmbedding(ctx, settings.Embedding); err != nil {
		return fmt.Errorf("embedding provider: %w", err)
	}
	if err := s.aiValidator.ValidateLLM(ctx, settings.LLM); err != nil {
		return fmt.Errorf("llm provider: %w", err)
	}
	return nil
}

// MaskSecret hides all but the last four characters of a secret.
func MaskSecret(secret string) string {
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", 8) + secret[len(secret)-4:]
}

func (s *SettingsService) apiKey(provider domain.AIProvider) string {
	if env := provider.APIKeyEnv(); env != "" {
		if key := strings.TrimSpace(s.getenv(env)); key != "" {
			return key
		}
	}
	return s.configStore.GetString(keyLLMAPIKey)
}

// embeddingKey resolves the key for a cloud embedding provider. The stored
// key only applies when the LLM uses the same provider.
func (s *SettingsService) embeddingKey(provider domain.AIProvider, llm domain.LLMSettings) string {
	if provider == llm.Provider {
		return llm.APIKey
	}
	return strings.TrimSpace(s.getenv(provider.APIKeyEnv()))
}

func (s *SettingsService) getString(key, defaultVal string) string {
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	return defaultVal
}

// getInt returns defaultVal only when the key is absent, so an explicit 0 is kept.
func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	if val := s.configStore.GetDuration(key); val > 0 {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := domain.AIProvider(s.configStore.GetString(key))
	if val.IsValid() {
		return val
	}
	return defaultVal
}

func parseValue(kind valueKind, value any) (any, error) {
	str, isString := value.(string)
	if !isString {
		switch kind {
		case kindInt:
			if _, ok := value.(int); !ok {
				return nil, fmt.Errorf("expected an integer, got %T", value)
			}
		case kindDuration:
			if d, ok := value.(time.Duration); ok {
				return d.String(), nil
			}
			return nil, fmt.Errorf("expected a duration, got %T", value)
		default:
			return nil, fmt.Errorf("expected a string, got %T", value)
		}
		return value, nil
	}

	str = strings.TrimSpace(str)
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(str)
		if err != nil {
			return nil, fmt.Errorf("expected an integer: %w", err)
		}
		if n < 0 {
			return nil, errors.New("must not be negative")
		}
		return n, nil
	case kindDuration:
		d, err := time.ParseDuration(str)
		if err != nil {
			return nil, err
		}
		return d.String(), nil
	case kindEmbeddingProvider:
		if !isOneOf(domain.AIProvider(str), domain.AllEmbeddingProviders()) {
			return nil, fmt.Errorf("%s is not an embedding provider", str)
		}
	case kindLLMProvider:
		if !isOneOf(domain.AIProvider(str), domain.AllLLMProviders()) {
			return nil, fmt.Errorf("%s is not a generation provider", str)
		}
	}
	return str, nil
}

func isOneOf(p domain.AIProvider, providers []domain.AIProvider) bool {
	for _, candidate := range providers {
		if p == candidate {
			return true
		}
	}
	return false
}
