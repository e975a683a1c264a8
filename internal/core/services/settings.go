package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyChunkMethod     = "chunking.method"
	keyChunkSize       = "chunking.chunk_size"
	keyEmbedProvider   = "embedding.provider"
	keyEmbedModel      = "embedding.model"
	keyEmbedBaseURL    = "embedding.base_url"
	keyEmbedAPIKey     = "embedding.api_key"
	keyEmbedDims       = "embedding.dimensions"
	keyEmbedWorkers    = "embedding.workers"
	keyEmbedBatchSize  = "embedding.batch_size"
	keyEmbedRPS        = "embedding.requests_per_second"
	keyLLMProvider     = "llm.provider"
	keyLLMModel        = "llm.model"
	keyLLMBaseURL      = "llm.base_url"
	keyLLMAPIKey       = "llm.api_key"
	keyLLMMaxTokens    = "llm.max_tokens"
	keyLLMTemperature  = "llm.temperature"
	keyVectorBackend   = "vector_store.backend"
	keyVectorIndexName = "vector_store.index_name"
	keyVectorMetric    = "vector_store.metric"
	keyVectorTopK      = "vector_store.top_k"
	keyVectorAPIKey    = "vector_store.api_key"
	keyVectorCloud     = "vector_store.cloud"
	keyVectorRegion    = "vector_store.region"
	keyVectorBaseURL   = "vector_store.base_url"
	keyVectorPath      = "vector_store.path"
	keyCallTimeout     = "pipeline.call_timeout"
	keyEvalMetrics     = "evaluation.metrics"
)

const defaultOllamaURL = "http://localhost:11434"

// keyKind describes how a string value for a key is parsed by Set.
type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindFloat
	kindDuration
	kindList
)

var settingKinds = map[string]keyKind{
	keyChunkMethod:     kindString,
	keyChunkSize:       kindInt,
	keyEmbedProvider:   kindString,
	keyEmbedModel:      kindString,
	keyEmbedBaseURL:    kindString,
	keyEmbedAPIKey:     kindString,
	keyEmbedDims:       kindInt,
	keyEmbedWorkers:    kindInt,
	keyEmbedBatchSize:  kindInt,
	keyEmbedRPS:        kindFloat,
	keyLLMProvider:     kindString,
	keyLLMModel:        kindString,
	keyLLMBaseURL:      kindString,
	keyLLMAPIKey:       kindString,
	keyLLMMaxTokens:    kindInt,
	keyLLMTemperature:  kindFloat,
	keyVectorBackend:   kindString,
	keyVectorIndexName: kindString,
	keyVectorMetric:    kindString,
	keyVectorTopK:      kindInt,
	keyVectorAPIKey:    kindString,
	keyVectorCloud:     kindString,
	keyVectorRegion:    kindString,
	keyVectorBaseURL:   kindString,
	keyVectorPath:      kindString,
	keyCallTimeout:     kindDuration,
	keyEvalMetrics:     kindList,
}

// SettingKeys returns every key accepted by Set, sorted.
func SettingKeys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SettingValues renders settings as the string form Set accepts, keyed
// by setting key. Credentials are returned unmasked.
func SettingValues(s *domain.AppSettings) map[string]string {
	return map[string]string{
		keyChunkMethod:     s.Chunking.Method.String(),
		keyChunkSize:       strconv.Itoa(s.Chunking.ChunkSize),
		keyEmbedProvider:   s.Embedding.Provider.String(),
		keyEmbedModel:      s.Embedding.Model,
		keyEmbedBaseURL:    s.Embedding.BaseURL,
		keyEmbedAPIKey:     s.Embedding.APIKey,
		keyEmbedDims:       strconv.Itoa(s.Embedding.Dimensions),
		keyEmbedWorkers:    strconv.Itoa(s.Embedding.Workers),
		keyEmbedBatchSize:  strconv.Itoa(s.Embedding.BatchSize),
		keyEmbedRPS:        strconv.FormatFloat(s.Embedding.RequestsPerSecond, 'g', -1, 64),
		keyLLMProvider:     s.LLM.Provider.String(),
		keyLLMModel:        s.LLM.Model,
		keyLLMBaseURL:      s.LLM.BaseURL,
		keyLLMAPIKey:       s.LLM.APIKey,
		keyLLMMaxTokens:    strconv.Itoa(s.LLM.MaxTokens),
		keyLLMTemperature:  strconv.FormatFloat(s.LLM.Temperature, 'g', -1, 64),
		keyVectorBackend:   s.VectorStore.Backend.String(),
		keyVectorIndexName: s.VectorStore.IndexName,
		keyVectorMetric:    s.VectorStore.Metric.String(),
		keyVectorTopK:      strconv.Itoa(s.VectorStore.TopK),
		keyVectorAPIKey:    s.VectorStore.APIKey,
		keyVectorCloud:     s.VectorStore.Cloud,
		keyVectorRegion:    s.VectorStore.Region,
		keyVectorBaseURL:   s.VectorStore.BaseURL,
		keyVectorPath:      s.VectorStore.Path,
		keyCallTimeout:     s.Pipeline.CallTimeout.String(),
		keyEvalMetrics:     strings.Join(s.Evaluation.Metrics, ","),
	}
}

// IsSecretKey reports whether key holds a credential that should be masked
// when displayed.
func IsSecretKey(key string) bool {
	return strings.HasSuffix(key, ".api_key")
}

// MaskSecret hides all but the last four characters of a credential.
func MaskSecret(value string) string {
	if value == "" {
		return ""
	}
	const mask = "********"
	if len(value) <= 4 {
		return mask
	}
	return mask + value[len(value)-4:]
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings. Unset keys take their
// defaults; values that are set but invalid are returned as is so that
// Validate can report them.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	embedProvider := domain.AIProvider(s.getString(keyEmbedProvider, defaults.Embedding.Provider.String()))
	embedModel := s.getString(keyEmbedModel, "")
	if embedModel == "" {
		embedModel = domain.DefaultEmbeddingModels()[embedProvider]
	}
	embedDims := s.configStore.GetInt(keyEmbedDims)
	if embedDims == 0 {
		embedDims = defaults.Embedding.Dimensions
		if d, ok := domain.EmbeddingDimensions()[embedModel]; ok {
			embedDims = d
		}
	}

	llmProvider := domain.AIProvider(s.getString(keyLLMProvider, defaults.LLM.Provider.String()))
	llmModel := s.getString(keyLLMModel, "")
	if llmModel == "" {
		llmModel = domain.DefaultLLMModels()[llmProvider]
	}

	timeout, err := s.getDuration(keyCallTimeout, defaults.Pipeline.CallTimeout)
	if err != nil {
		return nil, err
	}

	settings := &domain.AppSettings{
		Chunking: domain.ChunkingSettings{
			Method:    domain.ChunkMethod(s.getString(keyChunkMethod, defaults.Chunking.Method.String())),
			ChunkSize: s.getInt(keyChunkSize, defaults.Chunking.ChunkSize),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:          embedProvider,
			Model:             embedModel,
			BaseURL:           s.baseURL(keyEmbedBaseURL, embedProvider),
			APIKey:            s.configStore.GetString(keyEmbedAPIKey),
			Dimensions:        embedDims,
			Workers:           s.getInt(keyEmbedWorkers, defaults.Embedding.Workers),
			BatchSize:         s.getInt(keyEmbedBatchSize, defaults.Embedding.BatchSize),
			RequestsPerSecond: s.configStore.GetFloat(keyEmbedRPS),
		},
		LLM: domain.LLMSettings{
			Provider:    llmProvider,
			Model:       llmModel,
			BaseURL:     s.baseURL(keyLLMBaseURL, llmProvider),
			APIKey:      s.configStore.GetString(keyLLMAPIKey),
			MaxTokens:   s.getInt(keyLLMMaxTokens, defaults.LLM.MaxTokens),
			Temperature: s.getFloat(keyLLMTemperature, defaults.LLM.Temperature),
		},
		VectorStore: domain.VectorStoreSettings{
			Backend:   domain.VectorBackend(s.getString(keyVectorBackend, defaults.VectorStore.Backend.String())),
			IndexName: s.getString(keyVectorIndexName, defaults.VectorStore.IndexName),
			Metric:    domain.DistanceMetric(s.getString(keyVectorMetric, defaults.VectorStore.Metric.String())),
			TopK:      s.getInt(keyVectorTopK, defaults.VectorStore.TopK),
			APIKey:    s.configStore.GetString(keyVectorAPIKey),
			Cloud:     s.getString(keyVectorCloud, defaults.VectorStore.Cloud),
			Region:    s.getString(keyVectorRegion, defaults.VectorStore.Region),
			BaseURL:   s.configStore.GetString(keyVectorBaseURL),
			Path:      s.configStore.GetString(keyVectorPath),
		},
		Pipeline: domain.PipelineSettings{
			CallTimeout: timeout,
		},
		Evaluation: domain.EvaluationSettings{
			Metrics: defaults.Evaluation.Metrics,
		},
	}
	if metrics := s.configStore.GetStringSlice(keyEvalMetrics); len(metrics) > 0 {
		settings.Evaluation.Metrics = metrics
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyChunkMethod, settings.Chunking.Method.String()},
		{keyChunkSize, settings.Chunking.ChunkSize},
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedDims, settings.Embedding.Dimensions},
		{keyEmbedWorkers, settings.Embedding.Workers},
		{keyEmbedBatchSize, settings.Embedding.BatchSize},
		{keyEmbedRPS, settings.Embedding.RequestsPerSecond},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyLLMMaxTokens, settings.LLM.MaxTokens},
		{keyLLMTemperature, settings.LLM.Temperature},
		{keyVectorBackend, settings.VectorStore.Backend.String()},
		{keyVectorIndexName, settings.VectorStore.IndexName},
		{keyVectorMetric, settings.VectorStore.Metric.String()},
		{keyVectorTopK, settings.VectorStore.TopK},
		{keyVectorCloud, settings.VectorStore.Cloud},
		{keyVectorRegion, settings.VectorStore.Region},
		{keyVectorBaseURL, settings.VectorStore.BaseURL},
		{keyVectorPath, settings.VectorStore.Path},
		{keyCallTimeout, settings.Pipeline.CallTimeout.String()},
		{keyEvalMetrics, settings.Evaluation.Metrics},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	// Credentials are only written when present so an empty in-memory
	// value never erases a stored key.
	secrets := map[string]string{
		keyEmbedAPIKey:  settings.Embedding.APIKey,
		keyLLMAPIKey:    settings.LLM.APIKey,
		keyVectorAPIKey: settings.VectorStore.APIKey,
	}
	for key, value := range secrets {
		if value == "" {
			continue
		}
		if err := s.configStore.Set(key, value); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}

	return s.configStore.Save()
}

// Set parses value according to key's type and persists it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidConfiguration, key)
	}
	value = strings.TrimSpace(value)

	var parsed any
	switch kind {
	case kindString:
		parsed = value
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer, got %q", domain.ErrInvalidConfiguration, key, value)
		}
		parsed = n
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: %s must be a number, got %q", domain.ErrInvalidConfiguration, key, value)
		}
		parsed = f
	case kindDuration:
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("%w: %s must be a duration, got %q", domain.ErrInvalidConfiguration, key, value)
		}
		parsed = value
	case kindList:
		var items []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		parsed = items
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return s.configStore.Save()
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid embedding provider: %s", domain.ErrInvalidConfiguration, provider)
	}

	valid := false
	for _, p := range domain.AllEmbeddingProviders() {
		if p == provider {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrInvalidConfiguration, provider)
	}

	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrMissingCredential, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	if model != "" {
		settings.Embedding.Model = model
	} else {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}

	if provider == domain.AIProviderOllama {
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = defaultOllamaURL
		}
	} else {
		settings.Embedding.BaseURL = ""
	}

	settings.Embedding.APIKey = apiKey

	// The index dimension follows the model.
	if d, ok := domain.EmbeddingDimensions()[settings.Embedding.Model]; ok {
		settings.Embedding.Dimensions = d
	}

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() || provider == domain.AIProviderLocal {
		return fmt.Errorf("%w: invalid LLM provider: %s", domain.ErrInvalidConfiguration, provider)
	}

	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrMissingCredential, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	if model != "" {
		settings.LLM.Model = model
	} else {
		settings.LLM.Model = domain.DefaultLLMModels()[provider]
	}

	if provider.IsLocal() {
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = defaultOllamaURL
		}
	} else {
		settings.LLM.BaseURL = ""
	}

	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// Validate checks that the current settings can build a pipeline.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return settings.Validate()
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", domain.ErrInvalidConfiguration, key, err)
	}
	return d, nil
}

// baseURL returns the stored base URL, defaulting Ollama to localhost.
func (s *SettingsService) baseURL(key string, provider domain.AIProvider) string {
	val := s.configStore.GetString(key)
	if val == "" && provider == domain.AIProviderOllama {
		return defaultOllamaURL
	}
	return val
}
