package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// ChunkMethod selects how text is split into chunks.
type ChunkMethod string

// Available chunk methods.
const (
	// ChunkSentences packs whole sentences up to a character budget.
	ChunkSentences ChunkMethod = "sentences"

	// ChunkParagraphs packs blank-line separated paragraphs up to a character budget.
	ChunkParagraphs ChunkMethod = "paragraphs"

	// ChunkTokens packs whole sentences up to a token budget.
	ChunkTokens ChunkMethod = "tokens"
)

// IsValid returns true if the chunk method is recognised.
func (m ChunkMethod) IsValid() bool {
	switch m {
	case ChunkSentences, ChunkParagraphs, ChunkTokens:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (m ChunkMethod) String() string {
	return string(m)
}

// Unit returns the length unit the chunk size is measured in.
func (m ChunkMethod) Unit() string {
	if m == ChunkTokens {
		return "tokens"
	}
	return "characters"
}

// AllChunkMethods returns all available chunk methods.
func AllChunkMethods() []ChunkMethod {
	return []ChunkMethod{ChunkSentences, ChunkParagraphs, ChunkTokens}
}

// AIProvider identifies an AI service provider for embeddings or generation.
type AIProvider string

// Available AI providers.
const (
	// AIProviderLocal is the in-process hashing embedding model.
	AIProviderLocal AIProvider = "local"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderLocal, AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderLocal || p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderLocal:
		return "Local (in-process)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// VectorBackend identifies a vector store implementation.
type VectorBackend string

// Available vector backends.
const (
	// VectorBackendPinecone is the hosted Pinecone service.
	VectorBackendPinecone VectorBackend = "pinecone"

	// VectorBackendSQLite is a local SQLite file with brute-force search.
	VectorBackendSQLite VectorBackend = "sqlite"

	// VectorBackendMemory keeps vectors in process memory only.
	VectorBackendMemory VectorBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b VectorBackend) IsValid() bool {
	switch b {
	case VectorBackendPinecone, VectorBackendSQLite, VectorBackendMemory:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this backend needs an API key.
func (b VectorBackend) RequiresAPIKey() bool {
	return b == VectorBackendPinecone
}

// String returns the string representation.
func (b VectorBackend) String() string {
	return string(b)
}

// ChunkingSettings holds chunker configuration.
type ChunkingSettings struct {
	// Method is the chunking policy.
	Method ChunkMethod

	// ChunkSize is the maximum chunk length in Method.Unit().
	ChunkSize int
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint override.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions is the vector width every embedding must have.
	Dimensions int

	// Workers bounds the number of concurrent embedding requests.
	Workers int

	// BatchSize is the number of texts sent per request.
	BatchSize int

	// RequestsPerSecond limits the request rate. Zero disables limiting.
	RequestsPerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderAnthropic {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds generator configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint override.
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string

	// MaxTokens caps the generated answer length.
	MaxTokens int

	// Temperature is the sampling temperature, never negative.
	Temperature float64
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() || l.Provider == AIProviderLocal {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// VectorStoreSettings holds vector index configuration.
type VectorStoreSettings struct {
	// Backend selects the vector store implementation.
	Backend VectorBackend

	// IndexName is the Pinecone index name.
	IndexName string

	// Metric is the distance metric the index is created with.
	Metric DistanceMetric

	// TopK is the number of chunks retrieved per question.
	TopK int

	// APIKey is the Pinecone API key.
	APIKey string

	// Cloud is the serverless cloud provider (e.g. "aws").
	Cloud string

	// Region is the serverless region (the Pinecone environment).
	Region string

	// BaseURL overrides the Pinecone control plane endpoint.
	BaseURL string

	// Path is the SQLite database file. Empty means the data directory default.
	Path string
}

// PipelineSettings holds orchestrator configuration.
type PipelineSettings struct {
	// CallTimeout bounds every external call. Zero disables the bound.
	CallTimeout time.Duration
}

// EvaluationSettings holds evaluator configuration.
type EvaluationSettings struct {
	// Metrics are computed when a reference answer is given.
	Metrics []string
}

// AppSettings holds all application settings.
type AppSettings struct {
	Chunking    ChunkingSettings
	Embedding   EmbeddingSettings
	LLM         LLMSettings
	VectorStore VectorStoreSettings
	Pipeline    PipelineSettings
	Evaluation  EvaluationSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// The defaults run entirely locally except for the generator, which
// needs either an API key or a running Ollama instance.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Chunking: ChunkingSettings{
			Method:    ChunkSentences,
			ChunkSize: 100,
		},
		Embedding: EmbeddingSettings{
			Provider:   AIProviderLocal,
			Model:      DefaultEmbeddingModels()[AIProviderLocal],
			Dimensions: 384,
			Workers:    4,
			BatchSize:  16,
		},
		LLM: LLMSettings{
			Provider:    AIProviderOpenAI,
			Model:       DefaultLLMModels()[AIProviderOpenAI],
			MaxTokens:   300,
			Temperature: 0.7,
		},
		VectorStore: VectorStoreSettings{
			Backend:   VectorBackendSQLite,
			IndexName: "my-vector-index",
			Metric:    MetricEuclidean,
			TopK:      5,
			Cloud:     "aws",
			Region:    "us-east-1",
		},
		Pipeline: PipelineSettings{
			CallTimeout: 60 * time.Second,
		},
		Evaluation: EvaluationSettings{
			Metrics: DefaultMetrics(),
		},
	}
}

// Validate checks every setting and reports the first problem.
// Unknown or out-of-range values fail with ErrInvalidConfiguration,
// remote backends without a key fail with ErrMissingCredential.
func (s AppSettings) Validate() error {
	if !s.Chunking.Method.IsValid() {
		return fmt.Errorf("%w: unknown chunk method %q", ErrInvalidConfiguration, s.Chunking.Method)
	}
	if s.Chunking.ChunkSize < 1 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidConfiguration, s.Chunking.ChunkSize)
	}

	switch s.Embedding.Provider {
	case AIProviderLocal, AIProviderOllama, AIProviderOpenAI:
	default:
		return fmt.Errorf("%w: unknown embedding backend %q", ErrInvalidConfiguration, s.Embedding.Provider)
	}
	if s.Embedding.Provider.RequiresAPIKey() && s.Embedding.APIKey == "" {
		return fmt.Errorf("%w: %s embedding backend needs an API key", ErrMissingCredential, s.Embedding.Provider)
	}
	if s.Embedding.Dimensions < 1 {
		return fmt.Errorf("%w: embedding dimensions must be positive, got %d",
			ErrInvalidConfiguration, s.Embedding.Dimensions)
	}
	if s.Embedding.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: embedding rate limit must not be negative", ErrInvalidConfiguration)
	}

	switch s.LLM.Provider {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
	default:
		return fmt.Errorf("%w: unknown generator backend %q", ErrInvalidConfiguration, s.LLM.Provider)
	}
	if s.LLM.Provider.RequiresAPIKey() && s.LLM.APIKey == "" {
		return fmt.Errorf("%w: %s generator backend needs an API key", ErrMissingCredential, s.LLM.Provider)
	}
	if s.LLM.Temperature < 0 {
		return fmt.Errorf("%w: temperature must not be negative, got %g", ErrInvalidConfiguration, s.LLM.Temperature)
	}
	if s.LLM.MaxTokens < 1 {
		return fmt.Errorf("%w: max tokens must be positive, got %d", ErrInvalidConfiguration, s.LLM.MaxTokens)
	}

	if !s.VectorStore.Backend.IsValid() {
		return fmt.Errorf("%w: unknown vector backend %q", ErrInvalidConfiguration, s.VectorStore.Backend)
	}
	if !s.VectorStore.Metric.IsValid() {
		return fmt.Errorf("%w: unknown distance metric %q", ErrInvalidConfiguration, s.VectorStore.Metric)
	}
	if s.VectorStore.Backend.RequiresAPIKey() && s.VectorStore.APIKey == "" {
		return fmt.Errorf("%w: %s vector backend needs an API key", ErrMissingCredential, s.VectorStore.Backend)
	}
	if s.VectorStore.TopK < 1 {
		return fmt.Errorf("%w: top_k must be positive, got %d", ErrInvalidConfiguration, s.VectorStore.TopK)
	}

	for _, m := range s.Evaluation.Metrics {
		if !IsKnownMetric(m) {
			return fmt.Errorf("%w: unknown evaluation metric %q", ErrInvalidConfiguration, m)
		}
	}
	return nil
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderLocal,
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support generation.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderLocal:  "hashing-bow",
		AIProviderOllama: "all-minilm",
		AIProviderOpenAI: "text-embedding-ada-002",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-3.5-turbo-0125",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		"hashing-bow":            384,
		"all-minilm":             384,
		"nomic-embed-text":       768,
		"mxbai-embed-large":      1024,
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

// PipelineConfig holds post-processor pipeline configuration.
// Uses generic map-based config so processors can be added
// without modifying this struct.
type PipelineConfig struct {
	// Processors is the ordered list of processor names to run.
	Processors []string

	// ProcessorConfigs holds per-processor configuration as generic maps.
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns config for a specific processor, or nil if not set.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	if c.ProcessorConfigs == nil {
		return nil
	}
	return c.ProcessorConfigs[name]
}

// PipelineConfig returns the pipeline config that runs the chunker
// with these settings.
func (s ChunkingSettings) PipelineConfig() PipelineConfig {
	return PipelineConfig{
		Processors: []string{"chunker"},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {
				"method":     string(s.Method),
				"chunk_size": s.ChunkSize,
			},
		},
	}
}
