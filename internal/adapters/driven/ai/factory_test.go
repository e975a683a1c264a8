package ai

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docqa/internal/adapters/driven/vector/pinecone"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestInitResult_Close(t *testing.T) {
	t.Run("close with nil services", func(t *testing.T) {
		result := &InitResult{}
		// Should not panic
		result.Close()
	})
}

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name      string
		settings  *domain.EmbeddingSettings
		wantModel string
		wantDims  int
		wantErr   error
	}{
		{
			name:    "nil settings",
			wantErr: domain.ErrInvalidConfiguration,
		},
		{
			name:      "local provider",
			settings:  &domain.EmbeddingSettings{Provider: domain.AIProviderLocal, Dimensions: 64},
			wantModel: "hashing-bow",
			wantDims:  64,
		},
		{
			name: "ollama provider uses known model dimensions",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOllama,
				BaseURL:  "http://localhost:11434",
				Model:    "nomic-embed-text",
			},
			wantModel: "nomic-embed-text",
			wantDims:  768,
		},
		{
			name: "openai provider",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOpenAI,
				APIKey:   "test-key",
				Model:    "text-embedding-3-small",
			},
			wantModel: "text-embedding-3-small",
			wantDims:  1536,
		},
		{
			name:     "openai without key",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI},
			wantErr:  domain.ErrMissingCredential,
		},
		{
			name:     "anthropic does not embed",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderAnthropic, APIKey: "k"},
			wantErr:  domain.ErrInvalidConfiguration,
		},
		{
			name:     "unknown provider",
			settings: &domain.EmbeddingSettings{Provider: "unknown"},
			wantErr:  domain.ErrInvalidConfiguration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(tt.settings)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, svc)
				return
			}
			require.NoError(t, err)
			defer svc.Close()
			assert.Equal(t, tt.wantModel, svc.ModelName())
			assert.Equal(t, tt.wantDims, svc.Dimensions())
		})
	}
}

func TestCreateLLMService(t *testing.T) {
	tests := []struct {
		name      string
		settings  *domain.LLMSettings
		wantModel string
		wantErr   error
	}{
		{
			name:    "nil settings",
			wantErr: domain.ErrInvalidConfiguration,
		},
		{
			name: "ollama provider",
			settings: &domain.LLMSettings{
				Provider: domain.AIProviderOllama,
				BaseURL:  "http://localhost:11434",
				Model:    "llama3.2",
			},
			wantModel: "llama3.2",
		},
		{
			name:      "openai provider defaults model",
			settings:  &domain.LLMSettings{Provider: domain.AIProviderOpenAI, APIKey: "test-key"},
			wantModel: "gpt-3.5-turbo-0125",
		},
		{
			name: "anthropic provider",
			settings: &domain.LLMSettings{
				Provider: domain.AIProviderAnthropic,
				APIKey:   "test-key",
				Model:    "claude-3-5-sonnet-latest",
			},
			wantModel: "claude-3-5-sonnet-latest",
		},
		{
			name:     "openai without key",
			settings: &domain.LLMSettings{Provider: domain.AIProviderOpenAI},
			wantErr:  domain.ErrMissingCredential,
		},
		{
			name:     "anthropic without key",
			settings: &domain.LLMSettings{Provider: domain.AIProviderAnthropic},
			wantErr:  domain.ErrMissingCredential,
		},
		{
			name:     "local cannot generate",
			settings: &domain.LLMSettings{Provider: domain.AIProviderLocal},
			wantErr:  domain.ErrInvalidConfiguration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateLLMService(tt.settings)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, svc)
				return
			}
			require.NoError(t, err)
			defer svc.Close()
			assert.Equal(t, tt.wantModel, svc.ModelName())
		})
	}
}

func TestCreateVectorStore(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		index, chunks, store, err := CreateVectorStore(
			&domain.VectorStoreSettings{Backend: domain.VectorBackendMemory}, t.TempDir())

		require.NoError(t, err)
		assert.IsType(t, &memory.VectorIndex{}, index)
		assert.IsType(t, &memory.ChunkStore{}, chunks)
		assert.Nil(t, store)
	})

	t.Run("sqlite in data dir", func(t *testing.T) {
		dir := t.TempDir()
		index, chunks, store, err := CreateVectorStore(
			&domain.VectorStoreSettings{Backend: domain.VectorBackendSQLite}, dir)

		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &sqlite.VectorIndex{}, index)
		assert.NotNil(t, chunks)
		assert.Equal(t, filepath.Join(dir, sqlite.DatabaseFile), store.Path())
	})

	t.Run("sqlite explicit path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "vectors.db")
		_, _, store, err := CreateVectorStore(
			&domain.VectorStoreSettings{Backend: domain.VectorBackendSQLite, Path: path}, "")

		require.NoError(t, err)
		defer store.Close()
		assert.Equal(t, path, store.Path())
	})

	t.Run("pinecone keeps chunks locally", func(t *testing.T) {
		index, chunks, store, err := CreateVectorStore(&domain.VectorStoreSettings{
			Backend:   domain.VectorBackendPinecone,
			APIKey:    "pc-key",
			IndexName: "docs",
		}, t.TempDir())

		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &pinecone.VectorIndex{}, index)
		assert.NotNil(t, chunks)
	})

	t.Run("pinecone without key", func(t *testing.T) {
		_, _, _, err := CreateVectorStore(&domain.VectorStoreSettings{
			Backend:   domain.VectorBackendPinecone,
			IndexName: "docs",
		}, t.TempDir())

		assert.ErrorIs(t, err, domain.ErrMissingCredential)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, _, _, err := CreateVectorStore(&domain.VectorStoreSettings{Backend: "faiss"}, t.TempDir())

		assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
	})
}

func TestInit(t *testing.T) {
	t.Run("missing generator key is deferred", func(t *testing.T) {
		settings := domain.DefaultAppSettings()
		settings.LLM.APIKey = ""

		result, err := Init(&settings, t.TempDir(), true)

		require.NoError(t, err)
		defer result.Close()
		assert.NotNil(t, result.EmbeddingService)
		assert.Nil(t, result.LLMService)
		assert.ErrorIs(t, result.LLMErr, domain.ErrMissingCredential)
		assert.IsType(t, &memory.VectorIndex{}, result.VectorIndex)
	})

	t.Run("sqlite backend", func(t *testing.T) {
		settings := domain.DefaultAppSettings()
		settings.LLM.Provider = domain.AIProviderOllama

		result, err := Init(&settings, t.TempDir(), false)

		require.NoError(t, err)
		defer result.Close()
		assert.NotNil(t, result.LLMService)
		assert.NoError(t, result.LLMErr)
		assert.IsType(t, &sqlite.VectorIndex{}, result.VectorIndex)
	})

	t.Run("bad embedding provider fails", func(t *testing.T) {
		settings := domain.DefaultAppSettings()
		settings.Embedding.Provider = domain.AIProviderAnthropic

		_, err := Init(&settings, t.TempDir(), true)

		assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
	})
}

func TestValidateEmbeddingConfig_Local(t *testing.T) {
	err := ValidateEmbeddingConfig(&domain.EmbeddingSettings{Provider: domain.AIProviderLocal})

	assert.NoError(t, err)
}

func TestValidateLLMConfig_MissingKey(t *testing.T) {
	err := ValidateLLMConfig(&domain.LLMSettings{Provider: domain.AIProviderOpenAI})

	assert.ErrorIs(t, err, domain.ErrMissingCredential)
}
