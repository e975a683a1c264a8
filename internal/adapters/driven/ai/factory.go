// Package ai provides factory functions for creating the embedding,
// generator and vector store adapters selected in settings.
package ai

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	localembed "github.com/custodia-labs/docqa/internal/adapters/driven/embedding/local"
	ollamaembed "github.com/custodia-labs/docqa/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/docqa/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/docqa/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/docqa/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/docqa/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docqa/internal/adapters/driven/vector/pinecone"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult contains the adapters built from settings.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService
	VectorIndex      driven.VectorIndex
	ChunkStore       driven.ChunkStore

	// LLMErr is set when the generator could not be created. Preparing a
	// document does not need one, so it is reported on first use instead.
	LLMErr error

	store *sqlite.Store
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.VectorIndex != nil {
		r.VectorIndex.Close()
	}
	if r.LLMService != nil {
		r.LLMService.Close()
	}
	if r.store != nil {
		r.store.Close()
	}
}

// Init builds every adapter the pipeline needs. dataDir holds the SQLite
// database; ephemeral forces the in-memory vector index and chunk store.
func Init(settings *domain.AppSettings, dataDir string, ephemeral bool) (*InitResult, error) {
	result := &InitResult{}

	embedder, err := CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		return nil, err
	}
	result.EmbeddingService = embedder

	llm, err := CreateLLMService(&settings.LLM)
	if err != nil {
		logger.Debug("generator unavailable: %v", err)
		result.LLMErr = err
	} else {
		result.LLMService = llm
	}

	vs := settings.VectorStore
	if ephemeral {
		vs.Backend = domain.VectorBackendMemory
	}
	index, chunks, store, err := CreateVectorStore(&vs, dataDir)
	if err != nil {
		result.Close()
		return nil, err
	}
	result.VectorIndex = index
	result.ChunkStore = chunks
	result.store = store

	return result, nil
}

// CreateEmbeddingService creates the embedding service selected in settings.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: no embedding settings", domain.ErrInvalidConfiguration)
	}

	switch settings.Provider {
	case domain.AIProviderLocal:
		svc, err := localembed.NewEmbeddingService(localembed.Config{Dimensions: settings.Dimensions})
		if err != nil {
			return nil, err
		}
		return svc, nil

	case domain.AIProviderOllama:
		return createOllamaEmbedding(settings), nil

	case domain.AIProviderOpenAI:
		return createOpenAIEmbedding(settings)

	case domain.AIProviderAnthropic:
		return nil, fmt.Errorf("%w: anthropic does not support embeddings, use local, ollama or openai",
			domain.ErrInvalidConfiguration)

	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider %q",
			domain.ErrInvalidConfiguration, settings.Provider)
	}
}

// CreateLLMService creates the generator selected in settings.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: no generator settings", domain.ErrInvalidConfiguration)
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		svc, err := openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
		if err != nil {
			return nil, err
		}
		return svc, nil

	case domain.AIProviderAnthropic:
		svc, err := anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
		if err != nil {
			return nil, err
		}
		return svc, nil

	default:
		return nil, fmt.Errorf("%w: unsupported generator provider %q",
			domain.ErrInvalidConfiguration, settings.Provider)
	}
}

// CreateVectorStore creates the vector index and the chunk store that
// persists alongside it. The returned SQLite store, when non-nil, must be
// closed by the caller.
//
// Pinecone keeps vectors remotely, but chunk text still lives in the local
// database so another process can resolve matches back to chunks.
func CreateVectorStore(
	settings *domain.VectorStoreSettings,
	dataDir string,
) (driven.VectorIndex, driven.ChunkStore, *sqlite.Store, error) {
	if settings == nil {
		return nil, nil, nil, fmt.Errorf("%w: no vector store settings", domain.ErrInvalidConfiguration)
	}

	switch settings.Backend {
	case domain.VectorBackendMemory:
		return memory.NewVectorIndex(), memory.NewChunkStore(), nil, nil

	case domain.VectorBackendSQLite:
		store, err := openStore(settings.Path, dataDir)
		if err != nil {
			return nil, nil, nil, err
		}
		return store.VectorIndex(), store.ChunkStore(), store, nil

	case domain.VectorBackendPinecone:
		index, err := pinecone.New(pinecone.Config{
			APIKey:    settings.APIKey,
			IndexName: settings.IndexName,
			Cloud:     settings.Cloud,
			Region:    settings.Region,
			BaseURL:   settings.BaseURL,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		store, err := openStore(settings.Path, dataDir)
		if err != nil {
			return nil, nil, nil, err
		}
		return index, store.ChunkStore(), store, nil

	default:
		return nil, nil, nil, fmt.Errorf("%w: unsupported vector backend %q",
			domain.ErrInvalidConfiguration, settings.Backend)
	}
}

// ValidateEmbeddingConfig creates an embedding service and pings it.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%w: service unreachable (%w). Run 'docqa settings check' after fixing",
			domain.ErrEmbeddingUnavailable, err)
	}
	return nil
}

// ValidateLLMConfig creates a generator and pings it.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%w: service unreachable (%w). Run 'docqa settings check' after fixing",
			domain.ErrLLMUnavailable, err)
	}
	return nil
}

func openStore(path, dataDir string) (*sqlite.Store, error) {
	if path != "" {
		store, err := sqlite.Open(filepath.Clean(path))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrVectorIndexUnavailable, err)
		}
		return store, nil
	}
	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrVectorIndexUnavailable, err)
	}
	return store, nil
}

// createOllamaEmbedding creates an Ollama embedding service.
func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	dimensions := settings.Dimensions
	if dimensions == 0 {
		dimensions = domain.EmbeddingDimensions()[settings.Model]
	}

	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}

// createOpenAIEmbedding creates an OpenAI embedding service.
func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	dimensions := settings.Dimensions
	if dimensions == 0 {
		dimensions = domain.EmbeddingDimensions()[settings.Model]
	}

	svc, err := openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
	if err != nil {
		return nil, err
	}
	return svc, nil
}
