// Command docqa answers questions about a single document.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/docqa/internal/adapters/driven/ai"
	"github.com/custodia-labs/docqa/internal/adapters/driven/config/env"
	"github.com/custodia-labs/docqa/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docqa/internal/adapters/driving/cli"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/services"
	"github.com/custodia-labs/docqa/internal/logger"
	"github.com/custodia-labs/docqa/internal/normalisers"
	"github.com/custodia-labs/docqa/internal/postprocessors"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)

	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func bootstrap(opts cli.Options) (*cli.Services, error) {
	dir := opts.ConfigDir
	if dir == "" {
		var err error
		dir, err = file.DefaultDir()
		if err != nil {
			return nil, err
		}
	}

	store, err := file.NewConfigStore(dir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	settingsService := services.NewSettingsService(store)

	vars, err := env.Load(".env", filepath.Join(dir, ".env"))
	if err != nil {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	settings, err := settingsService.Get()
	if err != nil {
		return nil, err
	}
	env.Apply(settings, vars)

	evaluator, err := services.NewEvaluator(settings.Evaluation.Metrics...)
	if err != nil {
		return nil, err
	}

	svc := &cli.Services{
		Evaluator: evaluator,
		Settings:  settingsService,
		CheckEmbedding: func(s *domain.EmbeddingSettings) error {
			withEnv := &domain.AppSettings{Embedding: *s}
			env.Apply(withEnv, vars)
			return ai.ValidateEmbeddingConfig(&withEnv.Embedding)
		},
		CheckLLM: func(s *domain.LLMSettings) error {
			withEnv := &domain.AppSettings{LLM: *s}
			env.Apply(withEnv, vars)
			return ai.ValidateLLMConfig(&withEnv.LLM)
		},
	}
	if !opts.Pipeline {
		return svc, nil
	}

	res, err := ai.Init(settings, dir, opts.Ephemeral)
	if err != nil {
		return nil, err
	}
	if res.LLMErr != nil {
		logger.Warn("generator unavailable, answers will fail: %v", res.LLMErr)
	}

	pipeline, err := postprocessors.NewDefaultRegistry().BuildPipeline(settings.Chunking.PipelineConfig())
	if err != nil {
		res.Close()
		return nil, err
	}

	embedder, err := services.NewEmbedder(res.EmbeddingService, services.EmbedderOptions{
		Dimensions:     settings.Embedding.Dimensions,
		Workers:        settings.Embedding.Workers,
		BatchSize:      settings.Embedding.BatchSize,
		Limiter:        services.NewRateLimiter(settings.Embedding.RequestsPerSecond),
		RequestTimeout: settings.Pipeline.CallTimeout,
	})
	if err != nil {
		res.Close()
		return nil, err
	}

	rag := services.NewRAGService(
		normalisers.NewDefaultRegistry(),
		pipeline,
		embedder,
		res.VectorIndex,
		res.LLMService,
		evaluator,
		services.RAGConfigFromSettings(settings),
	)
	rag.SetChunkStore(res.ChunkStore)

	prompts, err := file.NewPromptStore(filepath.Join(dir, "prompts"))
	if err != nil {
		logger.Warn("prompt store unavailable, using the built-in prompt: %v", err)
	} else {
		rag.SetPromptStore(prompts)
	}

	svc.RAG = rag
	svc.Close = res.Close
	return svc, nil
}
