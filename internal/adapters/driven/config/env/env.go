// Package env reads credentials from the process environment and .env files.
//
// Values found here only fill settings the config file left empty, so a
// key saved with `docqa settings set` always wins.
package env

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// Recognised environment variables.
const (
	OpenAIAPIKey        = "OPENAI_API_KEY"
	AnthropicAPIKey     = "ANTHROPIC_API_KEY"
	PineconeAPIKey      = "PINECONE_API_KEY"
	PineconeEnvironment = "PINECONE_ENVIRONMENT"
	OllamaHost          = "OLLAMA_HOST"
)

// Vars is a snapshot of environment variables.
type Vars map[string]string

// Load reads the given .env files and overlays the process environment.
// Missing files are skipped; variables already set in the process win
// over file values, as with godotenv.Load.
func Load(files ...string) (Vars, error) {
	vars := make(Vars)
	for _, f := range files {
		read, err := godotenv.Read(f)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		for k, v := range read {
			if _, ok := vars[k]; !ok {
				vars[k] = v
			}
		}
	}
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok && v != "" {
			vars[k] = v
		}
	}
	return vars, nil
}

// Apply fills empty credential and endpoint settings from vars.
func Apply(s *domain.AppSettings, vars Vars) {
	fill(&s.Embedding.APIKey, vars[OpenAIAPIKey], s.Embedding.Provider == domain.AIProviderOpenAI)
	fill(&s.Embedding.BaseURL, vars[OllamaHost], s.Embedding.Provider == domain.AIProviderOllama)

	switch s.LLM.Provider {
	case domain.AIProviderOpenAI:
		fill(&s.LLM.APIKey, vars[OpenAIAPIKey], true)
	case domain.AIProviderAnthropic:
		fill(&s.LLM.APIKey, vars[AnthropicAPIKey], true)
	case domain.AIProviderOllama:
		fill(&s.LLM.BaseURL, vars[OllamaHost], true)
	}

	pinecone := s.VectorStore.Backend == domain.VectorBackendPinecone
	fill(&s.VectorStore.APIKey, vars[PineconeAPIKey], pinecone)
	fill(&s.VectorStore.Region, vars[PineconeEnvironment], pinecone)
}

func fill(dst *string, value string, applies bool) {
	if applies && *dst == "" && value != "" {
		*dst = value
	}
}
