// Package ollama provides an LLM service adapter using Ollama.
package ollama

import (
	"context"
	"time"

	"github.com/custodia-labs/docqa/internal/adapters/driven/ollamaapi"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultLLMModel   = "llama3.2"
	DefaultLLMTimeout = 120 * time.Second
)

// LLMConfig holds configuration for the Ollama LLM service.
type LLMConfig struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the LLM model to use (default: llama3.2).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// LLMService generates answers with a local Ollama model.
type LLMService struct {
	client *ollamaapi.Client
	model  string
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options *generateParams `json:"options,omitempty"`
}

// generateParams are the sampling parameters Ollama calls "options".
// Temperature is a pointer so an explicit zero reaches the server.
type generateParams struct {
	NumPredict  int      `json:"num_predict,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// NewLLMService creates a new Ollama LLM service.
func NewLLMService(cfg LLMConfig) *LLMService {
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}

	return &LLMService{
		client: ollamaapi.New(cfg.BaseURL, cfg.Timeout),
		model:  cfg.Model,
	}
}

// Generate produces a non-streamed completion for prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	req := generateRequest{
		Model:   s.model,
		Prompt:  prompt,
		Options: paramsFor(opts),
	}

	var resp generateResponse
	if err := s.client.Post(ctx, "/api/generate", req, &resp, domain.ErrLLMUnavailable); err != nil {
		return "", err
	}
	return resp.Response, nil
}

// paramsFor always carries the temperature, so zero is not replaced by
// the model default.
func paramsFor(opts driven.GenerateOptions) *generateParams {
	temperature := opts.Temperature
	return &generateParams{
		NumPredict:  opts.MaxTokens,
		Temperature: &temperature,
		Stop:        opts.StopWords,
	}
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping checks the server is reachable without loading the model.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
