package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/adapters/driven/ollamaapi"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

func TestNewLLMService_Defaults(t *testing.T) {
	svc := NewLLMService(LLMConfig{})

	assert.Equal(t, DefaultLLMModel, svc.ModelName())
	assert.Equal(t, ollamaapi.DefaultBaseURL, svc.client.BaseURL())
	assert.NoError(t, svc.Close())
}

func TestLLMService_Generate(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"response":"Paris.","done":true}`))
	}))
	defer srv.Close()

	svc := NewLLMService(LLMConfig{BaseURL: srv.URL + "/", Model: "mistral"})
	text, err := svc.Generate(context.Background(), "Capital of France?", driven.GenerateOptions{
		MaxTokens:   300,
		Temperature: 0.7,
	})

	require.NoError(t, err)
	assert.Equal(t, "Paris.", text)
	assert.Equal(t, "mistral", got.Model)
	assert.Equal(t, "Capital of France?", got.Prompt)
	assert.False(t, got.Stream)
	require.NotNil(t, got.Options)
	assert.Equal(t, 300, got.Options.NumPredict)
	require.NotNil(t, got.Options.Temperature)
	assert.InDelta(t, 0.7, *got.Options.Temperature, 1e-9)
}

func TestLLMService_Generate_ZeroTemperatureSent(t *testing.T) {
	var raw map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		_, _ = w.Write([]byte(`{"response":"ok","done":true}`))
	}))
	defer srv.Close()

	_, err := NewLLMService(LLMConfig{BaseURL: srv.URL}).Generate(context.Background(), "q", driven.GenerateOptions{})

	require.NoError(t, err)
	options, ok := raw["options"].(map[string]any)
	require.True(t, ok, "options missing from request body")
	temperature, ok := options["temperature"]
	require.True(t, ok, "temperature missing from options")
	assert.InDelta(t, 0.0, temperature, 1e-9)
}

func TestParamsFor(t *testing.T) {
	p := paramsFor(driven.GenerateOptions{})
	require.NotNil(t, p)
	require.NotNil(t, p.Temperature)
	assert.Zero(t, *p.Temperature)
	assert.Zero(t, p.NumPredict)

	p = paramsFor(driven.GenerateOptions{MaxTokens: 10})
	require.NotNil(t, p)
	require.NotNil(t, p.Temperature)
	assert.Zero(t, *p.Temperature)

	p = paramsFor(driven.GenerateOptions{StopWords: []string{"\n\n"}})
	require.NotNil(t, p)
	assert.Equal(t, []string{"\n\n"}, p.Stop)
}

func TestLLMService_Generate_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"model not loaded"}`))
	}))
	defer srv.Close()

	_, err := NewLLMService(LLMConfig{BaseURL: srv.URL}).Generate(context.Background(), "q", driven.GenerateOptions{})

	require.ErrorIs(t, err, domain.ErrLLMUnavailable)
	assert.Contains(t, err.Error(), "model not loaded")
}

func TestLLMService_Ping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	defer srv.Close()

	assert.NoError(t, NewLLMService(LLMConfig{BaseURL: srv.URL}).Ping(context.Background()))
}
