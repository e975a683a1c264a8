package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

func TestNewLLMService_RequiresAPIKey(t *testing.T) {
	_, err := NewLLMService(LLMConfig{})

	assert.ErrorIs(t, err, domain.ErrMissingCredential)
}

func TestNewLLMService_Defaults(t *testing.T) {
	svc, err := NewLLMService(LLMConfig{APIKey: "sk-test"})

	require.NoError(t, err)
	assert.Equal(t, DefaultLLMModel, svc.ModelName())
	assert.NoError(t, svc.Close())
}

func TestLLMService_Generate(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","model":"gpt-3.5-turbo-0125",
			"choices":[{"index":0,"message":{"role":"assistant","content":"  The answer.\n"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	svc, err := NewLLMService(LLMConfig{APIKey: "sk-test", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)

	text, err := svc.Generate(context.Background(), "context and question", driven.GenerateOptions{MaxTokens: 300})

	require.NoError(t, err)
	assert.Equal(t, "The answer.", text)
	assert.Equal(t, "gpt-3.5-turbo-0125", got["model"])
	assert.InDelta(t, 300, got["max_tokens"], 1e-9)
	messages, ok := got["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 1)
	assert.Equal(t, map[string]any{"role": "user", "content": "context and question"}, messages[0])
}

func TestLLMService_Generate_Temperature(t *testing.T) {
	tests := []struct {
		name        string
		temperature float64
		check       func(t *testing.T, got float64)
	}{
		{
			name:        "zero is sent as near-zero",
			temperature: 0,
			check: func(t *testing.T, got float64) {
				assert.Greater(t, got, 0.0)
				assert.Less(t, got, 1e-30)
			},
		},
		{
			name:        "explicit value passed through",
			temperature: 0.5,
			check: func(t *testing.T, got float64) {
				assert.InDelta(t, 0.5, got, 1e-6)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got map[string]any
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"ok"}}]}`))
			}))
			defer srv.Close()

			svc, err := NewLLMService(LLMConfig{APIKey: "sk-test", BaseURL: srv.URL + "/v1"})
			require.NoError(t, err)

			_, err = svc.Generate(context.Background(), "q", driven.GenerateOptions{Temperature: tt.temperature})

			require.NoError(t, err)
			raw, ok := got["temperature"]
			require.True(t, ok, "temperature missing from request body")
			value, ok := raw.(float64)
			require.True(t, ok)
			tt.check(t, value)
		})
	}
}

func TestLLMService_Generate_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","choices":[]}`))
	}))
	defer srv.Close()

	svc, err := NewLLMService(LLMConfig{APIKey: "sk-test", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), "q", driven.GenerateOptions{})

	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestLLMService_Generate_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"context length exceeded","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	svc, err := NewLLMService(LLMConfig{APIKey: "sk-test", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), "q", driven.GenerateOptions{})

	require.ErrorIs(t, err, domain.ErrLLMUnavailable)
	assert.Contains(t, err.Error(), "context length exceeded")
}
