// Package ollamaapi is the HTTP client shared by the Ollama embedding and
// generation adapters.
package ollamaapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is where a local Ollama server listens.
const DefaultBaseURL = "http://localhost:11434"

// maxErrorBody bounds how much of an error reply is read.
const maxErrorBody = 4 << 10

// Client calls the Ollama REST API.
type Client struct {
	http    *http.Client
	baseURL string
}

// New creates a client for baseURL. Empty baseURL means DefaultBaseURL;
// zero timeout means no per-request limit beyond the context.
func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// BaseURL returns the server address without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Post sends in as JSON to path and decodes the reply into out.
// Transport failures, non-200 replies and replies carrying an "error"
// field are wrapped in unavailable.
func (c *Client) Post(ctx context.Context, path string, in, out any, unavailable error) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: ollama: %w", unavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: ollama status %d: %s", unavailable, resp.StatusCode, readError(resp.Body))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: ollama: read response: %w", unavailable, err)
	}
	var reply struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &reply); err == nil && reply.Error != "" {
		return fmt.Errorf("%w: ollama: %s", unavailable, reply.Error)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: ollama: decode response: %w", unavailable, err)
	}
	return nil
}

// Ping checks the server answers on /api/tags without running a model.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("ollama: create ping request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ollama: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama: ping returned status %d: %s", resp.StatusCode, readError(resp.Body))
	}
	return nil
}

// readError extracts the message of an error reply. Ollama usually sends
// {"error": "..."}; anything else is returned as trimmed text.
func readError(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil {
		return "failed to read response"
	}
	var reply struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &reply) == nil && reply.Error != "" {
		return reply.Error
	}
	return strings.TrimSpace(string(raw))
}
