// Package pinecone provides a vector index adapter for the hosted Pinecone
// service, speaking its REST API directly.
//
// The control plane (api.pinecone.io) creates, describes and deletes
// serverless indexes. Data plane requests go to the host reported by the
// describe call.
package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interfaces.
var (
	_ driven.VectorIndex  = (*VectorIndex)(nil)
	_ driven.IndexDeleter = (*VectorIndex)(nil)
)

// Default configuration values.
const (
	DefaultBaseURL      = "https://api.pinecone.io"
	DefaultCloud        = "aws"
	DefaultRegion       = "us-east-1"
	DefaultTimeout      = 30 * time.Second
	DefaultPollInterval = time.Second
	DefaultUpsertBatch  = 100

	apiVersion = "2024-07"
)

// errIndexNotFound is returned by describe when the index does not exist.
var errIndexNotFound = errors.New("pinecone: index not found")

// Config holds configuration for the Pinecone vector index.
type Config struct {
	// APIKey is the Pinecone API key (required).
	APIKey string

	// IndexName is the index to use or create (required).
	IndexName string

	// Cloud is the serverless cloud provider (default: aws).
	Cloud string

	// Region is the serverless region (default: us-east-1).
	Region string

	// Namespace partitions vectors within the index. Empty is the default namespace.
	Namespace string

	// BaseURL overrides the control plane endpoint.
	BaseURL string

	// Timeout is the per-request timeout (default: 30s).
	Timeout time.Duration

	// PollInterval is how often index readiness is checked after creation.
	PollInterval time.Duration

	// UpsertBatch is the number of vectors sent per upsert request.
	UpsertBatch int
}

// VectorIndex stores vectors in a Pinecone serverless index.
type VectorIndex struct {
	client *http.Client
	cfg    Config

	mu     sync.RWMutex
	host   string
	metric domain.DistanceMetric
}

type indexSpec struct {
	Serverless struct {
		Cloud  string `json:"cloud"`
		Region string `json:"region"`
	} `json:"serverless"`
}

type createIndexRequest struct {
	Name      string    `json:"name"`
	Dimension int       `json:"dimension"`
	Metric    string    `json:"metric"`
	Spec      indexSpec `json:"spec"`
}

type indexDescription struct {
	Name      string `json:"name"`
	Dimension int    `json:"dimension"`
	Metric    string `json:"metric"`
	Host      string `json:"host"`
	Status    struct {
		Ready bool   `json:"ready"`
		State string `json:"state"`
	} `json:"status"`
}

type vector struct {
	ID     string    `json:"id"`
	Values []float32 `json:"values"`
}

type upsertRequest struct {
	Vectors   []vector `json:"vectors"`
	Namespace string   `json:"namespace,omitempty"`
}

type queryRequest struct {
	Vector        []float32 `json:"vector"`
	TopK          int       `json:"topK"`
	IncludeValues bool      `json:"includeValues"`
	Namespace     string    `json:"namespace,omitempty"`
}

// queryMatch uses pointers so missing fields can be told apart from zero values.
type queryMatch struct {
	ID     *string   `json:"id"`
	Score  *float64  `json:"score"`
	Values []float32 `json:"values"`
}

type queryResponse struct {
	Matches *[]queryMatch `json:"matches"`
}

type deleteRequest struct {
	DeleteAll bool   `json:"deleteAll"`
	Namespace string `json:"namespace,omitempty"`
}

// New creates a Pinecone vector index. No request is made until EnsureIndex.
func New(cfg Config) (*VectorIndex, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: pinecone API key is required", domain.ErrMissingCredential)
	}
	if cfg.IndexName == "" {
		return nil, fmt.Errorf("%w: pinecone index name is required", domain.ErrInvalidConfiguration)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Cloud == "" {
		cfg.Cloud = DefaultCloud
	}
	if cfg.Region == "" {
		cfg.Region = DefaultRegion
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.UpsertBatch < 1 {
		cfg.UpsertBatch = DefaultUpsertBatch
	}

	return &VectorIndex{
		client: &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
	}, nil
}

// EnsureIndex creates the index when it does not exist and waits until it
// is ready. An existing index with a different dimension or metric fails
// with ErrInvalidConfiguration.
func (v *VectorIndex) EnsureIndex(ctx context.Context, dimension int, metric domain.DistanceMetric) error {
	if dimension < 1 {
		return fmt.Errorf("%w: dimension must be positive, got %d", domain.ErrInvalidConfiguration, dimension)
	}
	if !metric.IsValid() {
		return fmt.Errorf("%w: unknown distance metric %q", domain.ErrInvalidConfiguration, metric)
	}

	desc, err := v.describe(ctx)
	switch {
	case errors.Is(err, errIndexNotFound):
		if err := v.create(ctx, dimension, metric); err != nil {
			return err
		}
		desc, err = v.waitReady(ctx)
		if err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		if desc.Dimension != dimension || domain.DistanceMetric(desc.Metric) != metric {
			return fmt.Errorf("%w: pinecone index %s exists with dimension %d and metric %s",
				domain.ErrInvalidConfiguration, v.cfg.IndexName, desc.Dimension, desc.Metric)
		}
		if !desc.Status.Ready {
			if desc, err = v.waitReady(ctx); err != nil {
				return err
			}
		}
	}

	v.mu.Lock()
	v.host = hostURL(desc.Host)
	v.metric = metric
	v.mu.Unlock()
	return nil
}

// Upsert writes vectors in batches of Config.UpsertBatch.
func (v *VectorIndex) Upsert(ctx context.Context, ids []string, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("%w: %d ids for %d vectors", domain.ErrInvalidInput, len(ids), len(vectors))
	}
	host, _, err := v.connected()
	if err != nil {
		return err
	}

	for start := 0; start < len(ids); start += v.cfg.UpsertBatch {
		end := min(start+v.cfg.UpsertBatch, len(ids))
		req := upsertRequest{Namespace: v.cfg.Namespace, Vectors: make([]vector, 0, end-start)}
		for i := start; i < end; i++ {
			req.Vectors = append(req.Vectors, vector{ID: ids[i], Values: vectors[i]})
		}
		if err := v.do(ctx, http.MethodPost, host+"/vectors/upsert", req, nil); err != nil {
			return fmt.Errorf("pinecone: upsert vectors %d-%d: %w", start, end-1, err)
		}
	}
	return nil
}

// Search queries the index. Euclidean scores come back as squared
// distances and are converted to 1/(1+distance) so higher is closer for
// every metric. A reply without a matches list, or with a match missing
// its id or score, fails with ErrRetrieval.
func (v *VectorIndex) Search(ctx context.Context, query []float32, k int) ([]domain.Match, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidInput, k)
	}
	host, metric, err := v.connected()
	if err != nil {
		return nil, err
	}

	var resp queryResponse
	req := queryRequest{Vector: query, TopK: k, IncludeValues: true, Namespace: v.cfg.Namespace}
	if err := v.do(ctx, http.MethodPost, host+"/query", req, &resp); err != nil {
		return nil, fmt.Errorf("%w: pinecone query: %w", domain.ErrRetrieval, err)
	}

	if resp.Matches == nil {
		return nil, fmt.Errorf("%w: pinecone query reply has no matches", domain.ErrRetrieval)
	}

	matches := make([]domain.Match, 0, len(*resp.Matches))
	for i, m := range *resp.Matches {
		if m.ID == nil || m.Score == nil {
			return nil, fmt.Errorf("%w: pinecone match %d is missing its id or score", domain.ErrRetrieval, i)
		}
		score := *m.Score
		if metric == domain.MetricEuclidean {
			score = 1 / (1 + math.Sqrt(math.Max(score, 0)))
		}
		matches = append(matches, domain.Match{ID: *m.ID, Score: score, Vector: m.Values})
	}
	return matches, nil
}

// Reset deletes every vector in the configured namespace.
// A namespace that was never written is not an error.
func (v *VectorIndex) Reset(ctx context.Context) error {
	host, _, err := v.connected()
	if err != nil {
		return err
	}
	err = v.do(ctx, http.MethodPost, host+"/vectors/delete",
		deleteRequest{DeleteAll: true, Namespace: v.cfg.Namespace}, nil)
	if errors.Is(err, errIndexNotFound) {
		return nil
	}
	return err
}

// DeleteIndex removes the index. A missing index is not an error.
func (v *VectorIndex) DeleteIndex(ctx context.Context) error {
	err := v.do(ctx, http.MethodDelete, v.cfg.BaseURL+"/indexes/"+v.cfg.IndexName, nil, nil)
	if err != nil && !errors.Is(err, errIndexNotFound) {
		return err
	}
	v.mu.Lock()
	v.host = ""
	v.metric = ""
	v.mu.Unlock()
	return nil
}

// Close releases resources.
func (v *VectorIndex) Close() error {
	v.client.CloseIdleConnections()
	return nil
}

func (v *VectorIndex) connected() (string, domain.DistanceMetric, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.host == "" {
		return "", "", fmt.Errorf("%w: pinecone index %s not ensured", domain.ErrVectorIndexUnavailable, v.cfg.IndexName)
	}
	return v.host, v.metric, nil
}

func (v *VectorIndex) describe(ctx context.Context) (*indexDescription, error) {
	var desc indexDescription
	if err := v.do(ctx, http.MethodGet, v.cfg.BaseURL+"/indexes/"+v.cfg.IndexName, nil, &desc); err != nil {
		return nil, err
	}
	return &desc, nil
}

func (v *VectorIndex) create(ctx context.Context, dimension int, metric domain.DistanceMetric) error {
	req := createIndexRequest{Name: v.cfg.IndexName, Dimension: dimension, Metric: string(metric)}
	req.Spec.Serverless.Cloud = v.cfg.Cloud
	req.Spec.Serverless.Region = v.cfg.Region
	if err := v.do(ctx, http.MethodPost, v.cfg.BaseURL+"/indexes", req, nil); err != nil {
		return fmt.Errorf("pinecone: create index %s: %w", v.cfg.IndexName, err)
	}
	return nil
}

func (v *VectorIndex) waitReady(ctx context.Context) (*indexDescription, error) {
	ticker := time.NewTicker(v.cfg.PollInterval)
	defer ticker.Stop()
	for {
		desc, err := v.describe(ctx)
		if err != nil && !errors.Is(err, errIndexNotFound) {
			return nil, err
		}
		if err == nil && desc.Status.Ready && desc.Host != "" {
			return desc, nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: waiting for pinecone index %s: %w",
				domain.ErrVectorIndexUnavailable, v.cfg.IndexName, ctx.Err())
		case <-ticker.C:
		}
	}
}

// do sends a JSON request and decodes a JSON response into out when out is non-nil.
func (v *VectorIndex) do(ctx context.Context, method, url string, body, out any) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Api-Key", v.cfg.APIKey)
	req.Header.Set("X-Pinecone-API-Version", apiVersion)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: pinecone: %w", domain.ErrVectorIndexUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errIndexNotFound
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: pinecone rejected the API key (status %d)",
			domain.ErrMissingCredential, resp.StatusCode)
	case resp.StatusCode >= http.StatusBadRequest:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: pinecone status %d: %s",
			domain.ErrVectorIndexUnavailable, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// hostURL adds a scheme to a bare host returned by the control plane.
func hostURL(host string) string {
	if strings.HasPrefix(host, "http://") || strings.HasPrefix(host, "https://") {
		return strings.TrimRight(host, "/")
	}
	return "https://" + strings.TrimRight(host, "/")
}
