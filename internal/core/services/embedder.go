package services

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// EmbedderOptions configures an Embedder.
type EmbedderOptions struct {
	// Dimensions is the required vector width. Zero uses the backend's.
	Dimensions int

	// Workers bounds concurrent backend requests. Zero uses GOMAXPROCS.
	Workers int

	// BatchSize is the number of texts per backend request. Zero means 16.
	BatchSize int

	// ClampMin and ClampMax bound every normalised component.
	// Both zero means DefaultClampMin and DefaultClampMax.
	ClampMin float64
	ClampMax float64

	// Limiter throttles backend requests. Nil disables throttling.
	Limiter *rate.Limiter

	// RequestTimeout bounds each backend request. Zero means no bound.
	RequestTimeout time.Duration
}

// Embedder turns text into normalised vectors using a backend.
// Results always match the input in length and order.
type Embedder struct {
	backend driven.EmbeddingService
	opts    EmbedderOptions
}

// NewEmbedder creates an embedder over backend.
func NewEmbedder(backend driven.EmbeddingService, opts EmbedderOptions) (*Embedder, error) {
	if backend == nil {
		return nil, fmt.Errorf("%w: embedding backend is nil", domain.ErrInvalidConfiguration)
	}
	if opts.Dimensions == 0 {
		opts.Dimensions = backend.Dimensions()
	}
	if opts.Dimensions < 1 {
		return nil, fmt.Errorf("%w: embedding dimensions must be positive", domain.ErrInvalidConfiguration)
	}
	if opts.Workers < 1 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.BatchSize < 1 {
		opts.BatchSize = 16
	}
	if opts.ClampMin == 0 && opts.ClampMax == 0 {
		opts.ClampMin, opts.ClampMax = DefaultClampMin, DefaultClampMax
	}
	if opts.ClampMin > opts.ClampMax {
		return nil, fmt.Errorf("%w: clamp range [%g,%g] is empty",
			domain.ErrInvalidConfiguration, opts.ClampMin, opts.ClampMax)
	}
	return &Embedder{backend: backend, opts: opts}, nil
}

// NewRateLimiter returns a limiter for rps requests per second, or nil
// when rps is zero.
func NewRateLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// Dimensions returns the width of every vector this embedder produces.
func (e *Embedder) Dimensions() int {
	return e.opts.Dimensions
}

// ModelName returns the backend model name.
func (e *Embedder) ModelName() string {
	return e.backend.ModelName()
}

// Embed returns one normalised vector per text, in input order.
// Batches are embedded concurrently by a bounded worker pool; the first
// failure cancels the rest.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	if len(texts) == 0 {
		return out, nil
	}
	defer logger.Timed(fmt.Sprintf("embedding %d texts", len(texts)))()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)

	for start := 0; start < len(texts); start += e.opts.BatchSize {
		end := min(start+e.opts.BatchSize, len(texts))
		g.Go(func() error {
			return e.embedBatch(gctx, texts[start:end], out[start:end], start)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Embedder) embedBatch(ctx context.Context, batch []string, dst [][]float32, offset int) error {
	if e.opts.Limiter != nil {
		if err := e.opts.Limiter.Wait(ctx); err != nil {
			return fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	if e.opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.RequestTimeout)
		defer cancel()
	}

	raw, err := e.backend.EmbedBatch(ctx, batch)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: embedding batch at %d timed out after %s: %w",
				domain.ErrRetrieval, offset, e.opts.RequestTimeout, err)
		}
		return fmt.Errorf("embedding batch at %d: %w", offset, err)
	}
	if len(raw) != len(batch) {
		return fmt.Errorf("%w: backend returned %d vectors for %d texts",
			domain.ErrEmbeddingUnavailable, len(raw), len(batch))
	}
	for i, vec := range raw {
		if len(vec) != e.opts.Dimensions {
			return fmt.Errorf("%w: backend returned dimension %d, configured %d",
				domain.ErrInvalidConfiguration, len(vec), e.opts.Dimensions)
		}
		dst[i] = Normalize(vec, e.opts.ClampMin, e.opts.ClampMax)
	}
	logger.Debug("embedded texts %d-%d", offset, offset+len(batch)-1)
	return nil
}

// EmbedQuery returns the normalised vector for a single text.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}
