package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// RAGService answers questions about a prepared document.
//
// Lifecycle: Uninitialized -> Prepared (Prepare or Restore succeeded)
// -> Ready (first Query succeeded). A failed Prepare leaves the
// previous chunk list and state untouched.
type RAGService interface {
	// Prepare extracts, chunks, embeds and indexes the document at path.
	Prepare(ctx context.Context, path string) (*domain.PrepareReport, error)

	// Preview extracts and chunks the document at path without indexing it.
	Preview(ctx context.Context, path string) (*domain.Document, []domain.Chunk, error)

	// Restore reloads a chunk list persisted by an earlier Prepare.
	// Returns domain.ErrNotFound when nothing was persisted.
	Restore(ctx context.Context) error

	// Query answers a question. Fails with domain.ErrNotReady before
	// a successful Prepare or Restore.
	Query(ctx context.Context, question string, opts domain.QueryOptions) (*domain.Answer, error)

	// Retrieve returns the chunks most relevant to question without generating.
	Retrieve(ctx context.Context, question string, k int) ([]domain.Chunk, []domain.Match, error)

	// Reset drops the index contents and the persisted chunk list.
	Reset(ctx context.Context) error

	// DeleteIndex drops the vector index itself, so the next Prepare can
	// recreate it with a different dimension or metric.
	DeleteIndex(ctx context.Context) error

	// State returns the current lifecycle state.
	State() domain.PipelineState

	// Chunks returns a copy of the current chunk list.
	Chunks() []domain.Chunk
}

// Evaluator scores a candidate answer against a reference answer.
type Evaluator interface {
	// Evaluate computes the requested metrics. An empty metric list
	// computes the defaults. Unknown metrics fail with
	// domain.ErrInvalidConfiguration.
	Evaluate(candidate, reference string, metrics []string) (domain.EvaluationResult, error)
}
