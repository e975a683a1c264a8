package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown document or normaliser type.
	ErrUnsupportedType = errors.New("unsupported type")

	// Pipeline Errors.

	// ErrInvalidConfiguration indicates an unknown chunk method, backend,
	// metric or a configuration value out of range.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrMissingCredential indicates a remote backend was selected without
	// its API key.
	ErrMissingCredential = errors.New("missing credential")

	// ErrRetrieval indicates the vector index failed or returned an id that
	// does not resolve to a chunk.
	ErrRetrieval = errors.New("retrieval failed")

	// ErrGeneration indicates the generator backend failed.
	ErrGeneration = errors.New("generation failed")

	// ErrNotReady indicates a query was issued before the document was prepared.
	ErrNotReady = errors.New("pipeline not ready")

	// ErrEmbeddingUnavailable indicates the embedding backend cannot be reached.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrLLMUnavailable indicates the generator backend cannot be reached.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrVectorIndexUnavailable indicates the vector store cannot be reached.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")
)

// Stage names used in StageError.
const (
	StageExtract  = "extract"
	StageChunk    = "chunk"
	StageEmbed    = "embed"
	StageIndex    = "index"
	StageRetrieve = "retrieve"
	StageGenerate = "generate"
	StageEvaluate = "evaluate"
)

// StageError records which pipeline stage produced an error.
// The wrapped error keeps its identity for errors.Is.
type StageError struct {
	Stage string
	Err   error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *StageError) Unwrap() error {
	return e.Err
}

// WrapStage wraps err with its stage, returning nil for a nil error.
func WrapStage(stage string, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Err: err}
}
