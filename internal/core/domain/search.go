package domain

import "time"

// DistanceMetric is the similarity measure used by a vector index.
type DistanceMetric string

// Available distance metrics.
const (
	// MetricEuclidean ranks by L2 distance, reported as 1/(1+distance).
	MetricEuclidean DistanceMetric = "euclidean"

	// MetricCosine ranks by cosine similarity.
	MetricCosine DistanceMetric = "cosine"

	// MetricDotProduct ranks by inner product.
	MetricDotProduct DistanceMetric = "dotproduct"
)

// IsValid returns true if the metric is recognised.
func (m DistanceMetric) IsValid() bool {
	switch m {
	case MetricEuclidean, MetricCosine, MetricDotProduct:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (m DistanceMetric) String() string {
	return string(m)
}

// Match is a single hit returned by a vector index query.
type Match struct {
	// ID is the vector identifier (the chunk position as a string).
	ID string

	// Score is the similarity; higher is more relevant.
	Score float64

	// Vector is the stored vector, when the backend returns it.
	Vector []float32
}

// QueryOptions configures a single question.
type QueryOptions struct {
	// TopK overrides the configured number of chunks to retrieve.
	// Zero means use the configured default.
	TopK int

	// Reference is an optional reference answer. When set, the generated
	// answer is scored against it.
	Reference string

	// Metrics overrides the configured evaluation metrics.
	Metrics []string
}

// Answer is the outcome of a question asked against a prepared document.
type Answer struct {
	// Question is the question as asked.
	Question string

	// Text is the generated answer, or a fixed notice when NoAnswer is set.
	Text string

	// NoAnswer reports that retrieval found no relevant chunk, so the
	// generator was not called.
	NoAnswer bool

	// Chunks are the retrieved chunks in relevance order.
	Chunks []Chunk

	// Matches are the raw index hits, aligned with Chunks.
	Matches []Match

	// Evaluation holds metric scores when a reference answer was given.
	Evaluation EvaluationResult

	// Duration is how long the question took end to end.
	Duration time.Duration
}

// PrepareReport summarises a successful prepare run.
type PrepareReport struct {
	// DocumentID is the id assigned to the extracted document.
	DocumentID string

	// URI is the prepared file.
	URI string

	// Characters is the length of the extracted text.
	Characters int

	// Chunks is the number of chunks indexed.
	Chunks int

	// Dimensions is the embedding width.
	Dimensions int

	// Duration is how long preparation took.
	Duration time.Duration
}

// PipelineState is the lifecycle state of the question-answering pipeline.
type PipelineState string

// Pipeline states.
const (
	// StateUninitialized means no document has been prepared.
	StateUninitialized PipelineState = "uninitialized"

	// StatePrepared means a document is indexed but no question was answered yet.
	StatePrepared PipelineState = "prepared"

	// StateReady means at least one question has been answered.
	StateReady PipelineState = "ready"
)

// CanQuery reports whether questions may be asked in this state.
func (s PipelineState) CanQuery() bool {
	return s == StatePrepared || s == StateReady
}

// String returns the string representation.
func (s PipelineState) String() string {
	return string(s)
}
