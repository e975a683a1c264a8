// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// EmbeddingService generates raw vector embeddings from text.
//
// Vectors returned here are not normalised; the core Embedder applies
// normalisation to every vector before it reaches a VectorIndex.
//
// Implementations may include:
//   - Local hashing model (in-process, no credentials)
//   - OpenAI (text-embedding-ada-002, text-embedding-3-small)
//   - Ollama (all-minilm, nomic-embed-text)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts.
	// The result has one vector per input, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 1536).
	// This must match the dimension the VectorIndex was created with.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
