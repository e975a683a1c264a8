package mcp

import (
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// RAG answers questions about the prepared document.
	RAG driving.RAGService

	// Evaluator scores answers against references. Optional; without it
	// the evaluate tool is not registered.
	Evaluator driving.Evaluator
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.RAG == nil {
		return ErrMissingRAGService
	}
	return nil
}
