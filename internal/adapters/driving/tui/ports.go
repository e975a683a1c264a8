// Package tui provides an interactive terminal user interface for docqa.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the TUI.
type Ports struct {
	// RAG answers questions about the prepared document.
	RAG driving.RAGService

	// Options are applied to every question asked in the session.
	Options domain.QueryOptions
}

// NewPorts creates a new Ports aggregate with the given service.
func NewPorts(rag driving.RAGService) *Ports {
	return &Ports{RAG: rag}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.RAG == nil {
		return ErrMissingRAGService
	}
	return nil
}
