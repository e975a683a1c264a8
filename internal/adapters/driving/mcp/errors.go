// Package mcp provides an MCP (Model Context Protocol) server adapter for docqa.
// It lets AI assistants ask questions about the prepared document and read
// its chunks.
package mcp

import "errors"

// ErrMissingRAGService is returned when the question-answering service is not provided.
var ErrMissingRAGService = errors.New("mcp: rag service is required")
