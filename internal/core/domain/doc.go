// Package domain defines the core business entities for docqa.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: Text extracted from a source file
//   - Chunk: A retrievable span of a document, identified by position
//   - Match: A vector index hit for a query
//   - Answer: The outcome of a question asked against a prepared document
//   - AppSettings: The explicit configuration of every pipeline stage
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
