// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the pipeline to function:
//
//   - Normaliser: Extracts text from a source file
//   - NormaliserRegistry: Selects the normaliser for a MIME type
//   - PostProcessor / PostProcessorPipeline: Splits text into chunks
//   - EmbeddingService: Turns text into raw vectors
//   - VectorIndex: Stores vectors and answers similarity queries
//   - LLMService: Generates the answer text
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - ChunkStore: Persists the chunk list between processes. Without it,
//     questions can only be asked in the process that prepared the document.
//   - PromptStore: Customisable prompt templates. Without it, built-in
//     defaults are used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
