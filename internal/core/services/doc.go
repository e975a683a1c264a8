// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
//   - Embedder: batches, rate-limits and normalises embeddings
//   - Evaluator: BLEU and ROUGE scoring of answers
//   - RAGService: the prepare/query state machine
//   - SettingsService: typed access to the configuration store
//
// Services depend only on ports and small pure-Go libraries
// (errgroup, rate, snowball); they never import adapters.
package services
