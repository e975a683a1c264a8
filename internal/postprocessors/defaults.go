package postprocessors

import (
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/postprocessors/chunker"
)

// RegisterDefaults registers all built-in processors with the registry.
// Call this during application initialisation to enable standard processors.
func RegisterDefaults(r *Registry) {
	r.Register("chunker", buildChunker)
}

// NewDefaultRegistry returns a registry with the built-in processors.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterDefaults(r)
	return r
}

// buildChunker creates a chunker processor from generic config.
// Supported config keys:
//   - method (string): sentences, paragraphs or tokens (default: sentences)
//   - chunk_size (int): Budget in characters or tokens (default: 100)
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []chunker.Option

	if cfg != nil {
		if method, ok := cfg["method"].(string); ok && method != "" {
			opts = append(opts, chunker.WithMethod(domain.ChunkMethod(method)))
		}
		if _, ok := cfg["chunk_size"]; ok {
			opts = append(opts, chunker.WithChunkSize(getIntFromConfig(cfg, "chunk_size")))
		}
	}

	p, err := chunker.New(opts...)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) int {
	val, ok := cfg[key]
	if !ok {
		return 0
	}

	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
