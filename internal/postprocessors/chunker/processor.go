// Package chunker splits document text into chunks by greedy packing.
//
// Three policies are supported. Sentence and paragraph chunks are bounded
// by a character budget; token chunks are bounded by a token budget and
// built from whole sentences. A single unit longer than the budget becomes
// its own chunk and is never split.
package chunker

import (
	"context"
	"fmt"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// DefaultChunkSize is the default chunk budget.
const DefaultChunkSize = 100

// DefaultMethod is the default chunking policy.
const DefaultMethod = domain.ChunkSentences

// Processor splits document content into chunks.
// It implements the PostProcessor interface.
type Processor struct {
	method    domain.ChunkMethod
	chunkSize int
	sentences SentenceSplitter
	tokens    TokenCounter
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithMethod sets the chunking policy.
func WithMethod(method domain.ChunkMethod) Option {
	return func(p *Processor) {
		p.method = method
	}
}

// WithChunkSize sets the chunk budget in characters or tokens.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		p.chunkSize = size
	}
}

// WithSentenceSplitter replaces the sentence segmenter used by the
// sentence and token policies.
func WithSentenceSplitter(s SentenceSplitter) Option {
	return func(p *Processor) {
		if s != nil {
			p.sentences = s
		}
	}
}

// WithTokenCounter replaces the tokenizer used by the token policy.
func WithTokenCounter(c TokenCounter) Option {
	return func(p *Processor) {
		if c != nil {
			p.tokens = c
		}
	}
}

// New creates a new chunker processor with the given options.
// An unknown method or a non-positive size fails with ErrInvalidConfiguration.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		method:    DefaultMethod,
		chunkSize: DefaultChunkSize,
	}
	for _, opt := range opts {
		opt(p)
	}

	if !p.method.IsValid() {
		return nil, fmt.Errorf("%w: unknown chunk method %q", domain.ErrInvalidConfiguration, p.method)
	}
	if p.chunkSize < 1 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrInvalidConfiguration, p.chunkSize)
	}

	if p.method == domain.ChunkTokens {
		if p.sentences == nil || p.tokens == nil {
			seg := NewProseSegmenter()
			if p.sentences == nil {
				p.sentences = seg
			}
			if p.tokens == nil {
				p.tokens = seg
			}
		}
	} else if p.sentences == nil {
		p.sentences = NewPunktSegmenter()
	}
	return p, nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Method returns the configured chunking policy.
func (p *Processor) Method() domain.ChunkMethod {
	return p.method
}

// ChunkSize returns the configured chunk budget.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Process splits the document content into positioned chunks.
// Input chunks are ignored; this processor creates new chunks from document content.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	texts, err := p.Split(doc.Content)
	if err != nil {
		return nil, err
	}

	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = domain.Chunk{
			DocumentID: doc.ID,
			Content:    text,
			Position:   i,
		}
	}
	return chunks, nil
}

// Split returns the chunk texts for text in document order.
// Empty or whitespace-only text yields no chunks; no chunk is ever empty.
func (p *Processor) Split(text string) ([]string, error) {
	switch p.method {
	case domain.ChunkSentences:
		units, err := p.sentences.Sentences(text)
		if err != nil {
			return nil, fmt.Errorf("segmenting sentences: %w", err)
		}
		return packByLength(units, sentenceSeparator, p.chunkSize), nil
	case domain.ChunkParagraphs:
		return packByLength(splitParagraphs(text), paragraphSeparator, p.chunkSize), nil
	case domain.ChunkTokens:
		return p.splitTokens(text)
	default:
		return nil, fmt.Errorf("%w: unknown chunk method %q", domain.ErrInvalidConfiguration, p.method)
	}
}

func (p *Processor) splitTokens(text string) ([]string, error) {
	units, err := p.sentences.Sentences(text)
	if err != nil {
		return nil, fmt.Errorf("segmenting sentences: %w", err)
	}
	counts := make([]int, len(units))
	for i, u := range units {
		n, err := p.tokens.CountTokens(u)
		if err != nil {
			return nil, fmt.Errorf("counting tokens: %w", err)
		}
		counts[i] = n
	}
	return packByCount(units, counts, p.chunkSize), nil
}
