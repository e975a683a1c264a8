package chunker

import (
	"fmt"
	"strings"
	"sync"

	"github.com/jdkato/prose/v2"
	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

// SentenceSplitter segments text into sentences.
type SentenceSplitter interface {
	Sentences(text string) ([]string, error)
}

// TokenCounter counts the linguistic tokens of a text span.
type TokenCounter interface {
	CountTokens(text string) (int, error)
}

// PunktSegmenter splits sentences with the English Punkt model.
type PunktSegmenter struct {
	once      sync.Once
	tokenizer *sentences.DefaultSentenceTokenizer
	err       error
}

// NewPunktSegmenter returns a segmenter that loads its model on first use.
func NewPunktSegmenter() *PunktSegmenter {
	return &PunktSegmenter{}
}

// Sentences returns the sentences of text in order.
func (s *PunktSegmenter) Sentences(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	s.once.Do(func() {
		s.tokenizer, s.err = english.NewSentenceTokenizer(nil)
	})
	if s.err != nil {
		return nil, fmt.Errorf("loading punkt model: %w", s.err)
	}

	var out []string
	for _, sent := range s.tokenizer.Tokenize(text) {
		if t := strings.TrimSpace(sent.Text); t != "" {
			out = append(out, t)
		}
	}
	return out, nil
}

// ProseSegmenter segments sentences and counts tokens with prose.
type ProseSegmenter struct{}

// NewProseSegmenter returns a prose-backed segmenter.
func NewProseSegmenter() *ProseSegmenter {
	return &ProseSegmenter{}
}

// Sentences returns the sentences of text in order.
func (ProseSegmenter) Sentences(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	doc, err := prose.NewDocument(text,
		prose.WithTagging(false),
		prose.WithExtraction(false),
		prose.WithTokenization(false),
	)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, sent := range doc.Sentences() {
		if t := strings.TrimSpace(sent.Text); t != "" {
			out = append(out, t)
		}
	}
	return out, nil
}

// CountTokens returns the number of word and punctuation tokens in text.
func (ProseSegmenter) CountTokens(text string) (int, error) {
	if strings.TrimSpace(text) == "" {
		return 0, nil
	}
	doc, err := prose.NewDocument(text,
		prose.WithTagging(false),
		prose.WithExtraction(false),
		prose.WithSegmentation(false),
	)
	if err != nil {
		return 0, err
	}
	return len(doc.Tokens()), nil
}
