package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question  string `json:"question" jsonschema:"the question to answer from the prepared document"`
	TopK      int    `json:"top_k,omitempty" jsonschema:"number of chunks to retrieve (default from settings)"`
	Reference string `json:"reference,omitempty" jsonschema:"optional reference answer to score the generated answer against"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer     string             `json:"answer"`
	NoAnswer   bool               `json:"no_answer"`
	Chunks     []ChunkOutput      `json:"chunks"`
	Evaluation map[string]float64 `json:"evaluation,omitempty"`
}

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Question string `json:"question" jsonschema:"the question to find relevant chunks for"`
	TopK     int    `json:"top_k,omitempty" jsonschema:"number of chunks to return (default from settings)"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Chunks []ChunkOutput `json:"chunks"`
	Count  int           `json:"count"`
}

// EvaluateInput is the input schema for the evaluate tool.
type EvaluateInput struct {
	Candidate string   `json:"candidate" jsonschema:"the answer to score"`
	Reference string   `json:"reference" jsonschema:"the reference answer"`
	Metrics   []string `json:"metrics,omitempty" jsonschema:"metrics to compute: bleu, rouge, rouge1, rouge2, rougeL"`
}

// EvaluateOutput is the output schema for the evaluate tool.
type EvaluateOutput struct {
	Scores map[string]float64 `json:"scores"`
}

// ChunkOutput represents a single retrieved chunk.
type ChunkOutput struct {
	Position int     `json:"position"`
	Content  string  `json:"content"`
	Score    float64 `json:"score,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question using the prepared document",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve",
		Description: "Return the document chunks most relevant to a question, without generating an answer",
	}, s.handleRetrieve)

	if s.ports.Evaluator != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "evaluate",
			Description: "Score an answer against a reference answer with BLEU and ROUGE",
		}, s.handleEvaluate)
	}
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.RAG.Query(ctx, input.Question, domain.QueryOptions{
		TopK:      input.TopK,
		Reference: strings.TrimSpace(input.Reference),
	})
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Answer:   answer.Text,
		NoAnswer: answer.NoAnswer,
		Chunks:   chunkOutputs(answer.Chunks, answer.Matches),
	}
	if len(answer.Evaluation) > 0 {
		output.Evaluation = answer.Evaluation
	}
	return nil, output, nil
}

// handleRetrieve handles the retrieve tool invocation.
func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	chunks, matches, err := s.ports.RAG.Retrieve(ctx, input.Question, input.TopK)
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	return nil, RetrieveOutput{
		Chunks: chunkOutputs(chunks, matches),
		Count:  len(chunks),
	}, nil
}

// handleEvaluate handles the evaluate tool invocation.
func (s *Server) handleEvaluate(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input EvaluateInput,
) (*mcp.CallToolResult, EvaluateOutput, error) {
	if s.ports.Evaluator == nil {
		return nil, EvaluateOutput{}, fmt.Errorf("%w: no evaluator configured", domain.ErrInvalidConfiguration)
	}

	scores, err := s.ports.Evaluator.Evaluate(input.Candidate, input.Reference, input.Metrics)
	if err != nil {
		return nil, EvaluateOutput{}, err
	}
	return nil, EvaluateOutput{Scores: scores}, nil
}

// chunkOutputs pairs chunks with their match scores. Matches are aligned
// with chunks when present.
func chunkOutputs(chunks []domain.Chunk, matches []domain.Match) []ChunkOutput {
	out := make([]ChunkOutput, len(chunks))
	for i, c := range chunks {
		out[i] = ChunkOutput{Position: c.Position, Content: c.Content}
		if i < len(matches) {
			out[i].Score = matches[i].Score
		}
	}
	return out
}
