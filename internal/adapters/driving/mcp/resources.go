package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for docqa resources.
	uriScheme = "docqa://"
)

// statusInfo is the body of the status resource.
type statusInfo struct {
	State  string `json:"state"`
	Chunks int    `json:"chunks"`
}

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "status",
		Name:        "status",
		Description: "Pipeline state and number of indexed chunks",
		MIMEType:    "application/json",
	}, s.handleStatusResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "chunks",
		Name:        "chunks",
		Description: "Every chunk of the prepared document, in order",
		MIMEType:    "application/json",
	}, s.handleChunksResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "chunks/{position}",
		Name:        "chunk",
		Description: "Text of a single chunk",
		MIMEType:    "text/plain",
	}, s.handleChunkResource)
}

// handleStatusResource reports the pipeline state.
func (s *Server) handleStatusResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	info := statusInfo{
		State:  s.ports.RAG.State().String(),
		Chunks: len(s.ports.RAG.Chunks()),
	}
	return jsonResult(req.Params.URI, info)
}

// handleChunksResource returns the full chunk list.
func (s *Server) handleChunksResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	chunks := s.ports.RAG.Chunks()
	return jsonResult(req.Params.URI, chunkOutputs(chunks, nil))
}

// handleChunkResource returns the text of one chunk.
func (s *Server) handleChunkResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	chunks := s.ports.RAG.Chunks()
	pos, ok := extractPosition(req.Params.URI)
	if !ok || pos >= len(chunks) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     chunks[pos].Content,
		}},
	}, nil
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractPosition extracts the chunk position from a URI like docqa://chunks/{position}.
func extractPosition(uri string) (int, bool) {
	const prefix = uriScheme + "chunks/"

	if !strings.HasPrefix(uri, prefix) {
		return 0, false
	}

	pos, err := strconv.Atoi(strings.TrimPrefix(uri, prefix))
	if err != nil || pos < 0 {
		return 0, false
	}
	return pos, true
}
