package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/searchctx/queryqdrant/internal/searcher"
)

// noResultsAdvice is returned when every candidate was filtered out.
const noResultsAdvice = "No relevant results found. Try:\n- Using more specific Bevy terminology\n- Rephrasing your query\n- Searching for related concepts"

// initializeResult mirrors the MCP initialize response.
type initializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    map[string]any     `json:"capabilities"`
	ServerInfo      mcp.Implementation `json:"serverInfo"`
}

func (s *Server) handleInitialize() initializeResult {
	return initializeResult{
		ProtocolVersion: ProtocolVersion,
		Capabilities: map[string]any{
			"tools": map[string]any{},
		},
		ServerInfo: mcp.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
	}
}

func (s *Server) handleListTools() *mcp.ListToolsResult {
	return &mcp.ListToolsResult{
		Tools: []mcp.Tool{queryQdrantTool()},
	}
}

// handleCallTool runs the retrieval pipeline and formats each result as one
// text block containing score, path, relevance reason and excerpt.
func (s *Server) handleCallTool(ctx context.Context, rawParams json.RawMessage) (*mcp.CallToolResult, error) {
	var params callToolParams
	if err := json.Unmarshal(rawParams, &params); err != nil {
		return nil, fmt.Errorf("invalid tools/call params: %w", err)
	}

	if params.Name != ToolName {
		return nil, fmt.Errorf("unknown tool: %s", params.Name)
	}

	query := getStringDefault(params.Arguments, "query", "")
	topK := getIntDefault(params.Arguments, "top_k", searcher.DefaultTopK)

	results, err := s.searcher.Search(ctx, query, topK)
	if err != nil {
		return nil, err
	}

	if len(results) == 0 {
		return &mcp.CallToolResult{
			Content: []mcp.Content{mcp.NewTextContent(noResultsAdvice)},
		}, nil
	}

	content := make([]mcp.Content, 0, len(results))
	for i, result := range results {
		var b strings.Builder
		fmt.Fprintf(&b, "**Result %d** (relevance: %.4f) - %s\n", i+1, result.Score, result.Reason)
		fmt.Fprintf(&b, "**File**: `%s`\n\n", result.Path)
		fmt.Fprintf(&b, "**Content**:\n```rust\n%s\n```\n\n", result.Content)
		b.WriteString("---\n\n")
		content = append(content, mcp.NewTextContent(b.String()))
	}

	return &mcp.CallToolResult{Content: content}, nil
}

// Helper functions

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]any, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]any, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}
