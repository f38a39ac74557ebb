package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// ToolName is the single capability this server exposes.
const ToolName = "query_qdrant"

const toolDescription = `Search the Bevy 0.14.2 source code using semantic search with intelligent filtering.

Use this tool when:
- User asks about Bevy ECS, entities, components, systems, resources, or queries
- You need to verify Bevy 0.14.2 specific APIs, syntax, or behavior
- Initial solutions didn't work and you need to check actual implementation
- User explicitly requests documentation lookup

Returns: Relevant Bevy source files with actual code content, prioritizing core API files over examples.

Query tips:
- Use specific terms: "spawn entity", "Query<&Transform>", "Commands.insert()"
- Include context: "mutable component query", "startup system"
- For errors: "borrow checker error Query"

Note: Results are filtered for relevance - you'll only see files likely to contain useful information.`

// queryQdrantTool returns the tool definition for query_qdrant
func queryQdrantTool() mcp.Tool {
	return mcp.Tool{
		Name:        ToolName,
		Description: toolDescription,
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Semantic search query using specific Bevy terms",
				},
				"top_k": map[string]interface{}{
					"type":        "number",
					"description": "Number of results to return (default: 5)",
					"default":     5,
				},
			},
			Required: []string{"query"},
		},
	}
}
