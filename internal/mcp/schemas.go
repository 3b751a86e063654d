package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// lookupTagTool returns the tool definition for lookup_tag
func lookupTagTool() mcp.Tool {
	return mcp.Tool{
		Name:        "lookup_tag",
		Description: "Look up an FpML tag by exact name and return its source file, data type, location, documentation, attributes and first children",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"tag": map[string]interface{}{
					"type":        "string",
					"description": "Exact, case-sensitive tag name (e.g. 'tradeHeader')",
				},
			},
			Required: []string{"tag"},
		},
	}
}

// generateTemplateTool returns the tool definition for generate_template
func generateTemplateTool() mcp.Tool {
	return mcp.Tool{
		Name:        "generate_template",
		Description: "Generate a placeholder XML document for a tag, wrapped in an fpml:dataDocument envelope, including every declared child up to a depth limit",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"root": map[string]interface{}{
					"type":        "string",
					"description": "Tag to render as the document body",
				},
				"max_depth": map[string]interface{}{
					"type":        "integer",
					"description": "Levels to render, counting the root as 1 (0 renders only the envelope)",
					"default":     3,
					"minimum":     0,
				},
			},
			Required: []string{"root"},
		},
	}
}

// generateMinimalTool returns the tool definition for generate_minimal
func generateMinimalTool() mcp.Tool {
	return mcp.Tool{
		Name:        "generate_minimal",
		Description: "Generate the smallest XML skeleton of a top-level FpML message, containing only children with minOccurs of at least 1",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"root": map[string]interface{}{
					"type":        "string",
					"description": "Top-level message element (e.g. 'requestConfirmation')",
				},
				"namespace": map[string]interface{}{
					"type":        "string",
					"description": "Default namespace of the wrapper element",
					"default":     "http://www.fpml.org/FpML-5/confirmation",
				},
			},
			Required: []string{"root"},
		},
	}
}

// listTagsTool returns the tool definition for list_tags
func listTagsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_tags",
		Description: "List indexed tag names in ascending order",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"top_level_only": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, list only top-level elements (valid minimal roots)",
					"default":     false,
				},
				"prefix": map[string]interface{}{
					"type":        "string",
					"description": "Only list names starting with this prefix",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of names to return (0 for all)",
					"default":     0,
					"minimum":     0,
				},
			},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Report the loaded schema source, index statistics and stored embeddings",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
