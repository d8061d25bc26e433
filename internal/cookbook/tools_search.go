package cookbook

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// SearchArgument defines search parameters.
type SearchArgument struct {
	Query string `json:"query,omitempty" jsonschema:"Words describing what the pattern should match; empty lists all recipes"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum number of recipes to return"`
}

// SearchHandler handles the search_regex_recipes MCP tool.
type SearchHandler struct {
	catalog    *Catalog
	maxResults int
}

// NewSearchHandler creates a new search handler. maxResults caps the number
// of recipes returned regardless of the requested limit.
func NewSearchHandler(catalog *Catalog, maxResults int) *SearchHandler {
	return &SearchHandler{
		catalog:    catalog,
		maxResults: maxResults,
	}
}

// Handle executes the search and returns formatted results.
func (h *SearchHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args SearchArgument) (*mcp.CallToolResult, any, error) {
	if args.Limit < 0 {
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: "Limit cannot be negative"},
			},
			IsError: true,
		}, nil, nil
	}

	limit := h.maxResults
	if args.Limit > 0 && (limit <= 0 || args.Limit < limit) {
		limit = args.Limit
	}

	recipes, err := h.catalog.Search(args.Query, limit)
	if err != nil {
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Search failed: %s", err)},
			},
			IsError: true,
		}, nil, nil
	}

	return formatRecipes(recipes, args.Query), nil, nil
}

func formatRecipes(recipes []Recipe, queryStr string) *mcp.CallToolResult {
	if len(recipes) == 0 {
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("No recipes found for query: %s", queryStr)},
			},
		}
	}

	var sb strings.Builder
	if strings.TrimSpace(queryStr) == "" {
		sb.WriteString(fmt.Sprintf("%d recipes:\n\n", len(recipes)))
	} else {
		sb.WriteString(fmt.Sprintf("Found %d recipes for '%s':\n\n", len(recipes), queryStr))
	}

	for i, r := range recipes {
		sb.WriteString(fmt.Sprintf("### %d. %s\n", i+1, r.Name))
		sb.WriteString(r.Description)
		sb.WriteString("\n\n")
		sb.WriteString(fmt.Sprintf("**Pattern**: `%s`\n", r.Pattern))
		if r.Flags != "" {
			sb.WriteString(fmt.Sprintf("**Flags**: `%s`\n", r.Flags))
		}
		if len(r.Tags) > 0 {
			sb.WriteString(fmt.Sprintf("**Tags**: %s\n", strings.Join(r.Tags, ", ")))
		}
		sb.WriteString("\n")
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: sb.String()},
		},
		StructuredContent: map[string]any{"recipes": recipes},
	}
}

// GetToolDefinition returns the MCP tool definition.
func (h *SearchHandler) GetToolDefinition() *mcp.Tool {
	return &mcp.Tool{
		Name:        "search_regex_recipes",
		Description: "Search a cookbook of tested regular expressions by description, name or tag",
	}
}

// RegisterSearchTool registers the search tool with an MCP server.
func RegisterSearchTool(server *mcp.Server, catalog *Catalog, maxResults int) {
	handler := NewSearchHandler(catalog, maxResults)
	mcp.AddTool(server, handler.GetToolDefinition(), handler.Handle)
}
