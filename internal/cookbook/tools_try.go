package cookbook

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sha1n/mcp-regex-workbench/internal/tester"
)

// TryArgument defines the try_regex_recipe parameters.
type TryArgument struct {
	Name    string `json:"name" jsonschema:"Recipe name as returned by search_regex_recipes"`
	Subject *string `json:"subject,omitempty" jsonschema:"Text to test; defaults to the recipe's example when omitted. An empty string is tested as given"`
}

// TryHandler runs a recipe through the tester.
type TryHandler struct {
	catalog *Catalog
	tester  *tester.Tester
}

// NewTryHandler creates a new try handler.
func NewTryHandler(catalog *Catalog, t *tester.Tester) *TryHandler {
	return &TryHandler{
		catalog: catalog,
		tester:  t,
	}
}

// Handle looks up the recipe and tests it against the subject.
func (h *TryHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args TryArgument) (*mcp.CallToolResult, any, error) {
	recipe, ok := h.catalog.Get(args.Name)
	if !ok {
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Unknown recipe: %s", args.Name)},
			},
			IsError: true,
		}, nil, nil
	}

	subject := recipe.Example
	if args.Subject != nil {
		subject = *args.Subject
	}

	report, err := h.tester.Run(ctx, tester.Input{
		Pattern: recipe.Pattern,
		Flags:   recipe.Flags,
		Subject: subject,
	})
	if err != nil {
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Matching failed: %s", err)},
			},
			IsError: true,
		}, nil, nil
	}

	return tester.ReportResult(report), nil, nil
}

// GetToolDefinition returns the MCP tool definition.
func (h *TryHandler) GetToolDefinition() *mcp.Tool {
	return &mcp.Tool{
		Name:        "try_regex_recipe",
		Description: "Run a cookbook recipe against a subject (or its built-in example) and show the matches",
	}
}

// RegisterTryTool registers the try tool with an MCP server.
func RegisterTryTool(server *mcp.Server, catalog *Catalog, t *tester.Tester) {
	handler := NewTryHandler(catalog, t)
	mcp.AddTool(server, handler.GetToolDefinition(), handler.Handle)
}
