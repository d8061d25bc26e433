package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sha1n/mcp-regex-workbench/internal/cookbook"
	"github.com/sha1n/mcp-regex-workbench/internal/tester"
)

const instructions = `Test JavaScript-syntax regular expressions against text.
Matching closely follows browser RegExp; captures inside repeated groups may keep
values from earlier iterations and multiline anchors do not treat \r as a line end.
Use test_regex with a pattern, optional flags (any of g, i, m, s, u, y) and a subject.
Use search_regex_recipes to find a tested pattern and try_regex_recipe to run it.`

// ServerConfig contains configuration for creating an MCP server
type ServerConfig struct {
	Name    string
	Version string

	// Tester runs test_regex. A default tester is used when nil.
	Tester *tester.Tester

	// Catalog backs the cookbook tools; they are not registered when nil.
	Catalog    *cookbook.Catalog
	MaxResults int
}

// CreateServer creates and configures the MCP server
func CreateServer(cfg ServerConfig) *mcp.Server {
	s := mcp.NewServer(&mcp.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, &mcp.ServerOptions{
		Instructions: instructions,
	})

	t := cfg.Tester
	if t == nil {
		t = tester.New(nil)
	}
	tester.RegisterTestTool(s, t)

	if cfg.Catalog != nil {
		cookbook.RegisterSearchTool(s, cfg.Catalog, cfg.MaxResults)
		cookbook.RegisterTryTool(s, cfg.Catalog, t)
	}

	return s
}
