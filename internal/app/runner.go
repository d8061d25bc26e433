package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sha1n/mcp-regex-workbench/internal/config"
	"github.com/sha1n/mcp-regex-workbench/internal/cookbook"
	mcputil "github.com/sha1n/mcp-regex-workbench/internal/mcp"
	"github.com/sha1n/mcp-regex-workbench/internal/regex"
	"github.com/sha1n/mcp-regex-workbench/internal/tester"
	"github.com/spf13/pflag"
)

// ServerName identifies the server to MCP clients
const ServerName = "regex-mcp"

// RunParams contains dependencies for the run function
type RunParams struct {
	LoadSettings      func(*pflag.FlagSet) (*config.Settings, error)
	ValidSettings     func(*config.Settings) error
	StartHTTPServer   func(*mcp.Server, *config.Settings) error
	CreateServer      func(*config.Settings, string) (*mcp.Server, func(), error)
	CustomIOTransport mcp.Transport // Optional: for testing with custom IO
	LogOutput         io.Writer     // Optional: defaults to stderr
}

// DefaultRunParams returns production dependencies
func DefaultRunParams() RunParams {
	return RunParams{
		LoadSettings:    config.LoadSettingsWithFlags,
		ValidSettings:   config.ValidateSettings,
		StartHTTPServer: StartHTTPServer,
		CreateServer:    CreateMCPServer,
	}
}

// RunWithDeps executes the server with the provided dependencies
func RunWithDeps(ctx context.Context, params RunParams, flags *pflag.FlagSet, version string) error {
	// Load settings
	settings, err := params.LoadSettings(flags)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	// Validate settings for conflicting configurations
	if err := params.ValidSettings(settings); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Configure logging - always use stderr, stdout carries the stdio transport
	setupLogging(params.LogOutput, settings)

	slog.Info("Starting regex MCP server", "version", version)
	config.Log(settings)

	mcpServer, cleanup, err := params.CreateServer(settings, version)
	if err != nil {
		return err
	}
	if cleanup != nil {
		defer cleanup()
	}

	// Start server
	if settings.Transport == "stdio" {
		// Use custom transport if provided (for testing), otherwise use stdio
		transport := params.CustomIOTransport
		if transport == nil {
			transport = &mcp.StdioTransport{}
		}
		return mcpServer.Run(ctx, transport)
	} else {
		slog.Info("Starting HTTP server", "host", settings.Host, "port", settings.Port)
		return params.StartHTTPServer(mcpServer, settings)
	}
}

func setupLogging(w io.Writer, settings *config.Settings) {
	if w == nil {
		w = os.Stderr
	}
	slog.SetDefault(config.NewLogger(w, settings))
}

// CreateMCPServer creates the MCP server with registered tools. The returned
// cleanup function releases the recipe index and may be nil.
func CreateMCPServer(settings *config.Settings, version string) (*mcp.Server, func(), error) {
	t := tester.New(regex.NewHighlighter(settings.Highlight.Class))

	var catalog *cookbook.Catalog
	var cleanup func()

	if settings.Recipes.Enabled {
		c, err := cookbook.Open(settings.Recipes.File)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load regex recipes: %w", err)
		}
		catalog = c
		slog.Info("Regex cookbook loaded", "recipes", c.Len())

		cleanup = func() {
			if err := c.Close(); err != nil {
				slog.Error("Failed to close recipe index", "error", err)
			}
		}
	}

	server := mcputil.CreateServer(mcputil.ServerConfig{
		Name:       ServerName,
		Version:    version,
		Tester:     t,
		Catalog:    catalog,
		MaxResults: settings.Recipes.MaxResults,
	})

	return server, cleanup, nil
}
