package app

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sha1n/mcp-regex-workbench/internal/auth"
	"github.com/sha1n/mcp-regex-workbench/internal/config"
)

// HTTP endpoints served when the transport is sse
const (
	HealthPath     = "/health"
	SSEPath        = "/sse"
	StreamablePath = "/mcp"
)

// StartHTTPServer starts the HTTP server with authentication
func StartHTTPServer(s *mcp.Server, settings *config.Settings) error {
	srv, err := NewHTTPServer(s, settings)
	if err != nil {
		return err
	}

	slog.Info("Server listening (HTTP)", "addr", srv.Addr, "auth_type", settings.Auth.Type)
	return srv.ListenAndServe()
}

// NewHTTPServer creates an HTTP server exposing the MCP server over both SSE
// and streamable HTTP, behind the authentication middleware.
func NewHTTPServer(s *mcp.Server, settings *config.Settings) (*http.Server, error) {
	// Factory functions return the server instance for each request
	getServer := func(r *http.Request) *mcp.Server {
		return s
	}
	sseHandler := mcp.NewSSEHandler(getServer, nil)
	streamableHandler := mcp.NewStreamableHTTPHandler(getServer, nil)

	mux := http.NewServeMux()
	mux.HandleFunc(HealthPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle(SSEPath, sseHandler)
	mux.Handle(StreamablePath, streamableHandler)

	authMiddleware, err := auth.NewMiddleware(settings.Auth, HealthPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth middleware: %w", err)
	}

	return &http.Server{
		Addr:              net.JoinHostPort(settings.Host, strconv.Itoa(settings.Port)),
		Handler:           authMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}
