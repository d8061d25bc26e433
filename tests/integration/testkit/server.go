package testkit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sha1n/mcp-regex-workbench/internal/app"
	"github.com/sha1n/mcp-regex-workbench/internal/config"
	"github.com/spf13/pflag"
)

// Property names published by ServerService
const (
	PropBaseURL = "base_url"
	PropPort    = "port"
)

// ServerService runs the regex MCP server over HTTP in-process
type ServerService struct {
	flags   *pflag.FlagSet
	timeout time.Duration

	mu     sync.Mutex
	srv    *http.Server
	done   chan error
	cancel context.CancelFunc
}

// NewServerService creates a service that runs the server configured by flags
func NewServerService(flags *pflag.FlagSet) *ServerService {
	return &ServerService{
		flags:   flags,
		timeout: 10 * time.Second,
	}
}

// GetName returns the service name
func (s *ServerService) GetName() string {
	return "regex-mcp"
}

// Start runs the server and waits until /health answers
func (s *ServerService) Start() (map[string]any, error) {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan error, 1)

	started := make(chan *config.Settings, 1)
	params := app.DefaultRunParams()
	params.LogOutput = io.Discard
	params.StartHTTPServer = func(server *mcp.Server, settings *config.Settings) error {
		srv, err := app.NewHTTPServer(server, settings)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.srv = srv
		s.mu.Unlock()
		started <- settings
		return srv.ListenAndServe()
	}

	go func() {
		s.done <- app.RunWithDeps(ctx, params, s.flags, "test")
	}()

	var settings *config.Settings
	select {
	case settings = <-started:
	case err := <-s.done:
		return nil, fmt.Errorf("server exited before listening: %w", err)
	case <-time.After(s.timeout):
		return nil, errors.New("timed out waiting for server to start")
	}

	baseURL := fmt.Sprintf("http://%s:%d", settings.Host, settings.Port)
	if err := waitForHealth(baseURL+app.HealthPath, s.timeout); err != nil {
		_ = s.Stop()
		return nil, err
	}

	return map[string]any{
		PropBaseURL: baseURL,
		PropPort:    settings.Port,
	}, nil
}

// Stop shuts the server down and waits for the run loop to exit
func (s *ServerService) Stop() error {
	s.mu.Lock()
	srv := s.srv
	s.mu.Unlock()

	if s.cancel != nil {
		defer s.cancel()
	}
	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	select {
	case err := <-s.done:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

func waitForHealth(url string, timeout time.Duration) error {
	client := &http.Client{Timeout: time.Second}
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(50 * time.Millisecond)
	}
	return fmt.Errorf("server not healthy after %s", timeout)
}
