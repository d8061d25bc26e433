// Package testkit runs the regex MCP server in-process for integration tests.
package testkit

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"testing"

	"github.com/sha1n/mcp-regex-workbench/internal/app"
	"github.com/spf13/pflag"
)

// Service is a dependency of an integration test that can be started and stopped
type Service interface {
	Start() (map[string]any, error)
	Stop() error
	GetName() string
}

// Env starts a set of services and collects the properties they publish
type Env struct {
	services []Service
	started  []Service
}

// NewEnv creates an environment for the given services, started in order
func NewEnv(services ...Service) *Env {
	return &Env{services: services}
}

// Start starts every service and merges their properties. When a service
// fails, the ones already running are stopped again.
func (e *Env) Start() (map[string]any, error) {
	props := make(map[string]any)
	for _, s := range e.services {
		p, err := s.Start()
		if err != nil {
			return nil, errors.Join(fmt.Errorf("%s: %w", s.GetName(), err), e.Stop())
		}
		e.started = append(e.started, s)
		for k, v := range p {
			props[k] = v
		}
	}
	return props, nil
}

// Stop stops the started services in reverse order
func (e *Env) Stop() error {
	var errs []error
	for i := len(e.started) - 1; i >= 0; i-- {
		if err := e.started[i].Stop(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", e.started[i].GetName(), err))
		}
	}
	e.started = nil
	return errors.Join(errs...)
}

// StartEnv starts services for the duration of t and returns their properties
func StartEnv(t testing.TB, services ...Service) map[string]any {
	t.Helper()
	env := NewEnv(services...)
	props, err := env.Start()
	if err != nil {
		t.Fatalf("Failed to start test environment: %v", err)
	}
	t.Cleanup(func() {
		if err := env.Stop(); err != nil {
			t.Errorf("Failed to stop test environment: %v", err)
		}
	})
	return props
}

// FreePort returns a TCP port that was free a moment ago
func FreePort(t testing.TB) int {
	t.Helper()
	l, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		t.Fatalf("Failed to get free port: %v", err)
	}
	defer func() { _ = l.Close() }()
	return l.Addr().(*net.TCPAddr).Port
}

// FlagOptions configures NewTestFlags. Zero values keep the test defaults:
// HTTP transport on a free localhost port, no auth, warn logging.
type FlagOptions struct {
	Port           int
	Transport      string
	AuthType       string
	Host           string
	APIKeys        []string
	HighlightClass string
	RecipesFile    string
}

// NewTestFlags returns the server flag set with opts applied
func NewTestFlags(t testing.TB, opts *FlagOptions) *pflag.FlagSet {
	t.Helper()
	if opts == nil {
		opts = &FlagOptions{}
	}

	port := opts.Port
	if port == 0 {
		port = FreePort(t)
	}

	values := []struct{ name, value string }{
		{"transport", or(opts.Transport, "sse")},
		{"host", or(opts.Host, "localhost")},
		{"port", strconv.Itoa(port)},
		{"auth-type", or(opts.AuthType, "none")},
		{"auth-api-keys", strings.Join(opts.APIKeys, ",")},
		{"highlight-class", opts.HighlightClass},
		{"recipes-file", opts.RecipesFile},
		{"log-level", "warn"},
	}

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	app.RegisterFlags(flags)
	for _, v := range values {
		if v.value == "" {
			continue
		}
		if err := flags.Set(v.name, v.value); err != nil {
			t.Fatalf("Failed to set --%s: %v", v.name, err)
		}
	}
	return flags
}

func or(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
