// Package auth guards the HTTP transports with basic or API key
// authentication.
package auth

import (
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sha1n/mcp-regex-workbench/internal/config"
)

// Realm is announced to clients that fail basic authentication.
const Realm = "regex-mcp"

// APIKeyHeader carries an API key. A bearer token in the Authorization
// header is accepted as well.
const APIKeyHeader = "X-API-Key"

// DefaultExcludedPaths bypass authentication.
var DefaultExcludedPaths = []string{"/health"}

// Middleware wraps a handler.
type Middleware func(http.Handler) http.Handler

// NewMiddleware creates an authentication middleware based on settings.
// Requests to excluded paths are passed through; DefaultExcludedPaths is
// used when none are given.
func NewMiddleware(settings config.AuthSettings, excluded ...string) (Middleware, error) {
	if len(excluded) == 0 {
		excluded = DefaultExcludedPaths
	}

	switch settings.Type {
	case config.AuthTypeNone, "":
		return func(next http.Handler) http.Handler {
			return next
		}, nil
	case config.AuthTypeBasic:
		if settings.Basic.Username == "" || settings.Basic.Password == "" {
			return nil, fmt.Errorf("basic auth requires non-empty username and password")
		}
		return withExclusions(basicAuthMiddleware(settings.Basic), excluded), nil
	case config.AuthTypeAPIKey:
		if len(settings.APIKeys) == 0 {
			return nil, fmt.Errorf("apikey auth requires at least one API key")
		}
		return withExclusions(apiKeyMiddleware(settings.APIKeys), excluded), nil
	default:
		return nil, fmt.Errorf("unknown auth type: %s", settings.Type)
	}
}

// withExclusions wraps an auth middleware to skip auth for excluded paths
func withExclusions(authMiddleware Middleware, excluded []string) Middleware {
	paths := make(map[string]bool, len(excluded))
	for _, p := range excluded {
		paths[p] = true
	}

	return func(next http.Handler) http.Handler {
		authedHandler := authMiddleware(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if paths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}
			authedHandler.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter, r *http.Request, reason string) {
	slog.WarnContext(r.Context(), "Rejected request", "path", r.URL.Path, "remote", r.RemoteAddr, "reason", reason)
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
}

func basicAuthMiddleware(settings config.BasicAuthSettings) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			userMatch := subtle.ConstantTimeCompare([]byte(user), []byte(settings.Username)) == 1
			passMatch := subtle.ConstantTimeCompare([]byte(pass), []byte(settings.Password)) == 1
			if !ok || !userMatch || !passMatch {
				w.Header().Set("WWW-Authenticate", `Basic realm="`+Realm+`"`)
				unauthorized(w, r, "bad credentials")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestAPIKey returns the key from the API key header, or from a bearer
// Authorization header.
func requestAPIKey(r *http.Request) string {
	if key := r.Header.Get(APIKeyHeader); key != "" {
		return key
	}
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return ""
}

func apiKeyMiddleware(apiKeys []string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := requestAPIKey(r)
			if key == "" {
				unauthorized(w, r, "missing key")
				return
			}

			valid := false
			for _, validKey := range apiKeys {
				if subtle.ConstantTimeCompare([]byte(key), []byte(validKey)) == 1 {
					valid = true
					break
				}
			}

			if !valid {
				unauthorized(w, r, "unknown key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
