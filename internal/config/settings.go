package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sha1n/mcp-regex-workbench/internal/regex"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Auth type constants
const (
	AuthTypeNone   = "none"
	AuthTypeBasic  = "basic"
	AuthTypeAPIKey = "apikey"
)

// Log level constants
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// EnvPrefix is the prefix of every environment variable read by the server.
const EnvPrefix = "REGEX_MCP"

// AuthSettings configuration for authentication
type AuthSettings struct {
	Type    string            `mapstructure:"type"` // AuthTypeNone, AuthTypeBasic, or AuthTypeAPIKey
	Basic   BasicAuthSettings `mapstructure:"basic"`
	APIKeys []string          `mapstructure:"api_keys"`
}

// BasicAuthSettings configuration for basic auth
type BasicAuthSettings struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// HighlightSettings configuration for match markup
type HighlightSettings struct {
	Class string `mapstructure:"class"`
}

// RecipesSettings configuration for the regex cookbook
type RecipesSettings struct {
	Enabled    bool   `mapstructure:"enabled"`
	File       string `mapstructure:"file"`
	MaxResults int    `mapstructure:"max_results"`
}

// Settings application settings
type Settings struct {
	Transport string            `mapstructure:"transport"`
	Host      string            `mapstructure:"host"`
	Port      int               `mapstructure:"port"`
	Auth      AuthSettings      `mapstructure:"auth"`
	Highlight HighlightSettings `mapstructure:"highlight"`
	Recipes   RecipesSettings   `mapstructure:"recipes"`
	LogLevel  string            `mapstructure:"log_level"`
}

// bindings maps setting keys to the CLI flags that override them.
var bindings = []struct {
	key  string
	flag string
}{
	{"transport", "transport"},
	{"host", "host"},
	{"port", "port"},
	{"auth.type", "auth-type"},
	{"auth.basic.username", "auth-basic-username"},
	{"auth.basic.password", "auth-basic-password"},
	{"auth.api_keys", "auth-api-keys"},
	{"highlight.class", "highlight-class"},
	{"recipes.enabled", "recipes-enabled"},
	{"recipes.file", "recipes-file"},
	{"recipes.max_results", "recipes-max-results"},
	{"log_level", "log-level"},
}

// EnvName returns the environment variable bound to a setting key.
func EnvName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// LoadSettings loads settings from environment variables and optional .env file
func LoadSettings() (*Settings, error) {
	return LoadSettingsWithFlags(nil)
}

// LoadSettingsWithFlags loads settings with optional CLI flag overrides.
// Priority: CLI flags > environment variables > .env file > defaults.
// If flags is nil, only env vars and defaults are used. Flags missing from
// the set are skipped, so subcommands may register a subset.
func LoadSettingsWithFlags(flags *pflag.FlagSet) (*Settings, error) {
	v := viper.New()

	// Default values
	v.SetDefault("transport", "stdio")
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 8080)
	v.SetDefault("auth.type", AuthTypeNone)
	v.SetDefault("highlight.class", regex.DefaultHighlightClass)
	v.SetDefault("recipes.enabled", true)
	v.SetDefault("recipes.file", "")
	v.SetDefault("recipes.max_results", 10)
	v.SetDefault("log_level", LogLevelInfo)

	// Environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind specific env vars for nested config
	for _, b := range bindings {
		_ = v.BindEnv(b.key, EnvName(b.key))
	}

	// Bind CLI flags if provided (highest priority)
	if flags != nil {
		for _, b := range bindings {
			if f := flags.Lookup(b.flag); f != nil {
				_ = v.BindPFlag(b.key, f)
			}
		}
	}

	// Helper to look for .env file
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // Ignore error if .env doesn't exist

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, err
	}

	// Handle explicit parsing of API keys if provided via env var as comma-separated string
	apiKeysEnv := os.Getenv(EnvName("auth.api_keys"))
	if apiKeysEnv != "" {
		if len(settings.Auth.APIKeys) == 0 || (len(settings.Auth.APIKeys) == 1 && strings.Contains(settings.Auth.APIKeys[0], ",")) {
			settings.Auth.APIKeys = strings.Split(apiKeysEnv, ",")
		}
	}

	// Trim spaces from API keys
	for i := range settings.Auth.APIKeys {
		settings.Auth.APIKeys[i] = strings.TrimSpace(settings.Auth.APIKeys[i])
	}
	settings.Auth.APIKeys = filterEmptyStrings(settings.Auth.APIKeys)

	settings.Highlight.Class = strings.TrimSpace(settings.Highlight.Class)
	settings.LogLevel = strings.ToLower(strings.TrimSpace(settings.LogLevel))
	settings.Recipes.File = expandHomeDir(strings.TrimSpace(settings.Recipes.File))

	return &settings, nil
}

// expandHomeDir expands ~ to the user's home directory
func expandHomeDir(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return home
	}
	return path
}

// filterEmptyStrings removes empty strings from a slice
func filterEmptyStrings(s []string) []string {
	var result []string
	for _, str := range s {
		if str != "" {
			result = append(result, str)
		}
	}
	return result
}

// ValidateSettings checks for conflicting configurations.
// Returns an error if the settings contain mutually exclusive or incomplete auth config,
// or values the server cannot use.
func ValidateSettings(s *Settings) error {
	// Validate transport type
	switch s.Transport {
	case "stdio", "sse":
		// valid
	default:
		return errors.New("transport must be 'stdio' or 'sse', got: " + s.Transport)
	}

	if s.Transport == "sse" && (s.Port <= 0 || s.Port > 65535) {
		return fmt.Errorf("port must be between 1 and 65535, got: %d", s.Port)
	}

	hasBasicCreds := s.Auth.Basic.Username != "" || s.Auth.Basic.Password != ""
	hasAPIKeys := len(s.Auth.APIKeys) > 0

	switch s.Auth.Type {
	case AuthTypeNone, "":
		if hasBasicCreds || hasAPIKeys {
			return errors.New("auth-type 'none' is incompatible with auth credentials")
		}
	case AuthTypeBasic:
		if hasAPIKeys {
			return errors.New("auth-type 'basic' is mutually exclusive with auth-api-keys")
		}
		if s.Auth.Basic.Username == "" || s.Auth.Basic.Password == "" {
			return errors.New("auth-type 'basic' requires both username and password")
		}
	case AuthTypeAPIKey:
		if hasBasicCreds {
			return errors.New("auth-type 'apikey' is mutually exclusive with basic auth credentials")
		}
		if !hasAPIKeys {
			return errors.New("auth-type 'apikey' requires at least one API key")
		}
	default:
		return errors.New("unknown auth-type: " + s.Auth.Type)
	}

	if !regex.ValidClassName(s.Highlight.Class) {
		return fmt.Errorf("highlight-class must be a single CSS class name, got: %q", s.Highlight.Class)
	}

	switch s.LogLevel {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		// valid
	default:
		return errors.New("log-level must be 'debug', 'info', 'warn' or 'error', got: " + s.LogLevel)
	}

	// Validate recipes settings
	if err := validateRecipesSettings(&s.Recipes); err != nil {
		return err
	}

	return nil
}

// validateRecipesSettings validates the cookbook configuration
func validateRecipesSettings(r *RecipesSettings) error {
	if !r.Enabled {
		if r.File != "" {
			return errors.New("recipes-file requires recipes-enabled")
		}
		return nil
	}

	if r.MaxResults <= 0 {
		return errors.New("recipes-max-results must be positive")
	}

	if r.File != "" {
		info, err := os.Stat(r.File)
		if err != nil {
			return fmt.Errorf("recipes-file is not readable: %w", err)
		}
		if info.IsDir() {
			return errors.New("recipes-file must be a file, got a directory: " + r.File)
		}
	}

	return nil
}
