package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestLoadSettings_Defaults(t *testing.T) {
	_ = os.Unsetenv("REGEX_MCP_PORT")
	_ = os.Unsetenv("REGEX_MCP_AUTH_TYPE")

	settings, err := LoadSettings()
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}

	if settings.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", settings.Port)
	}
	if settings.Auth.Type != AuthTypeNone {
		t.Errorf("Expected default auth type '%s', got '%s'", AuthTypeNone, settings.Auth.Type)
	}
	if settings.Transport != "stdio" {
		t.Errorf("Expected default transport 'stdio', got '%s'", settings.Transport)
	}
	if settings.Host != "0.0.0.0" {
		t.Errorf("Expected default host '0.0.0.0', got '%s'", settings.Host)
	}
}

func TestLoadSettings_EnvVars(t *testing.T) {
	t.Setenv("REGEX_MCP_PORT", "9090")
	t.Setenv("REGEX_MCP_AUTH_TYPE", "basic")
	t.Setenv("REGEX_MCP_AUTH_BASIC_USERNAME", "admin")

	settings, err := LoadSettings()
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}

	if settings.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", settings.Port)
	}
	if settings.Auth.Type != AuthTypeBasic {
		t.Errorf("Expected auth type '%s', got '%s'", AuthTypeBasic, settings.Auth.Type)
	}
	if settings.Auth.Basic.Username != "admin" {
		t.Errorf("Expected username 'admin', got '%s'", settings.Auth.Basic.Username)
	}
}

func TestLoadSettings_APIKeys_EnvVar(t *testing.T) {
	t.Setenv("REGEX_MCP_AUTH_API_KEYS", "key1, key2,key3")

	settings, err := LoadSettings()
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}

	if len(settings.Auth.APIKeys) != 3 {
		t.Fatalf("Expected 3 API keys, got %d", len(settings.Auth.APIKeys))
	}
	if settings.Auth.APIKeys[0] != "key1" {
		t.Errorf("Expected key1, got '%s'", settings.Auth.APIKeys[0])
	}
	if settings.Auth.APIKeys[1] != "key2" {
		t.Errorf("Expected key2, got '%s'", settings.Auth.APIKeys[1])
	}
	if settings.Auth.APIKeys[2] != "key3" {
		t.Errorf("Expected key3, got '%s'", settings.Auth.APIKeys[2])
	}
}

func TestLoadSettings_APIKeys_SingleKey(t *testing.T) {
	t.Setenv("REGEX_MCP_AUTH_API_KEYS", "singlekey")

	settings, err := LoadSettings()
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}
	if len(settings.Auth.APIKeys) != 1 {
		t.Fatalf("Expected 1 API key, got %d", len(settings.Auth.APIKeys))
	}
	if settings.Auth.APIKeys[0] != "singlekey" {
		t.Errorf("Expected singlekey, got '%s'", settings.Auth.APIKeys[0])
	}
}

func TestLoadSettings_EnvFile(t *testing.T) {
	content := []byte("host=127.0.0.2\nport=7000")
	tmpEnv := ".env"
	if err := os.WriteFile(tmpEnv, content, 0644); err != nil {
		t.Fatalf("Failed to create .env file: %v", err)
	}
	defer func() { _ = os.Remove(tmpEnv) }()

	settings, err := LoadSettings()
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}

	if settings.Host != "127.0.0.2" {
		t.Errorf("Expected host 127.0.0.2, got %s", settings.Host)
	}
	if settings.Port != 7000 {
		t.Errorf("Expected port 7000, got %d", settings.Port)
	}
}

func TestLoadSettings_InvalidConfig(t *testing.T) {
	t.Setenv("REGEX_MCP_PORT", "not-a-number")

	_, err := LoadSettings()
	if err == nil {
		t.Fatal("Expected error for invalid port type")
	}
}

func TestLoadSettingsWithFlags_CLIOverridesEnv(t *testing.T) {
	t.Setenv("REGEX_MCP_PORT", "9090")
	t.Setenv("REGEX_MCP_TRANSPORT", "sse")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("port", 0, "")
	flags.String("transport", "", "")
	_ = flags.Set("port", "7777")
	_ = flags.Set("transport", "stdio")

	settings, err := LoadSettingsWithFlags(flags)
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}

	if settings.Port != 7777 {
		t.Errorf("Expected CLI port 7777, got %d", settings.Port)
	}
	if settings.Transport != "stdio" {
		t.Errorf("Expected CLI transport 'stdio', got '%s'", settings.Transport)
	}
}

func TestLoadSettingsWithFlags_EnvOverridesDefault(t *testing.T) {
	t.Setenv("REGEX_MCP_HOST", "192.168.1.1")

	settings, err := LoadSettingsWithFlags(nil)
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}

	if settings.Host != "192.168.1.1" {
		t.Errorf("Expected env host '192.168.1.1', got '%s'", settings.Host)
	}
}

func TestLoadSettingsWithFlags_NilFlags(t *testing.T) {
	_ = os.Unsetenv("REGEX_MCP_PORT")

	settings, err := LoadSettingsWithFlags(nil)
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}

	if settings.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", settings.Port)
	}
}

func TestLoadSettingsWithFlags_AllFlagTypes(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("transport", "", "")
	flags.String("host", "", "")
	flags.Int("port", 0, "")
	flags.String("auth-type", "", "")
	flags.String("auth-basic-username", "", "")
	flags.String("auth-basic-password", "", "")
	flags.StringSlice("auth-api-keys", nil, "")

	_ = flags.Set("transport", "sse")
	_ = flags.Set("host", "localhost")
	_ = flags.Set("port", "3000")
	_ = flags.Set("auth-type", "basic")
	_ = flags.Set("auth-basic-username", "testuser")
	_ = flags.Set("auth-basic-password", "testpass")

	settings, err := LoadSettingsWithFlags(flags)
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}

	if settings.Transport != "sse" {
		t.Errorf("Expected transport 'sse', got '%s'", settings.Transport)
	}
	if settings.Host != "localhost" {
		t.Errorf("Expected host 'localhost', got '%s'", settings.Host)
	}
	if settings.Port != 3000 {
		t.Errorf("Expected port 3000, got %d", settings.Port)
	}
	if settings.Auth.Type != "basic" {
		t.Errorf("Expected auth type 'basic', got '%s'", settings.Auth.Type)
	}
	if settings.Auth.Basic.Username != "testuser" {
		t.Errorf("Expected username 'testuser', got '%s'", settings.Auth.Basic.Username)
	}
	if settings.Auth.Basic.Password != "testpass" {
		t.Errorf("Expected password 'testpass', got '%s'", settings.Auth.Basic.Password)
	}
}

func TestLoadSettings_DomainDefaults(t *testing.T) {
	settings, err := LoadSettings()
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}

	if settings.Highlight.Class != "regex-match" {
		t.Errorf("Expected default highlight class 'regex-match', got '%s'", settings.Highlight.Class)
	}
	if !settings.Recipes.Enabled {
		t.Error("Expected recipes to be enabled by default")
	}
	if settings.Recipes.File != "" {
		t.Errorf("Expected no recipes file by default, got '%s'", settings.Recipes.File)
	}
	if settings.Recipes.MaxResults != 10 {
		t.Errorf("Expected max results 10, got %d", settings.Recipes.MaxResults)
	}
	if settings.LogLevel != LogLevelInfo {
		t.Errorf("Expected log level 'info', got '%s'", settings.LogLevel)
	}
	if err := ValidateSettings(settings); err != nil {
		t.Errorf("Expected defaults to validate, got: %v", err)
	}
}

func TestLoadSettings_DomainEnvVars(t *testing.T) {
	t.Setenv("REGEX_MCP_HIGHLIGHT_CLASS", " hit ")
	t.Setenv("REGEX_MCP_RECIPES_ENABLED", "false")
	t.Setenv("REGEX_MCP_RECIPES_FILE", "/custom/recipes.yaml")
	t.Setenv("REGEX_MCP_RECIPES_MAX_RESULTS", "25")
	t.Setenv("REGEX_MCP_LOG_LEVEL", "DEBUG")

	settings, err := LoadSettings()
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}

	if settings.Highlight.Class != "hit" {
		t.Errorf("Expected trimmed class 'hit', got '%s'", settings.Highlight.Class)
	}
	if settings.Recipes.Enabled {
		t.Error("Expected recipes to be disabled")
	}
	if settings.Recipes.File != "/custom/recipes.yaml" {
		t.Errorf("Expected recipes file '/custom/recipes.yaml', got '%s'", settings.Recipes.File)
	}
	if settings.Recipes.MaxResults != 25 {
		t.Errorf("Expected max results 25, got %d", settings.Recipes.MaxResults)
	}
	if settings.LogLevel != LogLevelDebug {
		t.Errorf("Expected normalized log level 'debug', got '%s'", settings.LogLevel)
	}
}

func TestLoadSettings_RecipesFileExpandHome(t *testing.T) {
	t.Setenv("REGEX_MCP_RECIPES_FILE", "~/recipes.yaml")

	settings, err := LoadSettings()
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}

	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, "recipes.yaml")
	if settings.Recipes.File != expected {
		t.Errorf("Expected recipes file '%s', got '%s'", expected, settings.Recipes.File)
	}
}

func TestLoadSettings_APIKeys_FilterEmpty(t *testing.T) {
	t.Setenv("REGEX_MCP_AUTH_API_KEYS", "key1,,key2,")

	settings, err := LoadSettings()
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}
	if len(settings.Auth.APIKeys) != 2 {
		t.Errorf("Expected 2 API keys (empty filtered out), got %d: %v", len(settings.Auth.APIKeys), settings.Auth.APIKeys)
	}
}

func TestLoadSettingsWithFlags_DomainFlags(t *testing.T) {
	t.Setenv("REGEX_MCP_RECIPES_MAX_RESULTS", "50")
	t.Setenv("REGEX_MCP_HIGHLIGHT_CLASS", "from-env")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("highlight-class", "", "")
	flags.Bool("recipes-enabled", true, "")
	flags.String("recipes-file", "", "")
	flags.Int("recipes-max-results", 0, "")
	flags.String("log-level", "", "")

	_ = flags.Set("highlight-class", "from-flag")
	_ = flags.Set("recipes-enabled", "false")
	_ = flags.Set("recipes-max-results", "5")
	_ = flags.Set("log-level", "warn")

	settings, err := LoadSettingsWithFlags(flags)
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}

	if settings.Highlight.Class != "from-flag" {
		t.Errorf("Expected CLI class 'from-flag', got '%s'", settings.Highlight.Class)
	}
	if settings.Recipes.Enabled {
		t.Error("Expected CLI to disable recipes")
	}
	if settings.Recipes.MaxResults != 5 {
		t.Errorf("Expected CLI max results 5, got %d", settings.Recipes.MaxResults)
	}
	if settings.LogLevel != LogLevelWarn {
		t.Errorf("Expected CLI log level 'warn', got '%s'", settings.LogLevel)
	}
}

func TestLoadSettingsWithFlags_PartialFlagSet(t *testing.T) {
	t.Setenv("REGEX_MCP_PORT", "9191")

	// A subcommand may only register a few of the flags
	flags := pflag.NewFlagSet("match", pflag.ContinueOnError)
	flags.String("highlight-class", "", "")
	_ = flags.Set("highlight-class", "mark")

	settings, err := LoadSettingsWithFlags(flags)
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}
	if settings.Highlight.Class != "mark" {
		t.Errorf("Expected class 'mark', got '%s'", settings.Highlight.Class)
	}
	if settings.Port != 9191 {
		t.Errorf("Expected env port 9191, got %d", settings.Port)
	}
}

func TestEnvName(t *testing.T) {
	tests := []struct {
		key      string
		expected string
	}{
		{"port", "REGEX_MCP_PORT"},
		{"auth.basic.username", "REGEX_MCP_AUTH_BASIC_USERNAME"},
		{"recipes.max_results", "REGEX_MCP_RECIPES_MAX_RESULTS"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := EnvName(tt.key); got != tt.expected {
				t.Errorf("EnvName(%q) = %q, want %q", tt.key, got, tt.expected)
			}
		})
	}
}

// --- ValidateSettings Tests ---

// validSettings returns settings that pass validation; tests mutate a copy.
func validSettings() Settings {
	return Settings{
		Transport: "stdio",
		Host:      "0.0.0.0",
		Port:      8080,
		Auth:      AuthSettings{Type: AuthTypeNone},
		Highlight: HighlightSettings{Class: "regex-match"},
		Recipes:   RecipesSettings{Enabled: true, MaxResults: 10},
		LogLevel:  LogLevelInfo,
	}
}

func TestValidateSettings_Valid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *Settings)
	}{
		{"none auth", func(s *Settings) {}},
		{"empty auth type", func(s *Settings) { s.Auth.Type = "" }},
		{"basic auth", func(s *Settings) {
			s.Auth = AuthSettings{Type: AuthTypeBasic, Basic: BasicAuthSettings{Username: "admin", Password: "secret"}}
		}},
		{"apikey auth", func(s *Settings) {
			s.Auth = AuthSettings{Type: AuthTypeAPIKey, APIKeys: []string{"key1", "key2"}}
		}},
		{"sse transport", func(s *Settings) { s.Transport = "sse" }},
		{"stdio ignores port", func(s *Settings) { s.Port = 0 }},
		{"recipes disabled", func(s *Settings) { s.Recipes = RecipesSettings{} }},
		{"debug log level", func(s *Settings) { s.LogLevel = LogLevelDebug }},
		{"custom class", func(s *Settings) { s.Highlight.Class = "_hit-2" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSettings()
			tt.mutate(&s)
			if err := ValidateSettings(&s); err != nil {
				t.Errorf("Expected no error, got: %v", err)
			}
		})
	}
}

func TestValidateSettings_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *Settings)
		wantErr string
	}{
		{"none with username", func(s *Settings) { s.Auth.Basic.Username = "admin" }, "incompatible"},
		{"none with password", func(s *Settings) { s.Auth.Basic.Password = "secret" }, "incompatible"},
		{"none with api keys", func(s *Settings) { s.Auth.APIKeys = []string{"key1"} }, "incompatible"},
		{"basic missing username", func(s *Settings) {
			s.Auth = AuthSettings{Type: AuthTypeBasic, Basic: BasicAuthSettings{Password: "secret"}}
		}, "username and password"},
		{"basic missing password", func(s *Settings) {
			s.Auth = AuthSettings{Type: AuthTypeBasic, Basic: BasicAuthSettings{Username: "admin"}}
		}, "username and password"},
		{"basic with api keys", func(s *Settings) {
			s.Auth = AuthSettings{Type: AuthTypeBasic, Basic: BasicAuthSettings{Username: "admin", Password: "secret"}, APIKeys: []string{"key1"}}
		}, "mutually exclusive"},
		{"apikey missing keys", func(s *Settings) { s.Auth = AuthSettings{Type: AuthTypeAPIKey} }, "requires at least one"},
		{"apikey with basic creds", func(s *Settings) {
			s.Auth = AuthSettings{Type: AuthTypeAPIKey, APIKeys: []string{"key1"}, Basic: BasicAuthSettings{Username: "admin"}}
		}, "mutually exclusive"},
		{"unknown auth type", func(s *Settings) { s.Auth.Type = "oauth" }, "unknown auth-type"},
		{"empty transport", func(s *Settings) { s.Transport = "" }, "transport must be"},
		{"http transport", func(s *Settings) { s.Transport = "http" }, "transport must be"},
		{"unknown transport", func(s *Settings) { s.Transport = "foobar" }, "transport must be"},
		{"sse without port", func(s *Settings) { s.Transport = "sse"; s.Port = 0 }, "port must be"},
		{"sse port out of range", func(s *Settings) { s.Transport = "sse"; s.Port = 70000 }, "port must be"},
		{"empty class", func(s *Settings) { s.Highlight.Class = "" }, "highlight-class"},
		{"class with space", func(s *Settings) { s.Highlight.Class = "a b" }, "highlight-class"},
		{"class with quote", func(s *Settings) { s.Highlight.Class = `x"y` }, "highlight-class"},
		{"class starting with digit", func(s *Settings) { s.Highlight.Class = "1x" }, "highlight-class"},
		{"unknown log level", func(s *Settings) { s.LogLevel = "verbose" }, "log-level"},
		{"empty log level", func(s *Settings) { s.LogLevel = "" }, "log-level"},
		{"zero max results", func(s *Settings) { s.Recipes.MaxResults = 0 }, "recipes-max-results"},
		{"negative max results", func(s *Settings) { s.Recipes.MaxResults = -1 }, "recipes-max-results"},
		{"file while disabled", func(s *Settings) { s.Recipes = RecipesSettings{File: "/tmp/x.yaml"} }, "requires recipes-enabled"},
		{"missing file", func(s *Settings) { s.Recipes.File = "/does/not/exist.yaml" }, "not readable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSettings()
			tt.mutate(&s)
			err := ValidateSettings(&s)
			if err == nil {
				t.Fatalf("Expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected %q in error, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateSettings_RecipesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "recipes.yaml")
	if err := os.WriteFile(path, []byte("recipes: []\n"), 0644); err != nil {
		t.Fatalf("Failed to write recipes file: %v", err)
	}

	s := validSettings()
	s.Recipes.File = path
	if err := ValidateSettings(&s); err != nil {
		t.Errorf("Expected existing file to validate, got: %v", err)
	}

	s.Recipes.File = dir
	err := ValidateSettings(&s)
	if err == nil || !strings.Contains(err.Error(), "directory") {
		t.Errorf("Expected directory error, got: %v", err)
	}
}

func TestExpandHomeDir(t *testing.T) {
	home, _ := os.UserHomeDir()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"tilde prefix", "~/test", filepath.Join(home, "test")},
		{"tilde only", "~", home},
		{"no tilde", "/absolute/path", "/absolute/path"},
		{"tilde in middle", "/path/~/test", "/path/~/test"},
		{"relative path", "relative/path", "relative/path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandHomeDir(tt.input)
			if result != tt.expected {
				t.Errorf("expandHomeDir(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestFilterEmptyStrings(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{"no empties", []string{"a", "b", "c"}, []string{"a", "b", "c"}},
		{"with empties", []string{"a", "", "b", "", "c"}, []string{"a", "b", "c"}},
		{"all empties", []string{"", "", ""}, nil},
		{"nil input", nil, nil},
		{"single empty", []string{""}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := filterEmptyStrings(tt.input)
			if len(result) != len(tt.expected) {
				t.Errorf("filterEmptyStrings(%v) = %v, want %v", tt.input, result, tt.expected)
				return
			}
			for i := range result {
				if result[i] != tt.expected[i] {
					t.Errorf("filterEmptyStrings(%v) = %v, want %v", tt.input, result, tt.expected)
					break
				}
			}
		})
	}
}
