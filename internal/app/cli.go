package app

import "github.com/spf13/pflag"

// RegisterFlags registers all server CLI flags on the given FlagSet
func RegisterFlags(flags *pflag.FlagSet) {
	flags.StringP("transport", "t", "", "Transport type: stdio or sse")
	flags.StringP("host", "H", "", "Host for SSE transport")
	flags.IntP("port", "p", 0, "Port for SSE transport")
	flags.StringP("auth-type", "a", "", "Authentication type: none, basic, or apikey")
	flags.StringP("auth-basic-username", "u", "", "Basic auth username")
	flags.StringP("auth-basic-password", "P", "", "Basic auth password")
	flags.StringSliceP("auth-api-keys", "k", nil, "API keys (comma-separated)")
	registerCommonFlags(flags)
	flags.Bool("recipes-enabled", true, "Register the regex cookbook tools")
	flags.Int("recipes-max-results", 0, "Maximum recipes returned by a search")
}

// RegisterMatchFlags registers the flags of the match command
func RegisterMatchFlags(flags *pflag.FlagSet) {
	flags.StringP("pattern", "e", "", "Regular expression to test")
	flags.StringP("flags", "f", "", "Regex flags, any of g, i, m, s, u, y")
	flags.StringP("subject", "s", "", "Text to test; read from stdin when not set")
	flags.String("recipe", "", "Use the pattern and flags of a cookbook recipe")
	flags.String("color", "auto", "Colorize output: auto, always, or never")
	flags.Bool("json", false, "Print the report as JSON")
	registerCommonFlags(flags)
}

// registerCommonFlags registers flags shared by the server and the match command
func registerCommonFlags(flags *pflag.FlagSet) {
	flags.StringP("highlight-class", "c", "", "CSS class of highlighted match spans")
	flags.StringP("recipes-file", "r", "", "YAML file with additional regex recipes")
	flags.StringP("log-level", "l", "", "Log level: debug, info, warn, or error")
}
