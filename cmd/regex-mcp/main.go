package main

import (
	"context"
	"os"

	"github.com/sha1n/mcp-regex-workbench/internal/app"
	"github.com/sha1n/mcp-regex-workbench/internal/regex"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	// Version is injected at build time
	Version = "dev"
	// Build is injected at build time
	Build = "unknown"
	// ProgramName is injected at build time
	ProgramName = "regex-mcp"
)

func main() {
	runMain(os.Args, os.Exit)
}

func runMain(args []string, exit func(int)) {
	if err := Execute(Version, Build, ProgramName, args[1:]); err != nil {
		exit(1)
	}
}

// Execute is the entry point for the CLI, extracted for testing
func Execute(version, build, programName string, args []string) error {
	rootCmd := newRootCommand(version, build, programName, app.DefaultMatchParams())
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func newRootCommand(version, build, programName string, matchParams app.MatchParams) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     programName,
		Short:   "Regex MCP Server",
		Long:    "MCP server for testing, highlighting and explaining regular expressions",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithFlags(cmd.Flags(), version)
		},
	}

	rootCmd.SetVersionTemplate(`{{.Version}} (build ` + build + `)
`)

	app.RegisterFlags(rootCmd.Flags())

	matchCmd := &cobra.Command{
		Use:   "match",
		Short: "Test a regular expression against text",
		Long: `Test a regular expression against text and print the highlighted matches.
The subject is read from stdin when --subject is not given.`,
		Example: programName + ` match -e '(\d+)-(\d+)' -f g -s 'call 555-1234'
echo 'released 2024-05-17' | ` + programName + ` match --recipe iso-date`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := app.RunMatch(cmd.Context(), matchParams, cmd.Flags())
			if regex.IsCompileError(err) {
				// Already shown in the report; only the exit status remains.
				cmd.SilenceErrors = true
			}
			return err
		},
	}
	app.RegisterMatchFlags(matchCmd.Flags())
	rootCmd.AddCommand(matchCmd)

	return rootCmd
}

func runWithFlags(flags *pflag.FlagSet, version string) error {
	return app.RunWithDeps(context.Background(), app.DefaultRunParams(), flags, version)
}
