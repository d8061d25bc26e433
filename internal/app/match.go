package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/sha1n/mcp-regex-workbench/internal/config"
	"github.com/sha1n/mcp-regex-workbench/internal/console"
	"github.com/sha1n/mcp-regex-workbench/internal/cookbook"
	"github.com/sha1n/mcp-regex-workbench/internal/regex"
	"github.com/sha1n/mcp-regex-workbench/internal/tester"
	"github.com/spf13/pflag"
)

// ErrNoSubject is returned when no subject was given and stdin is a terminal.
var ErrNoSubject = errors.New("no subject: use --subject or pipe text on stdin")

// MatchParams contains dependencies of the match command
type MatchParams struct {
	LoadSettings  func(*pflag.FlagSet) (*config.Settings, error)
	ValidSettings func(*config.Settings) error
	Stdin         io.Reader
	Stdout        io.Writer
	LogOutput     io.Writer
	// StdinIsTerminal reports whether there is no piped input to read.
	StdinIsTerminal func() bool
}

// DefaultMatchParams returns production dependencies
func DefaultMatchParams() MatchParams {
	return MatchParams{
		LoadSettings:  config.LoadSettingsWithFlags,
		ValidSettings: config.ValidateSettings,
		Stdin:         os.Stdin,
		Stdout:        os.Stdout,
		LogOutput:     os.Stderr,
		StdinIsTerminal: func() bool {
			fd := os.Stdin.Fd()
			return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
		},
	}
}

type matchOptions struct {
	pattern    string
	flags      string
	subject    string
	subjectSet bool
	recipe     string
	color      console.ColorMode
	asJSON     bool
}

func readMatchOptions(flags *pflag.FlagSet) (matchOptions, error) {
	var opts matchOptions
	var err error

	get := func(name string) string {
		if err != nil {
			return ""
		}
		var v string
		v, err = flags.GetString(name)
		return v
	}
	opts.pattern = get("pattern")
	opts.flags = get("flags")
	opts.subject = get("subject")
	opts.recipe = get("recipe")
	color := get("color")
	if err != nil {
		return opts, err
	}

	if opts.asJSON, err = flags.GetBool("json"); err != nil {
		return opts, err
	}
	if opts.color, err = console.ParseColorMode(color); err != nil {
		return opts, err
	}
	opts.subjectSet = flags.Changed("subject")
	return opts, nil
}

// RunMatch tests a pattern against a subject and prints the report. It
// fails when the pattern does not compile.
func RunMatch(ctx context.Context, params MatchParams, flags *pflag.FlagSet) error {
	opts, err := readMatchOptions(flags)
	if err != nil {
		return err
	}

	settings, err := params.LoadSettings(flags)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if err := params.ValidSettings(settings); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	setupLogging(params.LogOutput, settings)

	example := ""
	if opts.recipe != "" {
		if example, err = applyRecipe(&opts, settings); err != nil {
			return err
		}
	}

	subject := opts.subject
	if !opts.subjectSet {
		if subject, err = readSubject(params, example); err != nil {
			return err
		}
	}

	t := tester.New(regex.NewHighlighter(settings.Highlight.Class))
	report, err := t.Run(ctx, tester.Input{
		Pattern: opts.pattern,
		Flags:   opts.flags,
		Subject: subject,
	})
	if err != nil {
		return fmt.Errorf("matching failed: %w", err)
	}

	if opts.asJSON {
		enc := json.NewEncoder(params.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	} else if err := console.NewPrinter(params.Stdout, opts.color).Print(subject, report); err != nil {
		return err
	}

	if report.Status == regex.StatusCompileError {
		return &regex.CompileError{Message: report.Error}
	}
	return nil
}

// applyRecipe fills in the pattern and flags of a named recipe and returns
// its example. Explicit --pattern and --flags values take precedence.
func applyRecipe(opts *matchOptions, settings *config.Settings) (string, error) {
	path := ""
	if settings.Recipes.Enabled {
		path = settings.Recipes.File
	}
	catalog, err := cookbook.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to load regex recipes: %w", err)
	}
	defer func() { _ = catalog.Close() }()

	recipe, ok := catalog.Get(opts.recipe)
	if !ok {
		return "", fmt.Errorf("unknown recipe: %s", opts.recipe)
	}
	if opts.pattern == "" {
		opts.pattern = recipe.Pattern
		if opts.flags == "" {
			opts.flags = recipe.Flags
		}
	}
	return recipe.Example, nil
}

// readSubject reads piped stdin. One trailing line break is dropped, as left
// by echo and most editors. Without piped input the fallback is used, and an
// empty fallback is an error.
func readSubject(params MatchParams, fallback string) (string, error) {
	if params.StdinIsTerminal != nil && params.StdinIsTerminal() {
		if fallback != "" {
			return fallback, nil
		}
		return "", ErrNoSubject
	}
	data, err := io.ReadAll(params.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read subject: %w", err)
	}
	s := strings.TrimSuffix(string(data), "\n")
	return strings.TrimSuffix(s, "\r"), nil
}
