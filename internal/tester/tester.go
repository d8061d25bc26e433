// Package tester runs a pattern over a subject and assembles everything a
// client needs to display the outcome.
package tester

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sha1n/mcp-regex-workbench/internal/regex"
)

// Input is one request to test a pattern.
type Input struct {
	Pattern string
	Flags   string
	Subject string
}

// Report is the outcome of a test run. Exactly one of the display states
// described by Status applies; Highlighted is always renderable and falls
// back to the escaped subject when there is nothing to highlight.
type Report struct {
	Status      regex.Status  `json:"status"`
	Pattern     string        `json:"pattern"`
	Flags       string        `json:"flags"`
	Notice      string        `json:"notice"`
	Error       string        `json:"error,omitempty"`
	Matches     []regex.Match `json:"matches"`
	Highlighted string        `json:"highlighted"`
	Summary     regex.Summary `json:"summary"`
}

// Tester runs patterns and renders their matches.
type Tester struct {
	highlighter *regex.Highlighter
}

// New creates a Tester. A nil highlighter uses the default span class.
func New(highlighter *regex.Highlighter) *Tester {
	if highlighter == nil {
		highlighter = regex.NewHighlighter("")
	}
	return &Tester{highlighter: highlighter}
}

// Highlighter returns the markup renderer in use.
func (t *Tester) Highlighter() *regex.Highlighter {
	return t.highlighter
}

// Run compiles and matches in.Pattern against in.Subject. Invalid patterns
// and empty patterns are reported in the Report, not as errors. Invalid
// UTF-8 in the subject is replaced before matching.
func (t *Tester) Run(ctx context.Context, in Input) (Report, error) {
	in.Subject = regex.ValidSubject(in.Subject)
	res, err := regex.Run(in.Pattern, in.Flags, in.Subject)
	if err != nil {
		slog.ErrorContext(ctx, "Regex matching failed", "error", err)
		return Report{}, err
	}

	report := Report{
		Status:      res.Status,
		Pattern:     in.Pattern,
		Flags:       in.Flags,
		Matches:     res.Matches,
		Highlighted: t.highlighter.Render(in.Subject, res.Matches),
		Summary:     regex.Summarize(res.Matches),
	}
	if report.Matches == nil {
		report.Matches = []regex.Match{}
	}

	switch res.Status {
	case regex.StatusNoPattern:
		report.Notice = "Please enter a regex pattern."
	case regex.StatusCompileError:
		report.Error = res.Err.Message
		report.Notice = "Invalid Regex: " + res.Err.Message
	case regex.StatusNoMatches:
		report.Notice = "No matches found."
	case regex.StatusMatched:
		if len(res.Matches) == 1 {
			report.Notice = "Found 1 match."
		} else {
			report.Notice = fmt.Sprintf("Found %d matches.", len(res.Matches))
		}
	}

	slog.DebugContext(ctx, "Regex tested",
		"pattern_length", len(in.Pattern),
		"flags", in.Flags,
		"subject_length", len(in.Subject),
		"status", res.Status,
		"matches", len(res.Matches),
	)

	return report, nil
}
