// Package console prints test reports to a terminal.
package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/sha1n/mcp-regex-workbench/internal/regex"
	"github.com/sha1n/mcp-regex-workbench/internal/tester"
)

// ColorMode selects when the printer emits terminal colors.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ParseColorMode parses a --color value.
func ParseColorMode(s string) (ColorMode, error) {
	switch m := ColorMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ColorAuto, ColorAlways, ColorNever:
		return m, nil
	case "":
		return ColorAuto, nil
	default:
		return "", fmt.Errorf("invalid color mode: %s (must be 'auto', 'always', or 'never')", s)
	}
}

const (
	// zeroWidthMarker stands in for a match that consumed no text.
	zeroWidthMarker = "|"
	plainOpen       = "["
	plainClose      = "]"
)

// Printer writes reports with matches highlighted. Without color support,
// matches are wrapped in brackets instead.
type Printer struct {
	w        io.Writer
	colored  bool
	match    lipgloss.Style
	marker   lipgloss.Style
	label    lipgloss.Style
	failure  lipgloss.Style
	subtitle lipgloss.Style
}

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer, mode ColorMode) *Printer {
	r := lipgloss.NewRenderer(w)
	switch mode {
	case ColorAlways:
		r.SetColorProfile(termenv.ANSI256)
	case ColorNever:
		r.SetColorProfile(termenv.Ascii)
	}

	base := r.NewStyle().TabWidth(lipgloss.NoTabConversion)
	return &Printer{
		w:        w,
		colored:  r.ColorProfile() != termenv.Ascii,
		match:    base.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("214")),
		marker:   base.Foreground(lipgloss.Color("205")).Bold(true),
		label:    base.Bold(true),
		failure:  base.Foreground(lipgloss.Color("196")),
		subtitle: base.Foreground(lipgloss.Color("245")),
	}
}

// Colored reports whether the printer emits escape sequences.
func (p *Printer) Colored() bool {
	return p.colored
}

// Highlight returns subject with every match marked.
func (p *Printer) Highlight(subject string, matches []regex.Match) string {
	var sb strings.Builder
	for _, seg := range regex.Segments(subject, matches) {
		switch {
		case !seg.Matched:
			sb.WriteString(seg.Text)
		case seg.Text == "":
			sb.WriteString(p.marker.Render(zeroWidthMarker))
		case !p.colored:
			sb.WriteString(plainOpen + seg.Text + plainClose)
		default:
			sb.WriteString(p.renderLines(p.match, seg.Text))
		}
	}
	return sb.String()
}

// renderLines styles each line on its own; lipgloss pads multi-line blocks
// to a common width.
func (p *Printer) renderLines(style lipgloss.Style, s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = style.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}

// Print writes the pattern, the highlighted subject and the outcome of a
// report produced for subject.
func (p *Printer) Print(subject string, report tester.Report) error {
	var sb strings.Builder

	if report.Pattern != "" {
		fmt.Fprintf(&sb, "%s /%s/%s\n", p.label.Render("Pattern:"), report.Pattern, report.Flags)
	}

	switch report.Status {
	case regex.StatusCompileError:
		sb.WriteString(p.failure.Render(report.Notice))
		sb.WriteString("\n")
		return p.write(sb.String())
	case regex.StatusNoPattern:
		sb.WriteString(p.subtitle.Render(report.Notice))
		sb.WriteString("\n")
		return p.write(sb.String())
	}

	sb.WriteString(p.label.Render("Subject:"))
	sb.WriteString("\n")
	sb.WriteString(p.Highlight(subject, report.Matches))
	sb.WriteString("\n\n")

	if report.Status == regex.StatusMatched {
		sb.WriteString(report.Summary.String())
	} else {
		sb.WriteString(p.subtitle.Render(report.Notice))
		sb.WriteString("\n")
	}
	return p.write(sb.String())
}

func (p *Printer) write(s string) error {
	if _, err := io.WriteString(p.w, s); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
