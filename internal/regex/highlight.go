package regex

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// DefaultHighlightClass is the CSS class put on highlighted spans.
const DefaultHighlightClass = "regex-match"

// ValidSubject replaces every invalid UTF-8 byte in s with U+FFFD, the same
// way matching decodes the subject, so offsets and rendered text agree.
func ValidSubject(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return string([]rune(s))
}

// Segment is a run of subject text, either inside a match or between matches.
type Segment struct {
	Text    string
	Matched bool
}

// Segments splits subject at the match boundaries. Matches must be in offset
// order and must not overlap; offsets are clamped to the subject so a stale
// match list cannot slice out of range. A zero-width match yields an empty
// matched segment.
func Segments(subject string, matches []Match) []Segment {
	runes := []rune(subject)
	segs := make([]Segment, 0, 2*len(matches)+1)

	last := 0
	for _, m := range matches {
		start := clamp(m.Start, last, len(runes))
		end := clamp(m.End, start, len(runes))
		if start > last {
			segs = append(segs, Segment{Text: string(runes[last:start])})
		}
		segs = append(segs, Segment{Text: string(runes[start:end]), Matched: true})
		last = end
	}
	if last < len(runes) {
		segs = append(segs, Segment{Text: string(runes[last:])})
	}
	return segs
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Highlighter renders a subject as markup with every match wrapped in a span.
type Highlighter struct {
	class string
	open  string
}

// NewHighlighter returns a Highlighter using class for its spans, or
// DefaultHighlightClass when class is empty.
func NewHighlighter(class string) *Highlighter {
	if class == "" {
		class = DefaultHighlightClass
	}
	return &Highlighter{
		class: class,
		open:  `<span class="` + html.EscapeString(class) + `">`,
	}
}

// Class returns the span class.
func (h *Highlighter) Class() string {
	return h.class
}

// Render escapes the gaps and the matched text separately and wraps each
// match. With no matches the result is the escaped subject.
func (h *Highlighter) Render(subject string, matches []Match) string {
	subject = ValidSubject(subject)
	if len(matches) == 0 {
		return html.EscapeString(subject)
	}

	var sb strings.Builder
	sb.Grow(len(subject) + len(matches)*(len(h.open)+len("</span>")))
	for _, seg := range Segments(subject, matches) {
		if !seg.Matched {
			sb.WriteString(html.EscapeString(seg.Text))
			continue
		}
		sb.WriteString(h.open)
		sb.WriteString(html.EscapeString(seg.Text))
		sb.WriteString("</span>")
	}
	return sb.String()
}

// ValidClassName reports whether s is usable as a single CSS class token.
func ValidClassName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_', r == '-':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
