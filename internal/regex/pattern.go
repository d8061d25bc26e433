// Package regex compiles user-supplied patterns, enumerates their matches
// over a subject string, and renders the results for display.
//
// Patterns use JavaScript syntax and the flags "gimsuy", executed by the
// ECMAScript mode of regexp2. A few engine behaviours differ from a browser:
// captures inside a repeated group keep values from earlier iterations,
// multiline anchors do not treat "\r" as a line terminator, "." matches
// U+2028, and .NET-only escapes such as "\Z" and "\p{L}" without
// the u flag are accepted. All offsets are codepoint indices into the
// subject.
package regex

import (
	"fmt"

	"github.com/dlclark/regexp2"
)

// Pattern is a compiled pattern and flag set. It is built for a single
// matching pass and holds no state between calls to FindAll.
type Pattern struct {
	source string
	flags  Flags
	re     *regexp2.Regexp
	layout groupLayout
}

// Compile validates flags and compiles source. It returns ErrNoPattern for an
// empty source and a *CompileError for anything the engine rejects.
func Compile(source, flags string) (p *Pattern, err error) {
	if source == "" {
		return nil, ErrNoPattern
	}

	f, err := ParseFlags(flags)
	if err != nil {
		return nil, err
	}
	if ce := checkGroups(source); ce != nil {
		return nil, ce
	}

	// regexp2's parser panics on a handful of malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			p = nil
			err = &CompileError{Message: fmt.Sprint(r)}
		}
	}()

	re, err := regexp2.Compile(source, f.engineOptions())
	if err != nil {
		return nil, &CompileError{Message: err.Error()}
	}

	return &Pattern{
		source: source,
		flags:  f,
		re:     re,
		layout: newGroupLayout(re, source),
	}, nil
}

// Source returns the pattern text.
func (p *Pattern) Source() string {
	return p.source
}

// Flags returns the parsed flags.
func (p *Pattern) Flags() Flags {
	return p.flags
}

// NumGroups returns the number of capturing groups.
func (p *Pattern) NumGroups() int {
	return len(p.layout.numbers)
}

// GroupNames returns the name of each capturing group in declaration order,
// with "" for unnamed groups.
func (p *Pattern) GroupNames() []string {
	names := make([]string, len(p.layout.names))
	copy(names, p.layout.names)
	return names
}

// FindAll scans subject and returns its matches in offset order.
//
// Without the global flag at most one match is returned. With it, the scan
// resumes at the end of each match, or one codepoint past the start of a
// zero-width match, until the cursor passes the end of the subject. The
// sticky flag only accepts a match that begins exactly at the cursor.
func (p *Pattern) FindAll(subject string) ([]Match, error) {
	runes := []rune(subject)
	var matches []Match

	cursor := 0
	for cursor <= len(runes) {
		m, err := p.re.FindRunesMatchStartingAt(runes, cursor)
		if err != nil {
			return nil, fmt.Errorf("matching %q: %w", p.source, err)
		}
		if m == nil || m.Index < cursor {
			break
		}
		if p.flags.Sticky && m.Index != cursor {
			break
		}

		matches = append(matches, p.record(m))
		if !p.flags.Global {
			break
		}

		next := m.Index + m.Length
		if next == m.Index {
			next = m.Index + 1
		}
		cursor = next
	}

	return matches, nil
}

func (p *Pattern) record(m *regexp2.Match) Match {
	match := Match{
		Text:       m.String(),
		Start:      m.Index,
		End:        m.Index + m.Length,
		Groups:     make([]*Capture, len(p.layout.numbers)),
		GroupNames: p.layout.names,
	}
	if p.layout.hasNames() {
		match.Named = make(map[string]*Capture)
	}

	for i, n := range p.layout.numbers {
		var c *Capture
		if g := m.GroupByNumber(n); g != nil && len(g.Captures) > 0 {
			c = &Capture{Text: g.String(), Start: g.Index, End: g.Index + g.Length}
		}
		match.Groups[i] = c
		if name := p.layout.names[i]; name != "" {
			match.Named[name] = c
		}
	}
	return match
}
