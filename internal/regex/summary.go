package regex

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// GroupView is one capture group as shown to the user.
type GroupView struct {
	Label  string `json:"label"`
	Value  string `json:"value"`
	Absent bool   `json:"absent"`
}

// Entry describes a single match.
type Entry struct {
	Ordinal int         `json:"ordinal"`
	Text    string      `json:"text"`
	Start   int         `json:"start"`
	Groups  []GroupView `json:"groups,omitempty"`
	Named   []GroupView `json:"named,omitempty"`
}

// Summary is the enumerable view of a match sequence.
type Summary struct {
	Count   int     `json:"count"`
	Entries []Entry `json:"entries"`
}

// Summarize builds the display view of matches. Numbered groups are listed in
// order with absent groups marked; named groups follow in declaration order
// and are left out when the pattern declares none.
func Summarize(matches []Match) Summary {
	s := Summary{Count: len(matches), Entries: make([]Entry, 0, len(matches))}
	for i, m := range matches {
		e := Entry{Ordinal: i + 1, Text: m.Text, Start: m.Start}
		for n, c := range m.Groups {
			e.Groups = append(e.Groups, groupView(strconv.Itoa(n+1), c))
			if n < len(m.GroupNames) && m.GroupNames[n] != "" {
				e.Named = append(e.Named, groupView(m.GroupNames[n], c))
			}
		}
		s.Entries = append(s.Entries, e)
	}
	return s
}

func groupView(label string, c *Capture) GroupView {
	if c == nil {
		return GroupView{Label: label, Absent: true}
	}
	return GroupView{Label: label, Value: c.Text}
}

// String renders the summary as plain text.
func (s Summary) String() string {
	if s.Count == 0 {
		return "No matches found.\n"
	}

	var sb strings.Builder
	if s.Count == 1 {
		sb.WriteString("Found 1 match\n")
	} else {
		fmt.Fprintf(&sb, "Found %d matches\n", s.Count)
	}
	for _, e := range s.Entries {
		fmt.Fprintf(&sb, "Match %d: %s (index %d)\n", e.Ordinal, strconv.Quote(e.Text), e.Start)
		for _, g := range e.Groups {
			fmt.Fprintf(&sb, "  Group %s: %s\n", g.Label, g.display())
		}
		for _, g := range e.Named {
			fmt.Fprintf(&sb, "  Group %q: %s\n", g.Label, g.display())
		}
	}
	return sb.String()
}

// Format writes the plain text rendering to w.
func (s Summary) Format(w io.Writer) error {
	_, err := io.WriteString(w, s.String())
	return err
}

func (g GroupView) display() string {
	if g.Absent {
		return "(absent)"
	}
	return strconv.Quote(g.Value)
}
