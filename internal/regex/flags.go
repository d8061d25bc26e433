package regex

import (
	"strings"

	"github.com/dlclark/regexp2"
)

// Flag is a single-character pattern modifier.
type Flag rune

// Recognised flags, in the canonical order used by Flags.String.
const (
	FlagGlobal     Flag = 'g'
	FlagIgnoreCase Flag = 'i'
	FlagMultiline  Flag = 'm'
	FlagDotAll     Flag = 's'
	FlagUnicode    Flag = 'u'
	FlagSticky     Flag = 'y'
)

const canonicalFlagsOrder = "gimsuy"

// Flags is a validated set of flags.
type Flags struct {
	Global     bool
	IgnoreCase bool
	Multiline  bool
	DotAll     bool
	Unicode    bool
	Sticky     bool
}

// ParseFlags validates a flag string. Each flag may appear at most once and
// must be one of "gimsuy".
func ParseFlags(s string) (Flags, error) {
	var f Flags
	seen := make(map[rune]bool, len(s))
	for _, r := range s {
		if seen[r] {
			return Flags{}, invalidFlags(s)
		}
		seen[r] = true

		switch Flag(r) {
		case FlagGlobal:
			f.Global = true
		case FlagIgnoreCase:
			f.IgnoreCase = true
		case FlagMultiline:
			f.Multiline = true
		case FlagDotAll:
			f.DotAll = true
		case FlagUnicode:
			f.Unicode = true
		case FlagSticky:
			f.Sticky = true
		default:
			return Flags{}, invalidFlags(s)
		}
	}
	return f, nil
}

// String returns the flags in canonical order.
func (f Flags) String() string {
	var sb strings.Builder
	for _, r := range canonicalFlagsOrder {
		if f.has(Flag(r)) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func (f Flags) has(flag Flag) bool {
	switch flag {
	case FlagGlobal:
		return f.Global
	case FlagIgnoreCase:
		return f.IgnoreCase
	case FlagMultiline:
		return f.Multiline
	case FlagDotAll:
		return f.DotAll
	case FlagUnicode:
		return f.Unicode
	case FlagSticky:
		return f.Sticky
	}
	return false
}

// engineOptions maps the flags the engine understands. Global and sticky are
// scan policies handled by the matcher.
func (f Flags) engineOptions() regexp2.RegexOptions {
	opts := regexp2.RegexOptions(regexp2.ECMAScript)
	if f.IgnoreCase {
		opts |= regexp2.IgnoreCase
	}
	if f.Multiline {
		opts |= regexp2.Multiline
	}
	if f.DotAll {
		opts |= regexp2.Singleline
	}
	if f.Unicode {
		opts |= regexp2.Unicode
	}
	return opts
}

func invalidFlags(s string) *CompileError {
	return &CompileError{Message: "invalid regular expression flags '" + s + "'"}
}
