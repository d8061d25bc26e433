package regex

import (
	"slices"
	"strconv"

	"github.com/dlclark/regexp2"
)

// groupLayout maps declared capture slots (1..N in the order their opening
// parentheses appear) to engine group numbers. The engine numbers unnamed
// groups before named ones, so the two orders differ as soon as a pattern
// mixes both.
type groupLayout struct {
	numbers []int
	names   []string
}

func newGroupLayout(re *regexp2.Regexp, source string) groupLayout {
	engine := slices.Clone(re.GetGroupNumbers())
	slices.Sort(engine)

	var unnamed []int
	total := 0
	for _, n := range engine {
		if n == 0 {
			continue
		}
		total++
		if re.GroupNameFromNumber(n) == strconv.Itoa(n) {
			unnamed = append(unnamed, n)
		}
	}

	if l, ok := declaredLayout(re, declaredGroups(source), unnamed, total); ok {
		return l
	}

	l := groupLayout{numbers: make([]int, 0, total), names: make([]string, 0, total)}
	for _, n := range engine {
		if n == 0 {
			continue
		}
		name := re.GroupNameFromNumber(n)
		if name == strconv.Itoa(n) {
			name = ""
		}
		l.numbers = append(l.numbers, n)
		l.names = append(l.names, name)
	}
	return l
}

func declaredLayout(re *regexp2.Regexp, declared []string, unnamed []int, total int) (groupLayout, bool) {
	if len(declared) != total {
		return groupLayout{}, false
	}

	l := groupLayout{numbers: make([]int, 0, total), names: make([]string, 0, total)}
	used := make(map[int]bool, total)
	next := 0
	for _, name := range declared {
		var n int
		if name == "" {
			if next >= len(unnamed) {
				return groupLayout{}, false
			}
			n = unnamed[next]
			next++
		} else {
			n = re.GroupNumberFromName(name)
			if n <= 0 {
				return groupLayout{}, false
			}
		}
		if used[n] {
			return groupLayout{}, false
		}
		used[n] = true
		l.numbers = append(l.numbers, n)
		l.names = append(l.names, name)
	}
	return l, next == len(unnamed)
}

// hasNames reports whether any slot is named.
func (l groupLayout) hasNames() bool {
	for _, name := range l.names {
		if name != "" {
			return true
		}
	}
	return false
}

// groupOpenings returns the index of every '(' in rs that opens a group,
// skipping escapes and character classes.
func groupOpenings(rs []rune) []int {
	var at []int
	inClass := false
	for i := 0; i < len(rs); i++ {
		c := rs[i]
		switch {
		case c == '\\':
			i++
		case inClass:
			if c == ']' {
				inClass = false
			}
		case c == '[':
			inClass = true
		case c == '(':
			at = append(at, i)
		}
	}
	return at
}

// declaredGroups lists the capturing groups of a pattern in source order.
// Unnamed groups are reported as "".
func declaredGroups(pattern string) []string {
	var names []string
	rs := []rune(pattern)
	for _, i := range groupOpenings(rs) {
		if i+1 < len(rs) && rs[i+1] == '?' {
			if name, ok := groupName(rs, i+2); ok {
				names = append(names, name)
			}
			continue
		}
		names = append(names, "")
	}
	return names
}

// groupName reads a "<name>" group label starting at rs[i]. Look-behind
// assertions ("(?<=", "(?<!") are not groups.
func groupName(rs []rune, i int) (string, bool) {
	if i >= len(rs) || rs[i] != '<' {
		return "", false
	}
	i++
	if i < len(rs) && (rs[i] == '=' || rs[i] == '!') {
		return "", false
	}

	start := i
	for i < len(rs) && rs[i] != '>' {
		i++
	}
	if i >= len(rs) || i == start {
		return "", false
	}
	return string(rs[start:i]), true
}

// checkGroups rejects "(?" constructs that JavaScript does not accept but
// the engine would: inline options such as "(?i)", quoted names, and
// duplicate group names.
func checkGroups(pattern string) *CompileError {
	rs := []rune(pattern)
	seen := make(map[string]bool)
	for _, i := range groupOpenings(rs) {
		if i+1 >= len(rs) || rs[i+1] != '?' {
			continue
		}
		j := i + 2
		if j >= len(rs) {
			return groupError(pattern, "Invalid group")
		}
		switch rs[j] {
		case ':', '=', '!':
			continue
		case '<':
			if j+1 < len(rs) && (rs[j+1] == '=' || rs[j+1] == '!') {
				continue
			}
			name, ok := groupName(rs, j)
			if !ok {
				return groupError(pattern, "Invalid capture group name")
			}
			if seen[name] {
				return groupError(pattern, "Duplicate capture group name")
			}
			seen[name] = true
		default:
			if !validModifiers(rs, j) {
				return groupError(pattern, "Invalid group")
			}
		}
	}
	return nil
}

// validModifiers reports whether rs[i:] starts with a modifier group
// prefix such as "i:", "s-m:" or "-i:".
func validModifiers(rs []rune, i int) bool {
	used := make(map[rune]bool)
	added, removed := 0, 0
	minus := false
	for ; i < len(rs); i++ {
		c := rs[i]
		switch {
		case c == ':':
			return added+removed > 0
		case c == '-' && !minus:
			minus = true
		case (c == 'i' || c == 'm' || c == 's') && !used[c]:
			used[c] = true
			if minus {
				removed++
			} else {
				added++
			}
		default:
			return false
		}
	}
	return false
}

func groupError(pattern, reason string) *CompileError {
	return &CompileError{Message: "Invalid regular expression: /" + pattern + "/: " + reason}
}
