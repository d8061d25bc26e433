package regex

import "errors"

// Capture is the text captured by one group and its codepoint span.
type Capture struct {
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Match is one occurrence of a pattern in the subject.
//
// Groups holds groups 1..N in declaration order. A nil entry is a group that
// did not take part in the match, which is different from a group that
// captured the empty string. Named is nil when the pattern declares no named
// groups.
type Match struct {
	Text       string              `json:"text"`
	Start      int                 `json:"start"`
	End        int                 `json:"end"`
	Groups     []*Capture          `json:"groups"`
	GroupNames []string            `json:"-"`
	Named      map[string]*Capture `json:"named,omitempty"`
}

// Group returns group n (1-based). ok is false when n is out of range; c is
// nil when the group did not participate.
func (m Match) Group(n int) (c *Capture, ok bool) {
	if n < 1 || n > len(m.Groups) {
		return nil, false
	}
	return m.Groups[n-1], true
}

// Empty reports whether the match is zero-width.
func (m Match) Empty() bool {
	return m.Start == m.End
}

// Status is the outcome of a matching pass.
type Status string

const (
	StatusNoPattern    Status = "no_pattern"
	StatusCompileError Status = "compile_error"
	StatusNoMatches    Status = "no_matches"
	StatusMatched      Status = "matched"
)

// Result is the outcome of Run. Err is set only for StatusCompileError.
type Result struct {
	Status  Status
	Pattern *Pattern
	Matches []Match
	Err     *CompileError
}

// Run compiles pattern with flags and matches it against subject. The three
// user-facing states (no pattern, compile error, no matches) are reported in
// the Result; the returned error is reserved for engine faults while
// matching.
func Run(pattern, flags, subject string) (Result, error) {
	p, err := Compile(pattern, flags)
	if errors.Is(err, ErrNoPattern) {
		return Result{Status: StatusNoPattern}, nil
	}
	var ce *CompileError
	if errors.As(err, &ce) {
		return Result{Status: StatusCompileError, Err: ce}, nil
	}
	if err != nil {
		return Result{}, err
	}

	matches, err := p.FindAll(subject)
	if err != nil {
		return Result{}, err
	}

	status := StatusMatched
	if len(matches) == 0 {
		status = StatusNoMatches
	}
	return Result{Status: status, Pattern: p, Matches: matches}, nil
}
