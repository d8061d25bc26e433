package regex

import "errors"

// ErrNoPattern is returned by Compile when the pattern is empty. It is a
// display state ("enter a pattern"), not a failure.
var ErrNoPattern = errors.New("no pattern provided")

// CompileError reports a pattern or flag string rejected by the engine.
// Message is the engine's diagnostic, unmodified.
type CompileError struct {
	Message string
}

func (e *CompileError) Error() string {
	return e.Message
}

// IsCompileError reports whether err is, or wraps, a *CompileError.
func IsCompileError(err error) bool {
	var ce *CompileError
	return errors.As(err, &ce)
}
