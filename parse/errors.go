package parse

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnterminatedQuote is wrapped by tokenize errors caused by an
	// unbalanced quote in non-lenient mode.
	ErrUnterminatedQuote = errors.New("unterminated quoted string")
	// ErrExhausted is wrapped by errors raised when a cursor runs out of
	// tokens.
	ErrExhausted = errors.New("not enough arguments")
	// ErrNotFound is wrapped when a required context key holds no value.
	ErrNotFound = errors.New("no value present")
	// ErrTooMany is wrapped when a single value is required but several
	// are present.
	ErrTooMany = errors.New("more than one value present")
)

// DefaultAnnotationWidth is the window width AnnotatedPosition uses when no
// explicit width is supplied.
const DefaultAnnotationWidth = 80

// Error is a positioned parse error: it carries the source string being
// parsed, the character offset the problem was detected at, and optionally
// a pre-rendered usage string attached by an outer grammar element.
// Errors of this kind are recoverable - backtracking combinators swallow
// them and try an alternative - until they reach the caller, at which
// point AnnotatedPosition renders a user-facing pointer into the input.
type Error struct {
	Source  string
	Offset  int
	Message string
	Usage   string
	err     error
}

// NewError creates a positioned parse error.
func NewError(source string, offset int, message string) *Error {
	return &Error{Source: source, Offset: offset, Message: message}
}

// NewErrorf creates a positioned parse error with a formatted message.
func NewErrorf(source string, offset int, format string, args ...interface{}) *Error {
	return NewError(source, offset, fmt.Sprintf(format, args...))
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.err
}

// Wrap attaches a sentinel so callers can classify the error with
// errors.Is. Returns the receiver for chaining.
func (e *Error) Wrap(err error) *Error {
	e.err = err
	return e
}

// WithUsage returns a copy of the error carrying the given usage string.
// The original error is left untouched so backtracking callers which
// re-throw it see it unmodified.
func (e *Error) WithUsage(usage string) *Error {
	clone := *e
	clone.Usage = usage
	return &clone
}

// AnnotatedPosition renders the source line with a ^ pointer under the
// error offset, using the default window width.
func (e *Error) AnnotatedPosition() string {
	return e.AnnotatedPositionWidth(DefaultAnnotationWidth)
}

// AnnotatedPositionWidth renders the source line with a ^ pointer under
// the error offset. Long inputs are elided to a window of at most width
// characters around the offset.
func (e *Error) AnnotatedPositionWidth(width int) string {
	if width < 10 {
		width = 10
	}
	source := e.Source
	position := e.Offset
	if position > len(source) {
		position = len(source)
	}
	if len(source) > width {
		half := width / 2
		start := position - half
		if start < 0 {
			start = 0
		}
		end := start + width
		if end > len(source) {
			end = len(source)
			start = end - width
		}
		var sb strings.Builder
		if start > 0 {
			sb.WriteString("...")
		}
		sb.WriteString(source[start:end])
		if end < len(source) {
			sb.WriteString("...")
		}
		position -= start
		if start > 0 {
			position += 3
		}
		source = sb.String()
	}

	return source + "\n" + strings.Repeat(" ", position) + "^"
}
