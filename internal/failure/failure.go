package failure

import (
	"errors"
	"fmt"
	"strings"
)

// Program prefixes every rendered failure.
const Program = "torilate"

// Unknown is the kind given to errors that did not originate as a failure.
const Unknown = kindCount

const segmentSep = ": "

// Error is a classified failure with a chain of context segments.
// segments[0] is the outermost (most recently added) context and the last
// element is the terminal cause message.
type Error struct {
	kind     Kind
	segments []string
	cause    error
}

// New creates a terminal failure of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	e := &Error{kind: kind}
	if msg := fmt.Sprintf(format, args...); msg != "" {
		e.segments = []string{msg}
	}
	return e
}

// WithCause returns a copy of e that unwraps to cause.
func (e *Error) WithCause(cause error) *Error {
	c := e.clone()
	c.cause = cause
	return c
}

// Wrap adds an outer context segment to err without discarding the inner
// detail. A nil err stays nil. Errors that are not failures become the
// inner segment of a failure of kind Unknown.
func Wrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	ctx := fmt.Sprintf(format, args...)

	var fe *Error
	if !errors.As(err, &fe) || fe == nil {
		return &Error{kind: Unknown, segments: []string{ctx, err.Error()}, cause: err}
	}

	c := fe.clone()
	if ctx != "" {
		c.segments = append([]string{ctx}, c.segments...)
	}
	return c
}

// Failed reports whether err represents a failure.
func Failed(err error) bool {
	if err == nil {
		return false
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe != nil && fe.kind != OK
	}
	return true
}

// KindOf returns the kind carried by err, OK for nil and Unknown for
// errors that are not failures.
func KindOf(err error) Kind {
	if err == nil {
		return OK
	}
	var fe *Error
	if errors.As(err, &fe) && fe != nil {
		return fe.kind
	}
	return Unknown
}

// ExitCode maps err to a process exit status.
func ExitCode(err error) int {
	if !Failed(err) {
		return 0
	}
	return int(KindOf(err))
}

// Kind returns the failure's kind.
func (e *Error) Kind() Kind {
	return e.kind
}

// Segments returns the context chain, outermost first.
func (e *Error) Segments() []string {
	return append([]string(nil), e.segments...)
}

// TopLevel returns the outermost context segment, or "" if there is none.
func (e *Error) TopLevel() string {
	if len(e.segments) == 0 {
		return ""
	}
	return e.segments[0]
}

// Chain joins all segments outer to inner.
func (e *Error) Chain() string {
	return strings.Join(e.segments, segmentSep)
}

// Error implements error using the full chain.
func (e *Error) Error() string {
	if len(e.segments) == 0 {
		return e.kind.String()
	}
	return e.Chain()
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches a Kind target against the failure's kind.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.kind
}

// Render formats e for the user. The concise form shows only the top-level
// segment; the verbose form shows every segment.
func (e *Error) Render(verbose bool) string {
	detail := e.Chain()
	if !verbose {
		detail = e.TopLevel()
	}
	if detail == "" {
		return fmt.Sprintf("%s: (%d) %s", Program, e.kind, e.kind)
	}
	return fmt.Sprintf("%s: (%d) %s: %s", Program, e.kind, e.kind, detail)
}

// Render formats any error the way (*Error).Render does; errors that are
// not failures render as kind Unknown.
func Render(err error, verbose bool) string {
	if err == nil {
		return ""
	}
	var fe *Error
	if errors.As(err, &fe) && fe != nil {
		return fe.Render(verbose)
	}
	return (&Error{kind: Unknown, segments: []string{err.Error()}}).Render(verbose)
}

func (e *Error) clone() *Error {
	return &Error{
		kind:     e.kind,
		segments: append([]string(nil), e.segments...),
		cause:    e.cause,
	}
}
