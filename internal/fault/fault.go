// Package fault defines the typed error taxonomy shared by the pipeline
// components. Every component converts its failures into one of these kinds
// at its own boundary; callers branch on Kind rather than string matching.
package fault

import (
	"errors"
	"fmt"
)

type Kind string

const (
	// KindInvalidInput marks a precondition failure caught before any
	// external call was made (e.g. embedding empty text).
	KindInvalidInput Kind = "invalid_input"

	// KindServiceUnavailable marks any external service call failure,
	// transient or not. Retry policy belongs to the caller.
	KindServiceUnavailable Kind = "service_unavailable"

	// KindMalformedJSON marks a generation response that could not be
	// parsed even after recovery.
	KindMalformedJSON Kind = "malformed_json"

	// KindNotAnArray marks a recovered JSON value whose top level is not
	// an array.
	KindNotAnArray Kind = "not_an_array"
)

// Error carries a taxonomy kind plus a human-readable message. The wrapped
// cause, when present, is reachable through errors.Unwrap.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds a fault with no underlying cause.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds a fault around an underlying error.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), cause: cause}
}

// KindOf returns the taxonomy kind of err, or "" if err carries none.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// Is reports whether err is a fault of the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
