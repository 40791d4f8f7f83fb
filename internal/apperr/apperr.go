package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error so callers can decide whether to reject,
// degrade, or roll back without string matching.
type Kind int

const (
	// Validation marks malformed or out-of-range input. Rejected before
	// any side effect.
	Validation Kind = iota + 1
	// NotFound marks an absent or not-owned quiz, question, or original
	// submission. Rejected, no side effect.
	NotFound
	// Generation marks unusable content from the question oracle. No
	// partial quiz is persisted.
	Generation
	// Transient marks an unavailable cache or suggestion oracle. Callers
	// degrade instead of aborting the primary operation.
	Transient
	// Persistence marks a transaction that could not commit. Rolled back
	// fully and surfaced to the caller.
	Persistence
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation_error"
	case NotFound:
		return "not_found"
	case Generation:
		return "generation_failure"
	case Transient:
		return "transient_dependency_failure"
	case Persistence:
		return "persistence_failure"
	}
	return "unknown"
}

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Msg, e.Err.Error())
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf returns the Kind of err, or 0 when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps an error to the response status used by the controllers.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case Validation:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Generation:
		return http.StatusBadGateway
	case Transient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
