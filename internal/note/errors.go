package note

import (
	"fmt"
	"net/http"
)

// DomainError mirrors the shape used across modules so httpx can format any
// of them into an RFC 7807 problem.
type DomainError struct {
	Code       string
	HTTPStatus int
	Message    string
	cause      error
}

func (e *DomainError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error { return e.cause }

func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithCause returns a copy of the DomainError wrapping the provided cause.
func (e *DomainError) WithCause(err error) *DomainError {
	if err == nil {
		return e
	}
	cp := *e
	cp.cause = err
	return &cp
}

func (e *DomainError) ProblemCode() string { return e.Code }
func (e *DomainError) ProblemStatus() int {
	if e.HTTPStatus == 0 {
		return http.StatusInternalServerError
	}
	return e.HTTPStatus
}
func (e *DomainError) ProblemTitle() string   { return http.StatusText(e.ProblemStatus()) }
func (e *DomainError) ProblemDetail() string  { return e.Message }
func (e *DomainError) ProblemTypeURI() string { return "urn:problem:note/" + e.Code }
func (e *DomainError) ProblemContext() any    { return nil }

var (
	// ErrNotFound also masks notes the caller may not see; existence is not
	// disclosed for private notes.
	ErrNotFound = &DomainError{
		Code:       "NOTE_NOT_FOUND",
		HTTPStatus: http.StatusNotFound,
		Message:    "Note not found.",
	}

	ErrInvalidVisibility = &DomainError{
		Code:       "INVALID_VISIBILITY",
		HTTPStatus: http.StatusBadRequest,
		Message:    "Visibility must be PUBLIC or PRIVATE.",
	}

	ErrInternal = &DomainError{
		Code:       "INTERNAL_ERROR",
		HTTPStatus: http.StatusInternalServerError,
		Message:    "Something went wrong. Please try again later.",
	}
)
