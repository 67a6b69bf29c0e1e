package apikey

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
func (e *DomainError) ProblemTypeURI() string { return "urn:problem:apikey/" + e.Code }
func (e *DomainError) ProblemContext() any    { return nil }

var (
	ErrNotFound = &DomainError{
		Code:       "API_KEY_NOT_FOUND",
		HTTPStatus: http.StatusNotFound,
		Message:    "API key not found.",
	}

	ErrInvalidKey = &DomainError{
		Code:       "INVALID_API_KEY",
		HTTPStatus: http.StatusUnauthorized,
		Message:    "Invalid or expired API key.",
	}

	ErrInternal = &DomainError{
		Code:       "INTERNAL_ERROR",
		HTTPStatus: http.StatusInternalServerError,
		Message:    "Something went wrong. Please try again later.",
	}
)
