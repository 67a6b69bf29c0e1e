package auth

import (
	"fmt"
	"net/http"
)

// DomainError is a structured, self-describing domain error used across the
// auth module. It carries HTTP/RFC7807-friendly metadata so a shared
// formatter can convert any domain error into a Problem response without
// enumerating error types.
type DomainError struct {
	// Code is a stable, machine-readable business code (e.g., "INVALID_CREDENTIALS").
	Code string

	// HTTPStatus is the HTTP status suggested for this error (400, 401, 409, 500).
	HTTPStatus int

	// Message is a human-readable message primarily for logs. When Detail is
	// empty, this is used as the public detail.
	Message string

	// Detail is a user-friendly, safe explanation for clients.
	Detail string

	// cause is the underlying error that triggered this one, if any.
	cause error
}

// Error satisfies the standard Go error interface.
func (e *DomainError) Error() string {
	msg := e.Detail
	if msg == "" {
		msg = e.Message
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.cause)
	}
	return msg
}

// Unwrap provides compatibility for errors.Is and errors.As, allowing access
// to the underlying error chain.
func (e *DomainError) Unwrap() error {
	return e.cause
}

// Is enables errors.Is comparisons based on the stable Code rather than
// pointer identity, so copies created via WithCause match their sentinel.
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

// WithDetail sets a public-friendly detail message for clients.
func (e *DomainError) WithDetail(detail string) *DomainError {
	cp := *e
	cp.Detail = detail
	return &cp
}

// --- RFC7807 mapping accessors (satisfy httpx.DomainProblem) ---

func (e *DomainError) ProblemCode() string { return e.Code }
func (e *DomainError) ProblemStatus() int {
	if e.HTTPStatus == 0 {
		return http.StatusInternalServerError
	}
	return e.HTTPStatus
}
func (e *DomainError) ProblemTitle() string { return http.StatusText(e.ProblemStatus()) }
func (e *DomainError) ProblemDetail() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Message
}
func (e *DomainError) ProblemTypeURI() string { return "urn:problem:auth/" + e.Code }
func (e *DomainError) ProblemContext() any    { return nil }

// --- Pre-defined Domain Errors ---

var (
	// Validation
	ErrInvalidEmail = &DomainError{
		Code:       "INVALID_EMAIL",
		HTTPStatus: http.StatusBadRequest,
		Message:    "invalid email address",
	}

	ErrWeakPassword = &DomainError{
		Code:       "WEAK_PASSWORD",
		HTTPStatus: http.StatusBadRequest,
		Message:    "password does not meet the strength requirements",
	}

	// Registration
	ErrEmailAlreadyInUse = &DomainError{
		Code:       "EMAIL_ALREADY_IN_USE",
		HTTPStatus: http.StatusConflict,
		Message:    "a user with this email already exists",
	}

	// Login / session. Deliberately indistinguishable for "no such user",
	// "wrong password" and "locked account".
	ErrInvalidCredentials = &DomainError{
		Code:       "INVALID_CREDENTIALS",
		HTTPStatus: http.StatusUnauthorized,
		Message:    "invalid email or password",
	}

	ErrEmailNotVerified = &DomainError{
		Code:       "EMAIL_NOT_VERIFIED",
		HTTPStatus: http.StatusUnauthorized,
		Message:    "email address has not been verified",
	}

	ErrUnauthorized = &DomainError{
		Code:       "UNAUTHORIZED",
		HTTPStatus: http.StatusUnauthorized,
		Message:    "unauthorized",
	}

	// Email verification
	ErrInvalidVerificationToken = &DomainError{
		Code:       "INVALID_VERIFICATION_TOKEN",
		HTTPStatus: http.StatusBadRequest,
		Message:    "the verification token is invalid or has expired",
	}

	// Password reset pre-flight validation (diagnostic; the confirm path
	// collapses all of these into UNAUTHORIZED).
	ErrInvalidToken = &DomainError{
		Code:       "INVALID_TOKEN",
		HTTPStatus: http.StatusUnauthorized,
		Message:    "the provided token is invalid",
	}

	ErrTokenAlreadyUsed = &DomainError{
		Code:       "TOKEN_ALREADY_USED",
		HTTPStatus: http.StatusUnauthorized,
		Message:    "the provided token has already been used",
	}

	ErrTokenExpired = &DomainError{
		Code:       "TOKEN_EXPIRED",
		HTTPStatus: http.StatusUnauthorized,
		Message:    "the provided token has expired",
	}

	ErrUserInactive = &DomainError{
		Code:       "USER_INACTIVE",
		HTTPStatus: http.StatusUnauthorized,
		Message:    "this account is deactivated",
	}

	// OAuth
	ErrInvalidOrExpiredState = &DomainError{
		Code:       "INVALID_OR_EXPIRED_STATE",
		HTTPStatus: http.StatusUnauthorized,
		Message:    "the oauth state is invalid, expired or already consumed",
	}

	ErrInvalidStateProvider = &DomainError{
		Code:       "INVALID_STATE_PROVIDER",
		HTTPStatus: http.StatusUnauthorized,
		Message:    "the oauth state belongs to a different provider",
	}

	ErrInvalidGoogleToken = &DomainError{
		Code:       "INVALID_GOOGLE_TOKEN",
		HTTPStatus: http.StatusUnauthorized,
		Message:    "the identity token returned by google could not be used",
	}

	// Repository sentinel
	ErrNotFound = &DomainError{
		Code:       "NOT_FOUND",
		HTTPStatus: http.StatusNotFound,
		Message:    "record not found",
	}

	// Generic internal
	ErrInternal = &DomainError{
		Code:       "INTERNAL_ERROR",
		HTTPStatus: http.StatusInternalServerError,
		Message:    "internal server error",
	}
)
