package validation

import (
	"errors"
	"strings"
	"testing"
)

type signupForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Kind     string `json:"kind" validate:"omitempty,oneof=PUBLIC PRIVATE"`
}

func TestValidateStructOK(t *testing.T) {
	err := ValidateStruct(signupForm{
		Email:    "alice@example.com",
		Password: "long-enough",
		Kind:     "PUBLIC",
	})
	if err != nil {
		t.Fatalf("ValidateStruct: %v", err)
	}
}

func TestValidateStructFieldMessages(t *testing.T) {
	err := ValidateStruct(signupForm{Email: "nope", Password: "short", Kind: "FRIENDS"})
	if err == nil {
		t.Fatal("expected a validation error")
	}

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error type = %T, want *ValidationError", err)
	}

	fields := verr.Fields()
	if got := fields["email"]; len(got) != 1 || got[0] != "must be a valid email" {
		t.Fatalf("email messages = %v", got)
	}
	if got := fields["password"]; len(got) != 1 || got[0] != "must be at least 8 characters" {
		t.Fatalf("password messages = %v", got)
	}
	if got := fields["kind"]; len(got) != 1 || got[0] != "must be one of: PUBLIC, PRIVATE" {
		t.Fatalf("kind messages = %v", got)
	}
}

func TestValidateStructSummary(t *testing.T) {
	err := ValidateStruct(signupForm{Email: "nope", Password: "short"})
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if got := err.Error(); got != "invalid email, and 1 other error" {
		t.Fatalf("summary = %q", got)
	}

	err = ValidateStruct(signupForm{Email: "alice@example.com", Password: ""})
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if got := err.Error(); got != "password is required" {
		t.Fatalf("summary = %q", got)
	}
}

func TestValidationErrorProblemShape(t *testing.T) {
	err := ValidateStruct(signupForm{Email: "nope", Password: "long-enough"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error type = %T, want *ValidationError", err)
	}

	if verr.ProblemStatus() != 400 {
		t.Fatalf("status = %d, want 400", verr.ProblemStatus())
	}
	if verr.ProblemCode() != "VALIDATION_ERROR" {
		t.Fatalf("code = %q", verr.ProblemCode())
	}
	if !strings.HasPrefix(verr.ProblemTypeURI(), "urn:problem:") {
		t.Fatalf("type uri = %q", verr.ProblemTypeURI())
	}
}
