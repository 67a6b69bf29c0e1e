package templates

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func newTestEngine() *Engine {
	return NewEngine(Config{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRenderVerifyEmail(t *testing.T) {
	out, err := Render(context.Background(), newTestEngine(), VerifyEmail, VerifyEmailData{
		Link:         "https://app.example.com/verify-email?token=abc123",
		SupportEmail: "support@example.com",
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	if out.Subject != "Verify your email address" {
		t.Fatalf("subject = %q", out.Subject)
	}
	for _, body := range []string{out.EmailText, out.EmailHTML} {
		if !strings.Contains(body, "https://app.example.com/verify-email?token=abc123") {
			t.Fatalf("body missing the verification link:\n%s", body)
		}
		if !strings.Contains(body, "support@example.com") {
			t.Fatalf("body missing the support address:\n%s", body)
		}
	}
}

func TestRenderResetPassword(t *testing.T) {
	out, err := Render(context.Background(), newTestEngine(), ResetPassword, ResetPasswordData{
		Link:         "https://app.example.com/reset-password?token=abc123",
		SupportEmail: "support@example.com",
		ExpiresIn:    "30 minutes",
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	if out.Subject != "Reset your password" {
		t.Fatalf("subject = %q", out.Subject)
	}
	if !strings.Contains(out.EmailText, "30 minutes") || !strings.Contains(out.EmailHTML, "30 minutes") {
		t.Fatal("body missing the token lifetime")
	}
}

func TestRenderEscapesHTMLData(t *testing.T) {
	out, err := Render(context.Background(), newTestEngine(), VerifyEmail, VerifyEmailData{
		Link:         `https://app.example.com/?q="><script>alert(1)</script>`,
		SupportEmail: "support@example.com",
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(out.EmailHTML, "<script>") {
		t.Fatalf("data was not escaped in the html body:\n%s", out.EmailHTML)
	}
}

func TestRenderUnknownScenario(t *testing.T) {
	_, err := newTestEngine().RenderAny(context.Background(), "auth.no_such_template", nil)
	if err == nil {
		t.Fatal("rendering an unknown scenario did not fail")
	}
}
