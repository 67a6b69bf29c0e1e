package auth

import (
	"context"
	"net/http"

	"github.com/notedrop/notedrop-api/internal/httpx"
	"github.com/notedrop/notedrop-api/internal/validation"
)

// VerifyEmailRequest carries the verification token in the body.
type VerifyEmailRequest struct {
	Body struct {
		Token string `json:"token" validate:"required"`
	}
}

// VerifyEmailRedirectRequest carries the token as a query parameter, the
// shape a mail client link produces.
type VerifyEmailRedirectRequest struct {
	Token string `query:"token"`
}

// RedirectResponse sends the browser to a frontend page.
type RedirectResponse struct {
	Status   int
	Location string `header:"Location"`
}

// ResendVerificationRequest carries the email to resend the link to.
type ResendVerificationRequest struct {
	Body struct {
		Email string `json:"email" validate:"required,email"`
	}
}

// VerifyEmailHandler consumes a verification token posted by the frontend.
func (h *Handler) VerifyEmailHandler(ctx context.Context, input *VerifyEmailRequest) (*OKResponse, error) {
	if err := validation.ValidateStruct(input.Body); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	if err := h.service.VerifyEmail(ctx, input.Body.Token); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &OKResponse{}
	resp.Body.OK = true
	return resp, nil
}

// VerifyEmailRedirectHandler consumes a verification token from a mail link
// and redirects to the frontend result page either way.
func (h *Handler) VerifyEmailRedirectHandler(ctx context.Context, input *VerifyEmailRedirectRequest) (*RedirectResponse, error) {
	if err := h.service.VerifyEmail(ctx, input.Token); err != nil {
		return &RedirectResponse{Status: http.StatusFound, Location: h.frontend + "/verify-failed"}, nil
	}
	return &RedirectResponse{Status: http.StatusFound, Location: h.frontend + "/verified"}, nil
}

// ResendVerificationHandler re-sends the verification email. The response is
// identical whether or not the address has an account.
func (h *Handler) ResendVerificationHandler(ctx context.Context, input *ResendVerificationRequest) (*OKResponse, error) {
	if err := validation.ValidateStruct(input.Body); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	if err := h.service.ResendVerification(ctx, input.Body.Email); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &OKResponse{}
	resp.Body.OK = true
	return resp, nil
}
