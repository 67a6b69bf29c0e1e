package auth

import (
	"context"

	"github.com/notedrop/notedrop-api/internal/httpx"
	"github.com/notedrop/notedrop-api/internal/validation"
)

// PasswordResetRequestRequest carries the email to send a reset link to.
type PasswordResetRequestRequest struct {
	UserAgent string `header:"User-Agent"`
	Body      struct {
		Email string `json:"email" validate:"required,email"`
	}
}

// PasswordResetTokenRequest carries a reset token for validation.
type PasswordResetTokenRequest struct {
	Body struct {
		Token string `json:"token" validate:"required"`
	}
}

// PasswordResetValidateResponse reports whether the token is usable.
type PasswordResetValidateResponse struct {
	Body struct {
		OK    bool `json:"ok"`
		Valid bool `json:"valid"`
	}
}

// PasswordResetConfirmRequest carries the token and the new password.
type PasswordResetConfirmRequest struct {
	Body struct {
		Token       string `json:"token" validate:"required"`
		NewPassword string `json:"newPassword" validate:"required,min=8,max=64"`
	}
}

// PasswordResetRequestHandler starts a password reset. It always reports
// success, so the response leaks nothing about account existence.
func (h *Handler) PasswordResetRequestHandler(ctx context.Context, input *PasswordResetRequestRequest) (*OKResponse, error) {
	if err := validation.ValidateStruct(input.Body); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	if err := h.service.RequestPasswordReset(ctx, input.Body.Email, requestMeta(ctx, input.UserAgent)); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &OKResponse{}
	resp.Body.OK = true
	return resp, nil
}

// PasswordResetValidateHandler checks a reset token before the user is shown
// the new-password form.
func (h *Handler) PasswordResetValidateHandler(ctx context.Context, input *PasswordResetTokenRequest) (*PasswordResetValidateResponse, error) {
	if err := validation.ValidateStruct(input.Body); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	if err := h.service.ValidateResetToken(ctx, input.Body.Token); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &PasswordResetValidateResponse{}
	resp.Body.OK = true
	resp.Body.Valid = true
	return resp, nil
}

// PasswordResetConfirmHandler sets the new password and ends every open
// session of the account.
func (h *Handler) PasswordResetConfirmHandler(ctx context.Context, input *PasswordResetConfirmRequest) (*OKResponse, error) {
	if err := validation.ValidateStruct(input.Body); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	if err := h.service.ConfirmPasswordReset(ctx, input.Body.Token, input.Body.NewPassword); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &OKResponse{}
	resp.Body.OK = true
	return resp, nil
}
