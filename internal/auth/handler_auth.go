package auth

import (
	"context"
	"net/http"

	"github.com/notedrop/notedrop-api/internal/contextx"
	"github.com/notedrop/notedrop-api/internal/httpx"
	"github.com/notedrop/notedrop-api/internal/validation"
)

// --- DTOs ---

// RegisterRequest defines the structure for the registration request body.
type RegisterRequest struct {
	Body struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8,max=64"`
	}
}

// RegisterResponse defines the structure for a successful registration response.
type RegisterResponse struct {
	Status int
	Body   struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		// VerificationToken is only populated outside production so local
		// frontends can complete the flow without a mail server.
		VerificationToken string `json:"verificationToken,omitempty"`
	}
}

// LoginRequest defines the structure for the login request body.
type LoginRequest struct {
	UserAgent string `header:"User-Agent"`
	Body      struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
}

// SessionResponse is shared by login and refresh: an access token in the
// body plus the refresh and csrf cookies.
type SessionResponse struct {
	SetCookie []http.Cookie `header:"Set-Cookie"`
	Body      struct {
		OK          bool   `json:"ok"`
		AccessToken string `json:"accessToken"`
	}
}

// RefreshRequest reads the refresh token from its cookie, never the body.
type RefreshRequest struct {
	RefreshToken string `cookie:"refresh_token" required:"false"`
	UserAgent    string `header:"User-Agent"`
}

// LogoutRequest reads the refresh token cookie if present.
type LogoutRequest struct {
	RefreshToken string `cookie:"refresh_token" required:"false"`
}

// OKResponse is the minimal acknowledgement body.
type OKResponse struct {
	SetCookie []http.Cookie `header:"Set-Cookie"`
	Body      struct {
		OK bool `json:"ok"`
	}
}

// --- Handlers ---

// RegisterHandler handles the user registration endpoint.
func (h *Handler) RegisterHandler(ctx context.Context, input *RegisterRequest) (*RegisterResponse, error) {
	if err := validation.ValidateStruct(input.Body); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	result, err := h.service.Register(ctx, input.Body.Email, input.Body.Password)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &RegisterResponse{Status: http.StatusCreated}
	resp.Body.ID = result.UserID
	resp.Body.Email = result.Email
	resp.Body.VerificationToken = result.VerificationToken
	return resp, nil
}

// LoginHandler handles the email/password login endpoint.
func (h *Handler) LoginHandler(ctx context.Context, input *LoginRequest) (*SessionResponse, error) {
	if err := validation.ValidateStruct(input.Body); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	result, err := h.service.Login(ctx, input.Body.Email, input.Body.Password, requestMeta(ctx, input.UserAgent))
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}
	return h.sessionResponse(ctx, result)
}

// RefreshHandler rotates the refresh token presented in the cookie.
func (h *Handler) RefreshHandler(ctx context.Context, input *RefreshRequest) (*SessionResponse, error) {
	result, err := h.service.Refresh(ctx, input.RefreshToken, requestMeta(ctx, input.UserAgent))
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}
	return h.sessionResponse(ctx, result)
}

// LogoutHandler revokes the current session and clears both cookies.
func (h *Handler) LogoutHandler(ctx context.Context, input *LogoutRequest) (*OKResponse, error) {
	if err := h.service.Logout(ctx, input.RefreshToken); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &OKResponse{SetCookie: h.clearedSessionCookies()}
	resp.Body.OK = true
	return resp, nil
}

// LogoutAllHandler revokes every session of the authenticated user.
func (h *Handler) LogoutAllHandler(ctx context.Context, _ *struct{}) (*OKResponse, error) {
	userID, _ := ctx.Value(contextx.UserIDKey).(string)
	if userID == "" {
		return nil, httpx.ToProblem(ctx, ErrUnauthorized)
	}

	if err := h.service.LogoutAll(ctx, userID); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &OKResponse{SetCookie: h.clearedSessionCookies()}
	resp.Body.OK = true
	return resp, nil
}

func (h *Handler) sessionResponse(ctx context.Context, result *LoginResult) (*SessionResponse, error) {
	csrfToken, err := newCSRFToken()
	if err != nil {
		h.logger.Error("failed to mint csrf token", "error", err)
		return nil, httpx.InternalProblem(ctx, "")
	}

	resp := &SessionResponse{SetCookie: h.sessionCookies(result.RefreshTokenPlain, csrfToken)}
	resp.Body.OK = true
	resp.Body.AccessToken = result.AccessToken
	return resp, nil
}
