package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/notedrop/notedrop-api/internal/config"
	"github.com/notedrop/notedrop-api/internal/contextx"
)

const (
	refreshCookieName = "refresh_token"
	csrfCookieName    = "csrf_token"
	refreshCookiePath = "/auth/refresh"
)

// Handler holds the dependencies for the auth module's HTTP handlers.
type Handler struct {
	service    Service
	logger     *slog.Logger
	refreshTTL time.Duration
	frontend   string
	production bool
}

// NewHandler creates a new handler for the auth module.
func NewHandler(service Service, logger *slog.Logger, cfg *config.Config) *Handler {
	return &Handler{
		service:    service,
		logger:     logger,
		refreshTTL: time.Duration(cfg.Auth.RefreshTokenTTLDays) * 24 * time.Hour,
		frontend:   cfg.Auth.FrontendBaseURL,
		production: cfg.IsProduction(),
	}
}

// RegisterRoutes sets up the routing for the auth module.
func (h *Handler) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "auth-register",
		Method:      http.MethodPost,
		Path:        "/auth/register",
		Summary:     "Register a new user",
	}, h.RegisterHandler)

	huma.Register(api, huma.Operation{
		OperationID: "auth-verify-email",
		Method:      http.MethodPost,
		Path:        "/auth/verify-email",
		Summary:     "Verify an email address with a token",
	}, h.VerifyEmailHandler)

	huma.Register(api, huma.Operation{
		OperationID:   "auth-verify-email-redirect",
		Method:        http.MethodGet,
		Path:          "/auth/verify-email",
		Summary:       "Verify an email address from a mail link",
		DefaultStatus: http.StatusFound,
	}, h.VerifyEmailRedirectHandler)

	huma.Register(api, huma.Operation{
		OperationID: "auth-resend-verification",
		Method:      http.MethodPost,
		Path:        "/auth/resend-verification",
		Summary:     "Resend the verification email",
	}, h.ResendVerificationHandler)

	huma.Register(api, huma.Operation{
		OperationID: "auth-login",
		Method:      http.MethodPost,
		Path:        "/auth/login",
		Summary:     "Log in with email and password",
	}, h.LoginHandler)

	huma.Register(api, huma.Operation{
		OperationID: "auth-refresh",
		Method:      http.MethodPost,
		Path:        "/auth/refresh",
		Summary:     "Rotate the refresh token and mint a new access token",
	}, h.RefreshHandler)

	huma.Register(api, huma.Operation{
		OperationID: "auth-logout",
		Method:      http.MethodPost,
		Path:        "/auth/logout",
		Summary:     "Log out the current session",
	}, h.LogoutHandler)

	huma.Register(api, huma.Operation{
		OperationID: "auth-logout-all",
		Method:      http.MethodPost,
		Path:        "/auth/logout-all",
		Summary:     "Log out every session of the current user",
		Security:    []map[string][]string{{"bearer": {}}},
	}, h.LogoutAllHandler)

	huma.Register(api, huma.Operation{
		OperationID: "auth-password-reset-request",
		Method:      http.MethodPost,
		Path:        "/auth/password-reset/request",
		Summary:     "Request a password reset email",
	}, h.PasswordResetRequestHandler)

	huma.Register(api, huma.Operation{
		OperationID: "auth-password-reset-validate",
		Method:      http.MethodPost,
		Path:        "/auth/password-reset/validate",
		Summary:     "Check whether a reset token is still usable",
	}, h.PasswordResetValidateHandler)

	huma.Register(api, huma.Operation{
		OperationID: "auth-password-reset-confirm",
		Method:      http.MethodPost,
		Path:        "/auth/password-reset/confirm",
		Summary:     "Set a new password with a reset token",
	}, h.PasswordResetConfirmHandler)

	huma.Register(api, huma.Operation{
		OperationID:   "auth-google-login",
		Method:        http.MethodGet,
		Path:          "/auth/login/google",
		Summary:       "Start the Google login flow",
		DefaultStatus: http.StatusFound,
	}, h.GoogleLoginHandler)

	huma.Register(api, huma.Operation{
		OperationID:   "auth-google-callback",
		Method:        http.MethodGet,
		Path:          "/auth/login/google/callback",
		Summary:       "Complete the Google login flow",
		DefaultStatus: http.StatusFound,
	}, h.GoogleCallbackHandler)
}

// requestMeta assembles audit metadata from the request context and headers.
func requestMeta(ctx context.Context, userAgent string) RequestMeta {
	ip, _ := ctx.Value(contextx.ClientIPKey).(string)
	return RequestMeta{IP: ip, UserAgent: userAgent}
}

// newCSRFToken mints the value for the double-submit cookie.
func newCSRFToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// sessionCookies builds the refresh and csrf cookies set on login and refresh.
// The refresh cookie is scoped to the refresh endpoint so the browser never
// sends it anywhere else; the csrf cookie is readable by the frontend on
// purpose, that is what double-submit needs.
func (h *Handler) sessionCookies(refreshTokenPlain, csrfToken string) []http.Cookie {
	maxAge := int(h.refreshTTL.Seconds())
	return []http.Cookie{
		{
			Name:     refreshCookieName,
			Value:    refreshTokenPlain,
			Path:     refreshCookiePath,
			MaxAge:   maxAge,
			HttpOnly: true,
			Secure:   h.production,
			SameSite: http.SameSiteLaxMode,
		},
		{
			Name:     csrfCookieName,
			Value:    csrfToken,
			Path:     "/",
			MaxAge:   maxAge,
			HttpOnly: false,
			Secure:   h.production,
			SameSite: http.SameSiteLaxMode,
		},
	}
}

// clearedSessionCookies expires both cookies.
func (h *Handler) clearedSessionCookies() []http.Cookie {
	return []http.Cookie{
		{
			Name:     refreshCookieName,
			Value:    "",
			Path:     refreshCookiePath,
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   h.production,
			SameSite: http.SameSiteLaxMode,
		},
		{
			Name:     csrfCookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			Secure:   h.production,
			SameSite: http.SameSiteLaxMode,
		},
	}
}
