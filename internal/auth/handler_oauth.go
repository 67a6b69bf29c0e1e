package auth

import (
	"context"
	"net/http"

	"github.com/notedrop/notedrop-api/internal/httpx"
)

// GoogleLoginRequest has no inputs beyond audit metadata.
type GoogleLoginRequest struct {
	UserAgent string `header:"User-Agent"`
}

// GoogleCallbackRequest carries the provider's redirect parameters.
type GoogleCallbackRequest struct {
	Code      string `query:"code"`
	State     string `query:"state"`
	UserAgent string `header:"User-Agent"`
}

// GoogleCallbackResponse redirects to the frontend with the session cookies
// already set. The frontend then calls the refresh endpoint for an access
// token, so the token never appears in a URL.
type GoogleCallbackResponse struct {
	Status    int
	Location  string        `header:"Location"`
	SetCookie []http.Cookie `header:"Set-Cookie"`
}

// GoogleLoginHandler redirects the browser to Google's consent screen.
func (h *Handler) GoogleLoginHandler(ctx context.Context, input *GoogleLoginRequest) (*RedirectResponse, error) {
	url, err := h.service.GoogleAuthURL(ctx, requestMeta(ctx, input.UserAgent))
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}
	return &RedirectResponse{Status: http.StatusFound, Location: url}, nil
}

// GoogleCallbackHandler completes the code exchange. Failures redirect to
// the frontend login page instead of rendering a bare error.
func (h *Handler) GoogleCallbackHandler(ctx context.Context, input *GoogleCallbackRequest) (*GoogleCallbackResponse, error) {
	result, err := h.service.LoginWithGoogle(ctx, input.Code, input.State, requestMeta(ctx, input.UserAgent))
	if err != nil {
		h.logger.Warn("google login failed", "error", err)
		return &GoogleCallbackResponse{
			Status:   http.StatusFound,
			Location: h.frontend + "/login?error=oauth",
		}, nil
	}

	csrfToken, err := newCSRFToken()
	if err != nil {
		h.logger.Error("failed to mint csrf token", "error", err)
		return nil, httpx.InternalProblem(ctx, "")
	}

	return &GoogleCallbackResponse{
		Status:    http.StatusFound,
		Location:  h.frontend + "/auth/callback",
		SetCookie: h.sessionCookies(result.RefreshTokenPlain, csrfToken),
	}, nil
}
