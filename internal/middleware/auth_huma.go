package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/notedrop/notedrop-api/internal/apikey"
	"github.com/notedrop/notedrop-api/internal/auth"
	"github.com/notedrop/notedrop-api/internal/contextx"
	"github.com/notedrop/notedrop-api/internal/httpx"
)

// Authenticate is a router-agnostic huma middleware that resolves the
// caller's identity and injects it into the request context. Two credential
// kinds are accepted: a bearer access token, which carries a user and a
// session, and an X-Api-Key header, which carries only a user. Operations
// without a security requirement pass through untouched.
func Authenticate(authService auth.Service, keyService apikey.Service, logger *slog.Logger) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if len(ctx.Operation().Security) == 0 {
			next(ctx)
			return
		}

		r, w := humachi.Unwrap(ctx)

		writeUnauthorized := func(detail string) {
			p := &httpx.Problem{
				Type:      "urn:problem:auth/UNAUTHORIZED",
				Title:     http.StatusText(http.StatusUnauthorized),
				Status:    http.StatusUnauthorized,
				Detail:    detail,
				Code:      "UNAUTHORIZED",
				RequestID: chimw.GetReqID(r.Context()),
			}
			w.Header().Set("Content-Type", "application/problem+json")
			w.WriteHeader(p.GetStatus())
			_ = json.NewEncoder(w).Encode(p)
		}

		if rawKey := r.Header.Get("X-Api-Key"); rawKey != "" {
			userID, err := keyService.Validate(r.Context(), rawKey)
			if err != nil {
				logger.Warn("api key rejected", "error", err)
				writeUnauthorized("invalid API key")
				return
			}
			ctx = huma.WithValue(ctx, contextx.UserIDKey, userID)
			next(ctx)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeUnauthorized("missing credentials")
			return
		}
		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found {
			writeUnauthorized("invalid authorization header format")
			return
		}

		userID, sessionID, err := authService.VerifyAccessToken(tokenString)
		if err != nil {
			logger.Warn("access token rejected", "error", err)
			writeUnauthorized("invalid or expired token")
			return
		}

		ctx = huma.WithValue(ctx, contextx.UserIDKey, userID)
		ctx = huma.WithValue(ctx, contextx.SessionIDKey, sessionID)
		next(ctx)
	}
}
