package server

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/notedrop/notedrop-api/internal/apikey"
	"github.com/notedrop/notedrop-api/internal/auth"
	"github.com/notedrop/notedrop-api/internal/config"
	"github.com/notedrop/notedrop-api/internal/middleware"
	"github.com/notedrop/notedrop-api/internal/note"
)

// Services groups the module services the router depends on.
type Services struct {
	Auth   auth.Service
	APIKey apikey.Service
	Note   note.Service
}

// New creates and configures the router: chi middleware stack, the origin
// and csrf guards, per-route rate limits and the huma API with all module
// routes registered.
func New(cfg *config.Config, log *slog.Logger, services Services, limiter *middleware.RateLimiter) chi.Router {
	router := chi.NewMux()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(middleware.ClientIP)
	router.Use(chimw.Logger)
	router.Use(chimw.Recoverer)
	router.Use(chimw.Timeout(60 * time.Second))

	origins := strings.Split(cfg.Server.CORSOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	router.Use(middleware.OriginGuard(origins))
	router.Use(middleware.CSRFGuard)

	// Credential endpoints share a tight fixed window; everything else gets
	// a generous one.
	router.Use(routeLimits(limiter))

	apiConfig := huma.DefaultConfig("NoteDrop API", "1.0.0")
	apiConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
		},
		"apiKey": {
			Type: "apiKey",
			In:   "header",
			Name: "X-Api-Key",
		},
	}
	api := humachi.New(router, apiConfig)

	api.UseMiddleware(middleware.Authenticate(services.Auth, services.APIKey, log))

	authHandler := auth.NewHandler(services.Auth, log, cfg)
	authHandler.RegisterRoutes(api)

	keyHandler := apikey.NewHandler(services.APIKey, log)
	keyHandler.RegisterRoutes(api)

	noteHandler := note.NewHandler(services.Note, log)
	noteHandler.RegisterRoutes(api)

	// Register a simple health check endpoint.
	huma.Register(api, huma.Operation{
		OperationID: "get-health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health Check",
		Description: "Responds with the server's health status.",
	}, func(ctx context.Context, input *struct{}) (*struct {
		Body struct {
			Status string `json:"status"`
		}
	}, error) {
		resp := &struct {
			Body struct {
				Status string `json:"status"`
			}
		}{}
		resp.Body.Status = "ok"
		return resp, nil
	})

	return router
}

// routeLimits picks the rate limit window for a request by path prefix.
func routeLimits(limiter *middleware.RateLimiter) func(http.Handler) http.Handler {
	authLimit := limiter.Limit(time.Minute, 10)
	defaultLimit := limiter.Limit(time.Minute, 120)
	return func(next http.Handler) http.Handler {
		authLimited := authLimit(next)
		defaultLimited := defaultLimit(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/auth/") {
				authLimited.ServeHTTP(w, r)
				return
			}
			defaultLimited.ServeHTTP(w, r)
		})
	}
}
