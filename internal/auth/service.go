package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/notedrop/notedrop-api/internal/config"
)

// State-machine constants of the session/auth lifecycle.
const (
	maxFailedLoginAttempts = 10
	lockoutDuration        = 15 * time.Minute
	resetTokenTTL          = 30 * time.Minute
	verificationTokenTTL   = 24 * time.Hour
	resendCooldown         = 60 * time.Second
	oauthStateTTL          = 10 * time.Minute
)

// RegisterResult is returned by Register. VerificationToken is populated
// only outside production so tests and local frontends can complete the
// flow without a mailbox.
type RegisterResult struct {
	UserID            string
	Email             string
	EmailVerified     bool
	VerificationToken string
}

// LoginResult carries the signed access token for the caller and the
// refresh-token plaintext for the boundary layer to store as an HTTP-only
// cookie.
type LoginResult struct {
	AccessToken       string
	RefreshTokenPlain string
}

// Mailer dispatches transactional auth emails. Delivery is fire-and-forget:
// implementations must not block the request path and must swallow (log)
// failures, which never roll back the primary transaction.
type Mailer interface {
	SendVerifyEmail(ctx context.Context, to, link string)
	SendResetPasswordEmail(ctx context.Context, to, link string)
}

// GoogleIdentity is the validated subset of the provider's identity token.
type GoogleIdentity struct {
	Subject string
	Email   string
}

// GoogleProvider abstracts the authorization-code exchange with Google so
// the service can be tested without network access.
type GoogleProvider interface {
	AuthCodeURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*GoogleIdentity, error)
}

// Service is the orchestration layer of the authentication core. It owns
// all invariant enforcement and transaction boundaries; collaborators never
// mutate user/session/token rows directly.
type Service interface {
	Register(ctx context.Context, email, password string) (*RegisterResult, error)
	VerifyEmail(ctx context.Context, tokenPlain string) error
	ResendVerification(ctx context.Context, email string) error

	Login(ctx context.Context, email, password string, meta RequestMeta) (*LoginResult, error)
	Refresh(ctx context.Context, refreshTokenPlain string, meta RequestMeta) (*LoginResult, error)
	Logout(ctx context.Context, refreshTokenPlain string) error
	LogoutAll(ctx context.Context, userID string) error

	RequestPasswordReset(ctx context.Context, email string, meta RequestMeta) error
	ValidateResetToken(ctx context.Context, tokenPlain string) error
	ConfirmPasswordReset(ctx context.Context, tokenPlain, newPassword string) error

	GoogleAuthURL(ctx context.Context, meta RequestMeta) (string, error)
	LoginWithGoogle(ctx context.Context, code, state string, meta RequestMeta) (*LoginResult, error)
	CleanupExpiredOAuthStates(ctx context.Context) error

	// VerifyAccessToken checks signature and expiry of a bearer access token
	// and returns its subject and session claims. Used by the HTTP middleware.
	VerifyAccessToken(tokenString string) (userID, sessionID string, err error)
}

// service implements the Service interface.
type service struct {
	repo       Repository
	mailer     Mailer
	google     GoogleProvider
	tokens     *TokenIssuer
	logger     *slog.Logger
	refreshTTL time.Duration
	frontend   string
	production bool
}

// Config holds the dependencies for the auth service.
type Config struct {
	Repo   Repository
	Mailer Mailer
	Google GoogleProvider
	Logger *slog.Logger
	Config *config.Config
}

// NewService creates a new auth service with the given dependencies.
func NewService(cfg *Config) Service {
	google := cfg.Google
	if google == nil {
		google = NewGoogleOAuth(cfg.Config.Google)
	}
	return &service{
		repo:       cfg.Repo,
		mailer:     cfg.Mailer,
		google:     google,
		tokens:     NewTokenIssuer(cfg.Config.Auth.JWTSecret, cfg.Config.Auth.AccessTokenTTL),
		logger:     cfg.Logger,
		refreshTTL: time.Duration(cfg.Config.Auth.RefreshTokenTTLDays) * 24 * time.Hour,
		frontend:   cfg.Config.Auth.FrontendBaseURL,
		production: cfg.Config.IsProduction(),
	}
}

func (s *service) VerifyAccessToken(tokenString string) (string, string, error) {
	return s.tokens.Verify(tokenString)
}
