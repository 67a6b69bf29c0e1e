package auth

import (
	"time"
)

// User is the identity anchor of the system. A user with a nil
// EmailVerifiedAt cannot log in locally.
type User struct {
	ID                           string     `db:"id"`
	Email                        string     `db:"email"`
	PasswordHash                 string     `db:"password_hash"`
	EmailVerifiedAt              *time.Time `db:"email_verified_at"`
	IsActive                     bool       `db:"is_active"`
	FailedLoginAttempts          int        `db:"failed_login_attempts"`
	LockedUntil                  *time.Time `db:"locked_until"`
	PasswordChangedAt            *time.Time `db:"password_changed_at"`
	LastLoginAt                  *time.Time `db:"last_login_at"`
	EmailVerificationTokenHash   *string    `db:"email_verification_token_hash"`
	EmailVerificationTokenSentAt *time.Time `db:"email_verification_token_sent_at"`
	CreatedAt                    time.Time  `db:"created_at"`
	UpdatedAt                    time.Time  `db:"updated_at"`
}

// Provider identifies an authentication provider for an Identity.
type Provider string

const (
	ProviderLocal  Provider = "LOCAL"
	ProviderGoogle Provider = "GOOGLE"
)

// Identity links a User to an authentication provider. (provider,
// provider_id) is unique; a user holds at most one identity per provider.
type Identity struct {
	ID         string    `db:"id"`
	UserID     string    `db:"user_id"`
	Provider   Provider  `db:"provider"`
	ProviderID string    `db:"provider_id"`
	CreatedAt  time.Time `db:"created_at"`
}

// Session is a refresh-token lineage node. Sessions are never hard-deleted;
// revocation and rotation are recorded so the full chain stays auditable.
type Session struct {
	ID                  string     `db:"id"`
	UserID              string     `db:"user_id"`
	RefreshTokenHash    string     `db:"refresh_token_hash"`
	ExpiresAt           time.Time  `db:"expires_at"`
	RevokedAt           *time.Time `db:"revoked_at"`
	RotatedAt           *time.Time `db:"rotated_at"`
	ReplacedBySessionID *string    `db:"replaced_by_session_id"`
	UserAgent           *string    `db:"user_agent"`
	IP                  *string    `db:"ip"`
	CreatedAt           time.Time  `db:"created_at"`
}

// Active reports whether the session can still mint access tokens:
// not revoked and not past its expiry. A rotated session may still be
// "active" by this definition; presenting its token again is the reuse
// signal handled by the service.
func (s *Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && s.ExpiresAt.After(now)
}

// PasswordResetToken is a one-time credential-reset capability.
type PasswordResetToken struct {
	ID        string     `db:"id"`
	UserID    string     `db:"user_id"`
	TokenHash string     `db:"token_hash"`
	ExpiresAt time.Time  `db:"expires_at"`
	UsedAt    *time.Time `db:"used_at"`
	IP        *string    `db:"ip"`
	UserAgent *string    `db:"user_agent"`
	CreatedAt time.Time  `db:"created_at"`
}

// OAuthState is the anti-CSRF/replay nonce for the authorization-code
// exchange. Consumed exactly once; expired or consumed states are rejected.
type OAuthState struct {
	State      string     `db:"state"`
	Provider   Provider   `db:"provider"`
	ExpiresAt  time.Time  `db:"expires_at"`
	ConsumedAt *time.Time `db:"consumed_at"`
	IP         *string    `db:"ip"`
	UserAgent  *string    `db:"user_agent"`
	CreatedAt  time.Time  `db:"created_at"`
}

// RequestMeta carries per-request audit metadata into the service layer.
type RequestMeta struct {
	IP        string
	UserAgent string
}

func (m RequestMeta) ipPtr() *string {
	if m.IP == "" {
		return nil
	}
	ip := m.IP
	return &ip
}

func (m RequestMeta) userAgentPtr() *string {
	if m.UserAgent == "" {
		return nil
	}
	ua := m.UserAgent
	return &ua
}
