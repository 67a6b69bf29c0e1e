package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Opaque token families. Distinct byte lengths/encodings per purpose, one
// shared sha256 lookup hash: only the digest is ever persisted, so a store
// compromise cannot yield usable tokens.
const (
	verificationTokenBytes = 32 // hex encoded
	refreshTokenBytes      = 48 // base64url encoded
	resetTokenBytes        = 48 // base64url encoded
)

// OpaqueToken pairs a freshly generated plaintext token with its storage hash.
type OpaqueToken struct {
	Plain string
	Hash  string
}

// HashToken derives the deterministic sha256 lookup key for a presented
// plaintext token.
func HashToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}

// NewEmailVerificationToken generates a hex-encoded email verification token.
func NewEmailVerificationToken() (OpaqueToken, error) {
	return newOpaqueToken(verificationTokenBytes, hex.EncodeToString)
}

// NewRefreshToken generates a base64url-encoded refresh token.
func NewRefreshToken() (OpaqueToken, error) {
	return newOpaqueToken(refreshTokenBytes, base64.RawURLEncoding.EncodeToString)
}

// NewPasswordResetToken generates a base64url-encoded password reset token.
func NewPasswordResetToken() (OpaqueToken, error) {
	return newOpaqueToken(resetTokenBytes, base64.RawURLEncoding.EncodeToString)
}

func newOpaqueToken(byteLen int, encode func([]byte) string) (OpaqueToken, error) {
	b := make([]byte, byteLen)
	if _, err := rand.Read(b); err != nil {
		return OpaqueToken{}, fmt.Errorf("generate token: %w", err)
	}
	plain := encode(b)
	return OpaqueToken{Plain: plain, Hash: HashToken(plain)}, nil
}

// --- Access tokens ---

// AccessTokenClaims carry subject=userID plus the session reference.
type AccessTokenClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
}

// TokenIssuer mints and verifies signed, time-bounded access tokens. Tokens
// are capability-bearing by signature alone; no server state backs them.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer creates a TokenIssuer with the given HS256 secret and TTL.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Issue mints a signed access token bound to the user and session.
func (t *TokenIssuer) Issue(userID, sessionID string) (string, error) {
	now := time.Now()
	claims := AccessTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
		SessionID: sessionID,
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Verify parses and validates an access token, enforcing signature and hard
// expiry. It returns the subject user ID and session ID.
func (t *TokenIssuer) Verify(tokenString string) (userID, sessionID string, err error) {
	claims := &AccessTokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return "", "", ErrUnauthorized.WithCause(err)
	}
	if claims.Subject == "" {
		return "", "", ErrUnauthorized.WithDetail("missing token subject")
	}
	return claims.Subject, claims.SessionID, nil
}
