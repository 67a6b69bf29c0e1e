package auth

import (
	"encoding/base64"
	"encoding/hex"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestHashToken(t *testing.T) {
	h := HashToken("some-token")
	if h != HashToken("some-token") {
		t.Fatal("HashToken is not deterministic")
	}
	if h == HashToken("some-other-token") {
		t.Fatal("distinct tokens share a hash")
	}
	if len(h) != 64 {
		t.Fatalf("hash length = %d, want 64 hex chars", len(h))
	}
	if _, err := hex.DecodeString(h); err != nil {
		t.Fatalf("hash is not hex: %v", err)
	}
}

func TestOpaqueTokenGeneration(t *testing.T) {
	verify, err := NewEmailVerificationToken()
	if err != nil {
		t.Fatalf("NewEmailVerificationToken: %v", err)
	}
	if raw, err := hex.DecodeString(verify.Plain); err != nil || len(raw) != verificationTokenBytes {
		t.Fatalf("verification token %q is not %d hex-encoded bytes", verify.Plain, verificationTokenBytes)
	}

	refresh, err := NewRefreshToken()
	if err != nil {
		t.Fatalf("NewRefreshToken: %v", err)
	}
	if raw, err := base64.RawURLEncoding.DecodeString(refresh.Plain); err != nil || len(raw) != refreshTokenBytes {
		t.Fatalf("refresh token %q is not %d base64url-encoded bytes", refresh.Plain, refreshTokenBytes)
	}

	reset, err := NewPasswordResetToken()
	if err != nil {
		t.Fatalf("NewPasswordResetToken: %v", err)
	}
	if raw, err := base64.RawURLEncoding.DecodeString(reset.Plain); err != nil || len(raw) != resetTokenBytes {
		t.Fatalf("reset token %q is not %d base64url-encoded bytes", reset.Plain, resetTokenBytes)
	}

	for _, tok := range []OpaqueToken{verify, refresh, reset} {
		if tok.Hash != HashToken(tok.Plain) {
			t.Fatal("stored hash does not match HashToken of the plaintext")
		}
	}

	again, err := NewRefreshToken()
	if err != nil {
		t.Fatalf("NewRefreshToken: %v", err)
	}
	if again.Plain == refresh.Plain {
		t.Fatal("two refresh tokens are identical")
	}
}

func TestTokenIssuerRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Minute)

	signed, err := issuer.Issue("user-1", "session-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	userID, sessionID, err := issuer.Verify(signed)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if userID != "user-1" || sessionID != "session-1" {
		t.Fatalf("claims = (%q, %q), want (user-1, session-1)", userID, sessionID)
	}
}

func TestTokenIssuerRejectsWrongSecret(t *testing.T) {
	signed, err := NewTokenIssuer("secret-a", time.Minute).Issue("user-1", "session-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, _, err := NewTokenIssuer("secret-b", time.Minute).Verify(signed); err == nil {
		t.Fatal("token signed with a different secret verified")
	}
}

func TestTokenIssuerRejectsExpired(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Minute)

	now := time.Now()
	claims := AccessTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
		},
		SessionID: "session-1",
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, _, err := issuer.Verify(signed); err == nil {
		t.Fatal("expired token verified")
	}
}

func TestTokenIssuerRejectsGarbage(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Minute)
	for _, bad := range []string{"", "not.a.jwt", "aaaa.bbbb.cccc"} {
		if _, _, err := issuer.Verify(bad); err == nil {
			t.Fatalf("garbage token %q verified", bad)
		}
	}
}
