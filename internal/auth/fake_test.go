package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/notedrop/notedrop-api/internal/config"
)

// fakeRepo is an in-memory Repository used by the service tests.
type fakeRepo struct {
	users       map[string]*User
	userByEmail map[string]string
	identities  map[string]*Identity
	sessions    map[string]*Session
	resetTokens map[string]*PasswordResetToken
	states      map[string]*OAuthState
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:       map[string]*User{},
		userByEmail: map[string]string{},
		identities:  map[string]*Identity{},
		sessions:    map[string]*Session{},
		resetTokens: map[string]*PasswordResetToken{},
		states:      map[string]*OAuthState{},
	}
}

func (f *fakeRepo) WithTx(_ context.Context, fn func(Repository) error) error {
	return fn(f)
}

func (f *fakeRepo) CreateUser(_ context.Context, u *User) error {
	cp := *u
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	cp.UpdatedAt = cp.CreatedAt
	f.users[cp.ID] = &cp
	f.userByEmail[cp.Email] = cp.ID
	return nil
}

func (f *fakeRepo) FindUserByEmail(_ context.Context, email string) (*User, error) {
	id, ok := f.userByEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *f.users[id]
	return &cp, nil
}

func (f *fakeRepo) FindUserByID(_ context.Context, id string) (*User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeRepo) FindUserByVerificationTokenHash(_ context.Context, tokenHash string) (*User, error) {
	for _, u := range f.users {
		if u.EmailVerificationTokenHash != nil && *u.EmailVerificationTokenHash == tokenHash {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) SetVerificationToken(_ context.Context, userID, tokenHash string, sentAt time.Time) error {
	u, ok := f.users[userID]
	if !ok || u.EmailVerifiedAt != nil {
		return ErrNotFound
	}
	u.EmailVerificationTokenHash = &tokenHash
	u.EmailVerificationTokenSentAt = &sentAt
	return nil
}

func (f *fakeRepo) MarkEmailVerified(_ context.Context, userID string, at time.Time) error {
	u, ok := f.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.EmailVerifiedAt = &at
	u.EmailVerificationTokenHash = nil
	u.EmailVerificationTokenSentAt = nil
	return nil
}

func (f *fakeRepo) RecordLoginFailure(_ context.Context, userID string, attempts int, lockedUntil *time.Time) error {
	u, ok := f.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.FailedLoginAttempts = attempts
	u.LockedUntil = lockedUntil
	return nil
}

func (f *fakeRepo) RecordLoginSuccess(_ context.Context, userID string, at time.Time) error {
	u, ok := f.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.FailedLoginAttempts = 0
	u.LockedUntil = nil
	u.LastLoginAt = &at
	return nil
}

func (f *fakeRepo) UpdatePassword(_ context.Context, userID, passwordHash string, changedAt time.Time) error {
	u, ok := f.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.PasswordChangedAt = &changedAt
	u.FailedLoginAttempts = 0
	u.LockedUntil = nil
	return nil
}

func (f *fakeRepo) CreateIdentity(_ context.Context, ident *Identity) error {
	cp := *ident
	f.identities[string(cp.Provider)+"|"+cp.ProviderID] = &cp
	return nil
}

func (f *fakeRepo) FindUserByIdentity(_ context.Context, provider Provider, providerID string) (*User, error) {
	ident, ok := f.identities[string(provider)+"|"+providerID]
	if !ok {
		return nil, ErrNotFound
	}
	return f.FindUserByID(context.Background(), ident.UserID)
}

func (f *fakeRepo) CreateSession(_ context.Context, s *Session) error {
	cp := *s
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	f.sessions[cp.ID] = &cp
	return nil
}

func (f *fakeRepo) FindSessionByTokenHash(_ context.Context, tokenHash string) (*Session, error) {
	for _, s := range f.sessions {
		if s.RefreshTokenHash == tokenHash {
			cp := *s
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) RevokeSession(_ context.Context, sessionID string, at time.Time) error {
	s, ok := f.sessions[sessionID]
	if !ok {
		return ErrNotFound
	}
	if s.RevokedAt == nil {
		s.RevokedAt = &at
	}
	return nil
}

func (f *fakeRepo) RevokeAllSessionsForUser(_ context.Context, userID string, at time.Time) error {
	for _, s := range f.sessions {
		if s.UserID == userID && s.RevokedAt == nil {
			s.RevokedAt = &at
		}
	}
	return nil
}

func (f *fakeRepo) MarkSessionRotated(_ context.Context, sessionID, replacedBySessionID string, at time.Time) error {
	s, ok := f.sessions[sessionID]
	if !ok {
		return ErrNotFound
	}
	s.RotatedAt = &at
	s.ReplacedBySessionID = &replacedBySessionID
	return nil
}

func (f *fakeRepo) CreateResetToken(_ context.Context, t *PasswordResetToken) error {
	cp := *t
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	f.resetTokens[cp.ID] = &cp
	return nil
}

func (f *fakeRepo) FindResetTokenByHash(_ context.Context, tokenHash string) (*PasswordResetToken, error) {
	for _, t := range f.resetTokens {
		if t.TokenHash == tokenHash {
			cp := *t
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) MarkResetTokenUsed(_ context.Context, id string, at time.Time) error {
	t, ok := f.resetTokens[id]
	if !ok {
		return ErrNotFound
	}
	t.UsedAt = &at
	return nil
}

func (f *fakeRepo) DeleteResetTokensForUser(_ context.Context, userID string) error {
	for id, t := range f.resetTokens {
		if t.UserID == userID {
			delete(f.resetTokens, id)
		}
	}
	return nil
}

func (f *fakeRepo) CreateOAuthState(_ context.Context, s *OAuthState) error {
	cp := *s
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	f.states[cp.State] = &cp
	return nil
}

func (f *fakeRepo) ConsumeOAuthState(_ context.Context, state string, at time.Time) (*OAuthState, error) {
	s, ok := f.states[state]
	if !ok || s.ConsumedAt != nil || !s.ExpiresAt.After(at) {
		return nil, ErrNotFound
	}
	s.ConsumedAt = &at
	cp := *s
	return &cp, nil
}

func (f *fakeRepo) DeleteExpiredOAuthStates(_ context.Context) (int64, error) {
	var n int64
	now := time.Now()
	for state, s := range f.states {
		if !s.ExpiresAt.After(now) {
			delete(f.states, state)
			n++
		}
	}
	return n, nil
}

// recordingMailer captures outgoing links instead of sending email.
type recordingMailer struct {
	verifyLinks []string
	resetLinks  []string
}

func (m *recordingMailer) SendVerifyEmail(_ context.Context, _, link string) {
	m.verifyLinks = append(m.verifyLinks, link)
}

func (m *recordingMailer) SendResetPasswordEmail(_ context.Context, _, link string) {
	m.resetLinks = append(m.resetLinks, link)
}

// fakeGoogle returns a canned identity instead of talking to Google.
type fakeGoogle struct {
	identity  *GoogleIdentity
	err       error
	lastState string
}

func (g *fakeGoogle) AuthCodeURL(state string) string {
	g.lastState = state
	return "https://accounts.google.test/o/oauth2/auth?state=" + state
}

func (g *fakeGoogle) ExchangeCode(_ context.Context, _ string) (*GoogleIdentity, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.identity, nil
}

type testEnv struct {
	repo   *fakeRepo
	mailer *recordingMailer
	google *fakeGoogle
	svc    Service
}

func newTestService(t *testing.T) *testEnv {
	t.Helper()
	repo := newFakeRepo()
	mailer := &recordingMailer{}
	google := &fakeGoogle{}
	svc := NewService(&Config{
		Repo:   repo,
		Mailer: mailer,
		Google: google,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config: &config.Config{
			Server: config.ServerConfig{Env: "test"},
			Auth: config.AuthConfig{
				JWTSecret:           "test-secret",
				AccessTokenTTL:      time.Minute,
				RefreshTokenTTLDays: 30,
				FrontendBaseURL:     "http://localhost:5173",
			},
		},
	})
	return &testEnv{repo: repo, mailer: mailer, google: google, svc: svc}
}
