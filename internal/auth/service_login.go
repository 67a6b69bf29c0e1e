package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Login authenticates a local user, enforcing verification gating and the
// failed-attempt lockout, and opens a fresh session.
func (s *service) Login(ctx context.Context, email, password string, meta RequestMeta) (*LoginResult, error) {
	normalized, err := NormalizeEmail(email)
	if err != nil {
		// Malformed emails cannot match an account; same outward failure.
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	user, err := s.repo.FindUserByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("failed to find user by email", "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	// Locked and inactive accounts fail exactly like a wrong password.
	if user.LockedUntil != nil && user.LockedUntil.After(now) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if user.EmailVerifiedAt == nil {
		return nil, ErrEmailNotVerified
	}

	ok, err := VerifyPassword(user.PasswordHash, password)
	if err != nil {
		s.logger.Error("failed to verify password", "user_id", user.ID, "error", err)
		return nil, ErrInternal.WithCause(err)
	}
	if !ok {
		attempts := user.FailedLoginAttempts + 1
		var lockedUntil *time.Time
		if attempts >= maxFailedLoginAttempts {
			until := now.Add(lockoutDuration)
			lockedUntil = &until
		}
		if err := s.repo.RecordLoginFailure(ctx, user.ID, attempts, lockedUntil); err != nil {
			s.logger.Error("failed to record login failure", "user_id", user.ID, "error", err)
		}
		return nil, ErrInvalidCredentials
	}

	if err := s.repo.RecordLoginSuccess(ctx, user.ID, now); err != nil {
		s.logger.Error("failed to record login success", "user_id", user.ID, "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	result, err := s.openSession(ctx, s.repo, user.ID, meta)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return result, nil
}

// Refresh rotates a refresh token. An already-rotated token is treated as
// theft: every session of the account is revoked and the caller gets the
// same failure shape as any other invalid refresh.
func (s *service) Refresh(ctx context.Context, refreshTokenPlain string, meta RequestMeta) (*LoginResult, error) {
	if refreshTokenPlain == "" {
		return nil, ErrUnauthorized
	}

	session, err := s.repo.FindSessionByTokenHash(ctx, HashToken(refreshTokenPlain))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUnauthorized
		}
		s.logger.Error("failed to look up session", "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	now := time.Now()
	if !session.Active(now) {
		return nil, ErrUnauthorized
	}

	// Reuse detection: this refresh token was already exchanged once.
	if session.RotatedAt != nil {
		s.logger.Warn("refresh token reuse detected, revoking all sessions", "user_id", session.UserID, "session_id", session.ID)
		if err := s.repo.RevokeAllSessionsForUser(ctx, session.UserID, now); err != nil {
			s.logger.Error("failed to revoke sessions after reuse detection", "user_id", session.UserID, "error", err)
		}
		return nil, ErrUnauthorized
	}

	user, err := s.repo.FindUserByID(ctx, session.UserID)
	if err != nil {
		s.logger.Error("failed to load session user", "session_id", session.ID, "error", err)
		return nil, ErrInternal.WithCause(err)
	}
	if !user.IsActive {
		if err := s.repo.RevokeSession(ctx, session.ID, now); err != nil {
			s.logger.Error("failed to revoke session of inactive user", "session_id", session.ID, "error", err)
		}
		return nil, ErrUnauthorized
	}

	// Sessions created before a password change are stale.
	if user.PasswordChangedAt != nil && user.PasswordChangedAt.After(session.CreatedAt) {
		if err := s.repo.RevokeAllSessionsForUser(ctx, user.ID, now); err != nil {
			s.logger.Error("failed to revoke stale sessions", "user_id", user.ID, "error", err)
		}
		return nil, ErrUnauthorized
	}

	refresh, err := NewRefreshToken()
	if err != nil {
		return nil, ErrInternal.WithCause(err)
	}
	newSessionID, err := uuid.NewV7()
	if err != nil {
		return nil, ErrInternal.WithCause(err)
	}

	newSession := &Session{
		ID:               newSessionID.String(),
		UserID:           user.ID,
		RefreshTokenHash: refresh.Hash,
		ExpiresAt:        now.Add(s.refreshTTL),
		UserAgent:        meta.userAgentPtr(),
		IP:               meta.ipPtr(),
	}

	// Rotation is atomic: no observer may see the new session without the
	// old one already marked rotated, or reuse detection would be defeated.
	err = s.repo.WithTx(ctx, func(tx Repository) error {
		if err := tx.CreateSession(ctx, newSession); err != nil {
			return err
		}
		return tx.MarkSessionRotated(ctx, session.ID, newSession.ID, now)
	})
	if err != nil {
		s.logger.Error("failed to rotate session", "session_id", session.ID, "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	accessToken, err := s.tokens.Issue(user.ID, newSession.ID)
	if err != nil {
		s.logger.Error("failed to issue access token", "user_id", user.ID, "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	return &LoginResult{AccessToken: accessToken, RefreshTokenPlain: refresh.Plain}, nil
}

// Logout revokes the session behind the presented refresh token. Idempotent:
// an absent or unknown token is not an error.
func (s *service) Logout(ctx context.Context, refreshTokenPlain string) error {
	if refreshTokenPlain == "" {
		return nil
	}

	session, err := s.repo.FindSessionByTokenHash(ctx, HashToken(refreshTokenPlain))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		s.logger.Error("failed to look up session for logout", "error", err)
		return ErrInternal.WithCause(err)
	}

	if err := s.repo.RevokeSession(ctx, session.ID, time.Now()); err != nil {
		s.logger.Error("failed to revoke session", "session_id", session.ID, "error", err)
		return ErrInternal.WithCause(err)
	}
	return nil
}

// LogoutAll revokes every currently-unrevoked session of the user.
func (s *service) LogoutAll(ctx context.Context, userID string) error {
	if err := s.repo.RevokeAllSessionsForUser(ctx, userID, time.Now()); err != nil {
		s.logger.Error("failed to revoke all sessions", "user_id", userID, "error", err)
		return ErrInternal.WithCause(err)
	}
	return nil
}

// openSession creates a session with a fresh refresh token and mints the
// matching access token. Shared by local and OAuth login.
func (s *service) openSession(ctx context.Context, repo Repository, userID string, meta RequestMeta) (*LoginResult, error) {
	refresh, err := NewRefreshToken()
	if err != nil {
		return nil, ErrInternal.WithCause(err)
	}
	sessionID, err := uuid.NewV7()
	if err != nil {
		return nil, ErrInternal.WithCause(err)
	}

	session := &Session{
		ID:               sessionID.String(),
		UserID:           userID,
		RefreshTokenHash: refresh.Hash,
		ExpiresAt:        time.Now().Add(s.refreshTTL),
		UserAgent:        meta.userAgentPtr(),
		IP:               meta.ipPtr(),
	}
	if err := repo.CreateSession(ctx, session); err != nil {
		s.logger.Error("failed to create session", "user_id", userID, "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	accessToken, err := s.tokens.Issue(userID, session.ID)
	if err != nil {
		s.logger.Error("failed to issue access token", "user_id", userID, "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	return &LoginResult{AccessToken: accessToken, RefreshTokenPlain: refresh.Plain}, nil
}
