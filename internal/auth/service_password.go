package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// RequestPasswordReset issues a reset token when the email belongs to an
// active account. It always reports success so callers cannot probe which
// addresses are registered.
func (s *service) RequestPasswordReset(ctx context.Context, email string, meta RequestMeta) error {
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return nil
	}

	user, err := s.repo.FindUserByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		s.logger.Error("failed to find user for password reset", "error", err)
		return nil
	}
	if !user.IsActive {
		return nil
	}

	token, err := NewPasswordResetToken()
	if err != nil {
		s.logger.Error("failed to generate reset token", "user_id", user.ID, "error", err)
		return nil
	}
	tokenID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error("failed to generate reset token id", "user_id", user.ID, "error", err)
		return nil
	}

	reset := &PasswordResetToken{
		ID:        tokenID.String(),
		UserID:    user.ID,
		TokenHash: token.Hash,
		ExpiresAt: time.Now().Add(resetTokenTTL),
	}
	if err := s.repo.CreateResetToken(ctx, reset); err != nil {
		s.logger.Error("failed to store reset token", "user_id", user.ID, "error", err)
		return nil
	}

	s.mailer.SendResetPasswordEmail(ctx, user.Email, s.frontend+"/reset-password?token="+token.Plain)
	s.logger.Info("password reset requested", "user_id", user.ID)
	return nil
}

// ValidateResetToken reports whether a reset token is still usable. Unlike
// ConfirmPasswordReset it is diagnostic: the frontend shows the specific
// reason before the user types a new password.
func (s *service) ValidateResetToken(ctx context.Context, tokenPlain string) error {
	if tokenPlain == "" {
		return ErrInvalidToken
	}

	reset, err := s.repo.FindResetTokenByHash(ctx, HashToken(tokenPlain))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrInvalidToken
		}
		s.logger.Error("failed to look up reset token", "error", err)
		return ErrInternal.WithCause(err)
	}

	if reset.UsedAt != nil {
		return ErrTokenAlreadyUsed
	}
	if !reset.ExpiresAt.After(time.Now()) {
		return ErrTokenExpired
	}

	user, err := s.repo.FindUserByID(ctx, reset.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrInvalidToken
		}
		s.logger.Error("failed to load reset token user", "error", err)
		return ErrInternal.WithCause(err)
	}
	if !user.IsActive {
		return ErrUserInactive
	}
	return nil
}

// ConfirmPasswordReset sets a new password from a reset token. Every token
// or account problem collapses to the same unauthorized failure; by the
// time this runs the token has already been validated diagnostically, so
// granular reasons only help an attacker.
func (s *service) ConfirmPasswordReset(ctx context.Context, tokenPlain, newPassword string) error {
	if tokenPlain == "" {
		return ErrUnauthorized
	}

	now := time.Now()
	reset, err := s.repo.FindResetTokenByHash(ctx, HashToken(tokenPlain))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrUnauthorized
		}
		s.logger.Error("failed to look up reset token", "error", err)
		return ErrInternal.WithCause(err)
	}
	if reset.UsedAt != nil || !reset.ExpiresAt.After(now) {
		return ErrUnauthorized
	}

	user, err := s.repo.FindUserByID(ctx, reset.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrUnauthorized
		}
		s.logger.Error("failed to load reset token user", "error", err)
		return ErrInternal.WithCause(err)
	}
	if !user.IsActive {
		return ErrUnauthorized
	}

	if err := AssertPasswordStrong(newPassword, []string{user.Email}); err != nil {
		return err
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		s.logger.Error("failed to hash new password", "user_id", user.ID, "error", err)
		return ErrInternal.WithCause(err)
	}

	err = s.repo.WithTx(ctx, func(tx Repository) error {
		if err := tx.UpdatePassword(ctx, user.ID, hash, now); err != nil {
			return err
		}
		if err := tx.MarkResetTokenUsed(ctx, reset.ID, now); err != nil {
			return err
		}
		// Every open session predates the change, so all of them go.
		if err := tx.RevokeAllSessionsForUser(ctx, user.ID, now); err != nil {
			return err
		}
		return tx.DeleteResetTokensForUser(ctx, user.ID)
	})
	if err != nil {
		s.logger.Error("failed to confirm password reset", "user_id", user.ID, "error", err)
		return ErrInternal.WithCause(err)
	}

	s.logger.Info("password reset confirmed", "user_id", user.ID)
	return nil
}
