package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Register creates a new local account with an unverified email: user,
// LOCAL identity and verification token are written in one transaction,
// then the verification email is dispatched best-effort.
func (s *service) Register(ctx context.Context, email, password string) (*RegisterResult, error) {
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.FindUserByEmail(ctx, normalized); err == nil {
		return nil, ErrEmailAlreadyInUse
	} else if !errors.Is(err, ErrNotFound) {
		s.logger.Error("failed to check email availability", "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	// The email is a disallowed password ingredient.
	if err := AssertPasswordStrong(password, []string{normalized}); err != nil {
		return nil, err
	}

	passwordHash, err := HashPassword(password)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	verification, err := NewEmailVerificationToken()
	if err != nil {
		return nil, ErrInternal.WithCause(err)
	}

	userID, err := uuid.NewV7()
	if err != nil {
		return nil, ErrInternal.WithCause(err)
	}
	identityID, err := uuid.NewV7()
	if err != nil {
		return nil, ErrInternal.WithCause(err)
	}

	now := time.Now()
	sentAt := now
	tokenHash := verification.Hash
	newUser := &User{
		ID:                           userID.String(),
		Email:                        normalized,
		PasswordHash:                 passwordHash,
		EmailVerifiedAt:              nil,
		IsActive:                     true,
		EmailVerificationTokenHash:   &tokenHash,
		EmailVerificationTokenSentAt: &sentAt,
	}

	err = s.repo.WithTx(ctx, func(tx Repository) error {
		if err := tx.CreateUser(ctx, newUser); err != nil {
			return err
		}
		return tx.CreateIdentity(ctx, &Identity{
			ID:         identityID.String(),
			UserID:     newUser.ID,
			Provider:   ProviderLocal,
			ProviderID: newUser.ID,
		})
	})
	if err != nil {
		s.logger.Error("failed to create user", "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	s.logger.Info("user registered", "user_id", newUser.ID)

	// Out-of-band; a delivery failure must not fail the registration.
	s.mailer.SendVerifyEmail(ctx, newUser.Email, s.frontend+"/verify-email?token="+verification.Plain)

	result := &RegisterResult{
		UserID:        newUser.ID,
		Email:         newUser.Email,
		EmailVerified: false,
	}
	if !s.production {
		result.VerificationToken = verification.Plain
	}
	return result, nil
}

// VerifyEmail consumes an email verification token. Tokens are single-use
// and expire 24 hours after issuance.
func (s *service) VerifyEmail(ctx context.Context, tokenPlain string) error {
	if tokenPlain == "" {
		return ErrInvalidVerificationToken
	}

	user, err := s.repo.FindUserByVerificationTokenHash(ctx, HashToken(tokenPlain))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrInvalidVerificationToken
		}
		s.logger.Error("failed to look up verification token", "error", err)
		return ErrInternal.WithCause(err)
	}

	if user.EmailVerificationTokenSentAt == nil ||
		time.Since(*user.EmailVerificationTokenSentAt) > verificationTokenTTL {
		return ErrInvalidVerificationToken
	}

	if err := s.repo.MarkEmailVerified(ctx, user.ID, time.Now()); err != nil {
		s.logger.Error("failed to mark email verified", "user_id", user.ID, "error", err)
		return ErrInternal.WithCause(err)
	}

	s.logger.Info("email verified", "user_id", user.ID)
	return nil
}

// ResendVerification re-issues the verification token. It succeeds silently
// when the account is absent, already verified or inactive, and enforces a
// cooldown between sends; neither case is distinguishable to the caller.
func (s *service) ResendVerification(ctx context.Context, email string) error {
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return err
	}

	user, err := s.repo.FindUserByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		s.logger.Error("failed to find user for resend", "error", err)
		return ErrInternal.WithCause(err)
	}
	if user.EmailVerifiedAt != nil || !user.IsActive {
		return nil
	}
	if user.EmailVerificationTokenSentAt != nil &&
		time.Since(*user.EmailVerificationTokenSentAt) < resendCooldown {
		return nil
	}

	verification, err := NewEmailVerificationToken()
	if err != nil {
		return ErrInternal.WithCause(err)
	}
	if err := s.repo.SetVerificationToken(ctx, user.ID, verification.Hash, time.Now()); err != nil {
		s.logger.Error("failed to store verification token", "user_id", user.ID, "error", err)
		return ErrInternal.WithCause(err)
	}

	s.mailer.SendVerifyEmail(ctx, user.Email, s.frontend+"/verify-email?token="+verification.Plain)
	return nil
}
