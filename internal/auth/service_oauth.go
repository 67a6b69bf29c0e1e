package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/notedrop/notedrop-api/internal/config"
)

// googleOAuth is the production GoogleProvider backed by the standard
// authorization-code flow.
type googleOAuth struct {
	config *oauth2.Config
}

// NewGoogleOAuth builds a GoogleProvider from application configuration.
func NewGoogleOAuth(cfg config.GoogleConfig) GoogleProvider {
	return &googleOAuth{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
		},
	}
}

func (g *googleOAuth) AuthCodeURL(state string) string {
	return g.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// ExchangeCode trades the authorization code for tokens and extracts the
// subject and email from the id_token. The token arrived over TLS directly
// from Google's token endpoint, so its claims are read without a second
// signature check.
func (g *googleOAuth) ExchangeCode(ctx context.Context, code string) (*GoogleIdentity, error) {
	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	idToken, ok := token.Extra("id_token").(string)
	if !ok || idToken == "" {
		return nil, fmt.Errorf("token response is missing id_token")
	}

	var claims struct {
		jwt.RegisteredClaims
		Email string `json:"email"`
	}
	_, _, err = jwt.NewParser().ParseUnverified(idToken, &claims)
	if err != nil {
		return nil, fmt.Errorf("failed to parse id_token: %w", err)
	}
	if claims.Subject == "" || claims.Email == "" {
		return nil, fmt.Errorf("id_token is missing subject or email")
	}

	return &GoogleIdentity{Subject: claims.Subject, Email: claims.Email}, nil
}

// GoogleAuthURL mints a single-use state nonce, persists it, and returns the
// provider authorization URL bound to that state.
func (s *service) GoogleAuthURL(ctx context.Context, meta RequestMeta) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", ErrInternal.WithCause(err)
	}
	state := hex.EncodeToString(buf)

	record := &OAuthState{
		State:     state,
		Provider:  ProviderGoogle,
		ExpiresAt: time.Now().Add(oauthStateTTL),
		IP:        meta.ipPtr(),
		UserAgent: meta.userAgentPtr(),
	}
	if err := s.repo.CreateOAuthState(ctx, record); err != nil {
		s.logger.Error("failed to store oauth state", "error", err)
		return "", ErrInternal.WithCause(err)
	}

	return s.google.AuthCodeURL(state), nil
}

// LoginWithGoogle completes the authorization-code flow. Account resolution
// order: existing Google identity, then an existing local account with the
// same email (the identity gets linked), then a brand-new pre-verified user.
func (s *service) LoginWithGoogle(ctx context.Context, code, state string, meta RequestMeta) (*LoginResult, error) {
	if code == "" || state == "" {
		return nil, ErrInvalidOrExpiredState
	}

	record, err := s.repo.ConsumeOAuthState(ctx, state, time.Now())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidOrExpiredState
		}
		s.logger.Error("failed to consume oauth state", "error", err)
		return nil, ErrInternal.WithCause(err)
	}
	if record.Provider != ProviderGoogle {
		return nil, ErrInvalidStateProvider
	}

	identity, err := s.google.ExchangeCode(ctx, code)
	if err != nil {
		s.logger.Warn("google code exchange failed", "error", err)
		return nil, ErrInvalidGoogleToken.WithCause(err)
	}

	normalized, err := NormalizeEmail(identity.Email)
	if err != nil {
		return nil, ErrInvalidGoogleToken.WithCause(err)
	}

	var userID string
	err = s.repo.WithTx(ctx, func(tx Repository) error {
		user, err := tx.FindUserByIdentity(ctx, ProviderGoogle, identity.Subject)
		if err == nil {
			if !user.IsActive {
				return ErrUserInactive
			}
			userID = user.ID
			return nil
		}
		if !errors.Is(err, ErrNotFound) {
			return err
		}

		user, err = tx.FindUserByEmail(ctx, normalized)
		if err == nil {
			// Same email, first Google sign-in: link the identity.
			if !user.IsActive {
				return ErrUserInactive
			}
			identityID, err := uuid.NewV7()
			if err != nil {
				return err
			}
			if err := tx.CreateIdentity(ctx, &Identity{
				ID:         identityID.String(),
				UserID:     user.ID,
				Provider:   ProviderGoogle,
				ProviderID: identity.Subject,
			}); err != nil {
				return err
			}
			userID = user.ID
			return nil
		}
		if !errors.Is(err, ErrNotFound) {
			return err
		}

		// New account. Google already verified the address, and the random
		// password is unusable until the user runs a password reset.
		randomPassword := make([]byte, 32)
		if _, err := rand.Read(randomPassword); err != nil {
			return err
		}
		passwordHash, err := HashPassword(hex.EncodeToString(randomPassword))
		if err != nil {
			return err
		}

		newUserID, err := uuid.NewV7()
		if err != nil {
			return err
		}
		identityID, err := uuid.NewV7()
		if err != nil {
			return err
		}

		now := time.Now()
		if err := tx.CreateUser(ctx, &User{
			ID:              newUserID.String(),
			Email:           normalized,
			PasswordHash:    passwordHash,
			EmailVerifiedAt: &now,
			IsActive:        true,
		}); err != nil {
			return err
		}
		if err := tx.CreateIdentity(ctx, &Identity{
			ID:         identityID.String(),
			UserID:     newUserID.String(),
			Provider:   ProviderGoogle,
			ProviderID: identity.Subject,
		}); err != nil {
			return err
		}
		userID = newUserID.String()
		return nil
	})
	if err != nil {
		var domainErr *DomainError
		if errors.As(err, &domainErr) {
			return nil, err
		}
		s.logger.Error("failed to resolve google account", "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	result, err := s.openSession(ctx, s.repo, userID, meta)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in with google", "user_id", userID)
	return result, nil
}

// CleanupExpiredOAuthStates purges states past their TTL. Run periodically;
// correctness does not depend on it since consumption checks expiry.
func (s *service) CleanupExpiredOAuthStates(ctx context.Context) error {
	deleted, err := s.repo.DeleteExpiredOAuthStates(ctx)
	if err != nil {
		s.logger.Error("failed to delete expired oauth states", "error", err)
		return ErrInternal.WithCause(err)
	}
	if deleted > 0 {
		s.logger.Info("deleted expired oauth states", "count", deleted)
	}
	return nil
}
