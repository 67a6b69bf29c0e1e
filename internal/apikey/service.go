package apikey

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service manages programmatic credentials: creation, listing, revocation
// and request-time validation.
type Service interface {
	Generate(ctx context.Context, userID, name string, expiresInDays int) (*GeneratedKey, error)
	List(ctx context.Context, userID string) ([]KeySummary, error)
	Revoke(ctx context.Context, keyID, userID string) error
	// Validate resolves a raw key to its owning user ID. Any failure,
	// unknown key, expired, revoked or inactive owner, reports the same
	// invalid-key error.
	Validate(ctx context.Context, rawKey string) (string, error)
}

type service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new api key service.
func NewService(repo Repository, logger *slog.Logger) Service {
	return &service{repo: repo, logger: logger}
}

// HashKey is the storage and lookup digest of a raw key.
func HashKey(rawKey string) string {
	sum := sha256.Sum256([]byte(rawKey))
	return hex.EncodeToString(sum[:])
}

func (s *service) Generate(ctx context.Context, userID, name string, expiresInDays int) (*GeneratedKey, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, ErrInternal.WithCause(err)
	}
	rawKey := KeyPrefix + hex.EncodeToString(buf)

	id, err := uuid.NewV7()
	if err != nil {
		return nil, ErrInternal.WithCause(err)
	}

	var expiresAt *time.Time
	if expiresInDays > 0 {
		t := time.Now().AddDate(0, 0, expiresInDays)
		expiresAt = &t
	}

	key := &APIKey{
		ID:        id.String(),
		UserID:    userID,
		Name:      name,
		KeyHash:   HashKey(rawKey),
		IsActive:  true,
		ExpiresAt: expiresAt,
	}
	if err := s.repo.Create(ctx, key); err != nil {
		s.logger.Error("failed to create api key", "user_id", userID, "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	s.logger.Info("api key created", "user_id", userID, "key_id", key.ID)
	return &GeneratedKey{
		ID:        key.ID,
		Name:      key.Name,
		Key:       rawKey,
		ExpiresAt: key.ExpiresAt,
		CreatedAt: key.CreatedAt,
	}, nil
}

func (s *service) List(ctx context.Context, userID string) ([]KeySummary, error) {
	keys, err := s.repo.ListActiveForUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list api keys", "user_id", userID, "error", err)
		return nil, ErrInternal.WithCause(err)
	}
	return keys, nil
}

func (s *service) Revoke(ctx context.Context, keyID, userID string) error {
	deleted, err := s.repo.DeleteByIDAndUser(ctx, keyID, userID)
	if err != nil {
		s.logger.Error("failed to revoke api key", "user_id", userID, "key_id", keyID, "error", err)
		return ErrInternal.WithCause(err)
	}
	if !deleted {
		return ErrNotFound
	}

	s.logger.Info("api key revoked", "user_id", userID, "key_id", keyID)
	return nil
}

func (s *service) Validate(ctx context.Context, rawKey string) (string, error) {
	if !strings.HasPrefix(rawKey, KeyPrefix) {
		return "", ErrInvalidKey
	}

	key, userActive, err := s.repo.FindByHash(ctx, HashKey(rawKey))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrInvalidKey
		}
		s.logger.Error("failed to look up api key", "error", err)
		return "", ErrInternal.WithCause(err)
	}

	now := time.Now()
	if !key.IsActive || !userActive {
		return "", ErrInvalidKey
	}
	if key.ExpiresAt != nil && key.ExpiresAt.Before(now) {
		return "", ErrInvalidKey
	}

	// Best effort; a lost update here costs nothing but a stale timestamp.
	go func(id string) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := s.repo.TouchLastUsed(ctx, id, now); err != nil {
			s.logger.Warn("failed to update api key last_used_at", "key_id", id, "error", err)
		}
	}(key.ID)

	return key.UserID, nil
}
