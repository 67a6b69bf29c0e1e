package apikey

import (
	"context"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeKeyRepo is an in-memory Repository. Guarded by a mutex because
// Validate touches last_used_at from a goroutine.
type fakeKeyRepo struct {
	mu          sync.Mutex
	keys        map[string]*APIKey
	activeUsers map[string]bool
}

func newFakeKeyRepo() *fakeKeyRepo {
	return &fakeKeyRepo{keys: map[string]*APIKey{}, activeUsers: map[string]bool{}}
}

func (f *fakeKeyRepo) setUserActive(userID string, active bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activeUsers[userID] = active
}

func (f *fakeKeyRepo) Create(_ context.Context, key *APIKey) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *key
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	f.keys[cp.ID] = &cp
	return nil
}

func (f *fakeKeyRepo) ListActiveForUser(_ context.Context, userID string) ([]KeySummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []KeySummary
	for _, k := range f.keys {
		if k.UserID == userID && k.IsActive {
			out = append(out, KeySummary{
				ID:         k.ID,
				Name:       k.Name,
				ExpiresAt:  k.ExpiresAt,
				LastUsedAt: k.LastUsedAt,
				CreatedAt:  k.CreatedAt,
			})
		}
	}
	return out, nil
}

func (f *fakeKeyRepo) DeleteByIDAndUser(_ context.Context, keyID, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k, ok := f.keys[keyID]
	if !ok || k.UserID != userID {
		return false, nil
	}
	delete(f.keys, keyID)
	return true, nil
}

func (f *fakeKeyRepo) FindByHash(_ context.Context, keyHash string) (*APIKey, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range f.keys {
		if k.KeyHash == keyHash {
			cp := *k
			return &cp, f.activeUsers[k.UserID], nil
		}
	}
	return nil, false, ErrNotFound
}

func (f *fakeKeyRepo) TouchLastUsed(_ context.Context, keyID string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if k, ok := f.keys[keyID]; ok {
		k.LastUsedAt = &at
	}
	return nil
}

func newTestKeyService() (*fakeKeyRepo, Service) {
	repo := newFakeKeyRepo()
	return repo, NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestGenerate(t *testing.T) {
	repo, svc := newTestKeyService()
	repo.setUserActive("user-1", true)
	ctx := context.Background()

	gen, err := svc.Generate(ctx, "user-1", "ci key", 0)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.HasPrefix(gen.Key, KeyPrefix) {
		t.Fatalf("key %q lacks the %q prefix", gen.Key, KeyPrefix)
	}
	if raw, err := hex.DecodeString(strings.TrimPrefix(gen.Key, KeyPrefix)); err != nil || len(raw) != 32 {
		t.Fatalf("key body %q is not 32 hex-encoded bytes", gen.Key)
	}
	if gen.ExpiresAt != nil {
		t.Fatal("key without expiry got an expiration")
	}

	// Only the hash is stored.
	stored := repo.keys[gen.ID]
	if stored == nil {
		t.Fatal("generated key was not persisted")
	}
	if stored.KeyHash != HashKey(gen.Key) {
		t.Fatal("stored hash does not match the generated key")
	}
	if strings.Contains(stored.KeyHash, gen.Key) {
		t.Fatal("plain key leaked into storage")
	}

	expiring, err := svc.Generate(ctx, "user-1", "temp key", 30)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if expiring.ExpiresAt == nil {
		t.Fatal("expiring key has no expiration")
	}
	remaining := time.Until(*expiring.ExpiresAt)
	if remaining < 29*24*time.Hour || remaining > 31*24*time.Hour {
		t.Fatalf("expiry %v is not ~30 days out", remaining)
	}
}

func TestListOnlyOwnKeys(t *testing.T) {
	_, svc := newTestKeyService()
	ctx := context.Background()

	if _, err := svc.Generate(ctx, "user-1", "mine", 0); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := svc.Generate(ctx, "user-2", "theirs", 0); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	keys, err := svc.List(ctx, "user-1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(keys) != 1 || keys[0].Name != "mine" {
		t.Fatalf("List = %+v, want exactly the caller's key", keys)
	}
}

func TestRevoke(t *testing.T) {
	_, svc := newTestKeyService()
	ctx := context.Background()

	gen, err := svc.Generate(ctx, "user-1", "short-lived", 0)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	// Another user cannot revoke it.
	if err := svc.Revoke(ctx, gen.ID, "user-2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross-user revoke = %v, want ErrNotFound", err)
	}

	if err := svc.Revoke(ctx, gen.ID, "user-1"); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if err := svc.Revoke(ctx, gen.ID, "user-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second revoke = %v, want ErrNotFound", err)
	}

	keys, err := svc.List(ctx, "user-1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(keys) != 0 {
		t.Fatalf("revoked key still listed: %+v", keys)
	}
}

func TestValidate(t *testing.T) {
	repo, svc := newTestKeyService()
	repo.setUserActive("user-1", true)
	ctx := context.Background()

	gen, err := svc.Generate(ctx, "user-1", "ci key", 0)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	userID, err := svc.Validate(ctx, gen.Key)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if userID != "user-1" {
		t.Fatalf("Validate = %q, want user-1", userID)
	}

	for name, raw := range map[string]string{
		"missing prefix": strings.TrimPrefix(gen.Key, KeyPrefix),
		"unknown key":    KeyPrefix + strings.Repeat("ab", 32),
		"empty":          "",
	} {
		if _, err := svc.Validate(ctx, raw); !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("%s = %v, want ErrInvalidKey", name, err)
		}
	}
}

func TestValidateRejectsExpiredInactiveAndRevoked(t *testing.T) {
	repo, svc := newTestKeyService()
	repo.setUserActive("user-1", true)
	ctx := context.Background()

	gen, err := svc.Generate(ctx, "user-1", "ci key", 7)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	past := time.Now().Add(-time.Hour)
	repo.mu.Lock()
	repo.keys[gen.ID].ExpiresAt = &past
	repo.mu.Unlock()
	if _, err := svc.Validate(ctx, gen.Key); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expired key = %v, want ErrInvalidKey", err)
	}

	future := time.Now().Add(time.Hour)
	repo.mu.Lock()
	repo.keys[gen.ID].ExpiresAt = &future
	repo.keys[gen.ID].IsActive = false
	repo.mu.Unlock()
	if _, err := svc.Validate(ctx, gen.Key); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("deactivated key = %v, want ErrInvalidKey", err)
	}

	repo.mu.Lock()
	repo.keys[gen.ID].IsActive = true
	repo.mu.Unlock()
	repo.setUserActive("user-1", false)
	if _, err := svc.Validate(ctx, gen.Key); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("inactive owner = %v, want ErrInvalidKey", err)
	}

	repo.setUserActive("user-1", true)
	if err := svc.Revoke(ctx, gen.ID, "user-1"); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if _, err := svc.Validate(ctx, gen.Key); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("revoked key = %v, want ErrInvalidKey", err)
	}
}
