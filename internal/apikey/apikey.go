package apikey

import "time"

// KeyPrefix is prepended to every generated key so a leaked credential is
// recognizable in logs and secret scanners.
const KeyPrefix = "sn_"

// APIKey is a long-lived programmatic credential. Only the SHA-256 hash of
// the key material is stored; the plain key exists once, in the generate
// response.
type APIKey struct {
	ID         string     `db:"id"`
	UserID     string     `db:"user_id"`
	Name       string     `db:"name"`
	KeyHash    string     `db:"key_hash"`
	IsActive   bool       `db:"is_active"`
	ExpiresAt  *time.Time `db:"expires_at"`
	LastUsedAt *time.Time `db:"last_used_at"`
	CreatedAt  time.Time  `db:"created_at"`
}

// GeneratedKey is the one-time response of key creation, carrying the plain
// key alongside the stored metadata.
type GeneratedKey struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Key       string     `json:"key"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// KeySummary is the listing shape. The hash never leaves the repository.
type KeySummary struct {
	ID         string     `json:"id" db:"id"`
	Name       string     `json:"name" db:"name"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty" db:"expires_at"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty" db:"last_used_at"`
	CreatedAt  time.Time  `json:"createdAt" db:"created_at"`
}
