package apikey

import (
	"context"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"github.com/notedrop/notedrop-api/internal/database"
)

// Repository defines the database operations of the api key module.
type Repository interface {
	Create(ctx context.Context, k *APIKey) error
	ListActiveForUser(ctx context.Context, userID string) ([]KeySummary, error)
	// DeleteByIDAndUser removes a key only when the caller owns it. Returns
	// false when no row matched, so callers cannot tell someone else's key
	// apart from a missing one.
	DeleteByIDAndUser(ctx context.Context, id, userID string) (bool, error)
	// FindByHash loads a key by its hash along with the owning user's
	// active flag.
	FindByHash(ctx context.Context, keyHash string) (*APIKey, bool, error)
	TouchLastUsed(ctx context.Context, id string, at time.Time) error
}

type repository struct {
	db   database.DBTX
	psql squirrel.StatementBuilderType
}

// NewRepository creates a new api key repository with the given connection pool.
func NewRepository(pool database.Pool) Repository {
	return &repository{
		db:   pool,
		psql: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *repository) Create(ctx context.Context, k *APIKey) error {
	k.CreatedAt = time.Now()

	query, args, err := r.psql.Insert("api_keys").
		Columns("id", "user_id", "name", "key_hash", "is_active", "expires_at", "created_at").
		Values(k.ID, k.UserID, k.Name, k.KeyHash, k.IsActive, k.ExpiresAt, k.CreatedAt).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, query, args...)
	return err
}

func (r *repository) ListActiveForUser(ctx context.Context, userID string) ([]KeySummary, error) {
	query, args, err := r.psql.Select("id, name, expires_at, last_used_at, created_at").
		From("api_keys").
		Where(squirrel.Eq{"user_id": userID, "is_active": true}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, err
	}

	keys := []KeySummary{}
	if err := pgxscan.Select(ctx, r.db, &keys, query, args...); err != nil {
		return nil, err
	}
	return keys, nil
}

func (r *repository) DeleteByIDAndUser(ctx context.Context, id, userID string) (bool, error) {
	query, args, err := r.psql.Delete("api_keys").
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return false, err
	}

	ct, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (r *repository) FindByHash(ctx context.Context, keyHash string) (*APIKey, bool, error) {
	query, args, err := r.psql.Select(
		"k.id, k.user_id, k.name, k.key_hash, k.is_active, k.expires_at, k.last_used_at, k.created_at",
		"u.is_active AS user_active").
		From("api_keys k").
		Join("users u ON u.id = k.user_id").
		Where(squirrel.Eq{"k.key_hash": keyHash}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, false, err
	}

	var row struct {
		APIKey
		UserActive bool `db:"user_active"`
	}
	if err := pgxscan.Get(ctx, r.db, &row, query, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, ErrNotFound.WithCause(err)
		}
		return nil, false, err
	}
	return &row.APIKey, row.UserActive, nil
}

func (r *repository) TouchLastUsed(ctx context.Context, id string, at time.Time) error {
	query, args, err := r.psql.Update("api_keys").
		Set("last_used_at", at).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, query, args...)
	return err
}
