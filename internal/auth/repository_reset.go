package auth

import (
	"context"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
)

// CreateResetToken inserts a password reset token record.
func (r *repository) CreateResetToken(ctx context.Context, t *PasswordResetToken) error {
	t.CreatedAt = time.Now()

	query, args, err := r.psql.Insert("password_reset_tokens").
		Columns("id", "user_id", "token_hash", "expires_at", "used_at", "ip", "user_agent", "created_at").
		Values(t.ID, t.UserID, t.TokenHash, t.ExpiresAt, t.UsedAt, t.IP, t.UserAgent, t.CreatedAt).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, query, args...)
	return err
}

// FindResetTokenByHash retrieves a reset token by its unique hash.
func (r *repository) FindResetTokenByHash(ctx context.Context, tokenHash string) (*PasswordResetToken, error) {
	query, args, err := r.psql.Select("id", "user_id", "token_hash", "expires_at", "used_at", "ip", "user_agent", "created_at").
		From("password_reset_tokens").
		Where(squirrel.Eq{"token_hash": tokenHash}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, err
	}

	var t PasswordResetToken
	if err := pgxscan.Get(ctx, r.db, &t, query, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound.WithCause(err)
		}
		return nil, err
	}
	return &t, nil
}

// MarkResetTokenUsed consumes a reset token.
func (r *repository) MarkResetTokenUsed(ctx context.Context, id string, at time.Time) error {
	query, args, err := r.psql.Update("password_reset_tokens").
		Set("used_at", at).
		Where(squirrel.Eq{"id": id}).
		Where("used_at IS NULL").
		ToSql()
	if err != nil {
		return err
	}

	ct, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteResetTokensForUser purges every reset token of the user so no other
// outstanding token survives a successful reset.
func (r *repository) DeleteResetTokensForUser(ctx context.Context, userID string) error {
	query, args, err := r.psql.Delete("password_reset_tokens").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, query, args...)
	return err
}
