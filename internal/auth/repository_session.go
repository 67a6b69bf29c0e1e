package auth

import (
	"context"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
)

const sessionColumns = "id, user_id, refresh_token_hash, expires_at, revoked_at, " +
	"rotated_at, replaced_by_session_id, user_agent, ip, created_at"

// CreateSession inserts a new session record. Sessions are append-only;
// revocation and rotation mutate columns but rows are never deleted.
func (r *repository) CreateSession(ctx context.Context, s *Session) error {
	s.CreatedAt = time.Now()

	query, args, err := r.psql.Insert("sessions").
		Columns("id", "user_id", "refresh_token_hash", "expires_at", "revoked_at",
			"rotated_at", "replaced_by_session_id", "user_agent", "ip", "created_at").
		Values(s.ID, s.UserID, s.RefreshTokenHash, s.ExpiresAt, s.RevokedAt,
			s.RotatedAt, s.ReplacedBySessionID, s.UserAgent, s.IP, s.CreatedAt).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, query, args...)
	return err
}

// FindSessionByTokenHash retrieves a session by its unique refresh token hash.
func (r *repository) FindSessionByTokenHash(ctx context.Context, tokenHash string) (*Session, error) {
	query, args, err := r.psql.Select(sessionColumns).
		From("sessions").
		Where(squirrel.Eq{"refresh_token_hash": tokenHash}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, err
	}

	var s Session
	if err := pgxscan.Get(ctx, r.db, &s, query, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound.WithCause(err)
		}
		return nil, err
	}
	return &s, nil
}

// RevokeSession marks a single session revoked. Idempotent: an already
// revoked session keeps its original revocation timestamp.
func (r *repository) RevokeSession(ctx context.Context, sessionID string, at time.Time) error {
	query, args, err := r.psql.Update("sessions").
		Set("revoked_at", at).
		Where(squirrel.Eq{"id": sessionID}).
		Where("revoked_at IS NULL").
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, query, args...)
	return err
}

// RevokeAllSessionsForUser revokes every currently-unrevoked session of
// the user. Used on logout-all, password change and reuse detection.
func (r *repository) RevokeAllSessionsForUser(ctx context.Context, userID string, at time.Time) error {
	query, args, err := r.psql.Update("sessions").
		Set("revoked_at", at).
		Where(squirrel.Eq{"user_id": userID}).
		Where("revoked_at IS NULL").
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, query, args...)
	return err
}

// MarkSessionRotated stamps rotated_at and links the superseding session.
// Presenting the old refresh token after this point is a reuse signal.
func (r *repository) MarkSessionRotated(ctx context.Context, sessionID, replacedBySessionID string, at time.Time) error {
	query, args, err := r.psql.Update("sessions").
		Set("rotated_at", at).
		Set("replaced_by_session_id", replacedBySessionID).
		Where(squirrel.Eq{"id": sessionID}).
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
