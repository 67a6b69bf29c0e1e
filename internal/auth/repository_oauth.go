package auth

import (
	"context"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
)

// CreateOAuthState inserts a short-lived anti-CSRF state record.
func (r *repository) CreateOAuthState(ctx context.Context, s *OAuthState) error {
	s.CreatedAt = time.Now()

	query, args, err := r.psql.Insert("oauth_states").
		Columns("state", "provider", "expires_at", "consumed_at", "ip", "user_agent", "created_at").
		Values(s.State, string(s.Provider), s.ExpiresAt, s.ConsumedAt, s.IP, s.UserAgent, s.CreatedAt).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, query, args...)
	return err
}

// ConsumeOAuthState marks the state consumed and returns it, in one
// statement, so concurrent callbacks with the same state cannot both win.
// Expired, missing or already-consumed states return ErrNotFound.
func (r *repository) ConsumeOAuthState(ctx context.Context, state string, at time.Time) (*OAuthState, error) {
	query, args, err := r.psql.Update("oauth_states").
		Set("consumed_at", at).
		Where(squirrel.Eq{"state": state}).
		Where("consumed_at IS NULL").
		Where(squirrel.Gt{"expires_at": at}).
		Suffix("RETURNING state, provider, expires_at, consumed_at, ip, user_agent, created_at").
		ToSql()
	if err != nil {
		return nil, err
	}

	var s OAuthState
	if err := pgxscan.Get(ctx, r.db, &s, query, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound.WithCause(err)
		}
		return nil, err
	}
	return &s, nil
}

// DeleteExpiredOAuthStates removes state rows past their expiry. Idempotent
// background sweep, not part of the request path.
func (r *repository) DeleteExpiredOAuthStates(ctx context.Context) (int64, error) {
	query, args, err := r.psql.Delete("oauth_states").
		Where(squirrel.Lt{"expires_at": time.Now()}).
		ToSql()
	if err != nil {
		return 0, err
	}

	ct, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}
