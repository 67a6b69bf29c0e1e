package auth

import (
	"context"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
)

const userColumns = "id, email, password_hash, email_verified_at, is_active, " +
	"failed_login_attempts, locked_until, password_changed_at, last_login_at, " +
	"email_verification_token_hash, email_verification_token_sent_at, created_at, updated_at"

// CreateUser inserts a new user record into the database.
func (r *repository) CreateUser(ctx context.Context, u *User) error {
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	query, args, err := r.psql.Insert("users").
		Columns("id", "email", "password_hash", "email_verified_at", "is_active",
			"failed_login_attempts", "locked_until", "password_changed_at", "last_login_at",
			"email_verification_token_hash", "email_verification_token_sent_at", "created_at", "updated_at").
		Values(u.ID, u.Email, u.PasswordHash, u.EmailVerifiedAt, u.IsActive,
			u.FailedLoginAttempts, u.LockedUntil, u.PasswordChangedAt, u.LastLoginAt,
			u.EmailVerificationTokenHash, u.EmailVerificationTokenSentAt, u.CreatedAt, u.UpdatedAt).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, query, args...)
	return err
}

// FindUserByEmail retrieves a user by their normalized email address.
// It returns ErrNotFound if no user is found.
func (r *repository) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	return r.findUser(ctx, squirrel.Eq{"email": email})
}

// FindUserByID retrieves a user by their unique ID.
func (r *repository) FindUserByID(ctx context.Context, id string) (*User, error) {
	return r.findUser(ctx, squirrel.Eq{"id": id})
}

// FindUserByVerificationTokenHash finds the not-yet-verified, active user
// matching the hashed email verification token.
func (r *repository) FindUserByVerificationTokenHash(ctx context.Context, tokenHash string) (*User, error) {
	return r.findUser(ctx, squirrel.And{
		squirrel.Eq{"email_verification_token_hash": tokenHash},
		squirrel.Expr("email_verified_at IS NULL"),
		squirrel.Eq{"is_active": true},
	})
}

func (r *repository) findUser(ctx context.Context, condition squirrel.Sqlizer) (*User, error) {
	query, args, err := r.psql.Select(userColumns).
		From("users").
		Where(condition).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, err
	}

	var u User
	if err := pgxscan.Get(ctx, r.db, &u, query, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound.WithCause(err)
		}
		return nil, err
	}
	return &u, nil
}

// SetVerificationToken stores a fresh verification token hash and issuance
// timestamp for a user whose email is still unverified.
func (r *repository) SetVerificationToken(ctx context.Context, userID, tokenHash string, sentAt time.Time) error {
	query, args, err := r.psql.Update("users").
		Set("email_verification_token_hash", tokenHash).
		Set("email_verification_token_sent_at", sentAt).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": userID}).
		Where("email_verified_at IS NULL").
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

// MarkEmailVerified sets the verification timestamp and clears the
// single-use token fields.
func (r *repository) MarkEmailVerified(ctx context.Context, userID string, at time.Time) error {
	query, args, err := r.psql.Update("users").
		Set("email_verified_at", at).
		Set("email_verification_token_hash", nil).
		Set("email_verification_token_sent_at", nil).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": userID}).
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

// RecordLoginFailure persists the failed-attempt counter and, once the
// threshold is reached, the lockout deadline.
func (r *repository) RecordLoginFailure(ctx context.Context, userID string, attempts int, lockedUntil *time.Time) error {
	query, args, err := r.psql.Update("users").
		Set("failed_login_attempts", attempts).
		Set("locked_until", lockedUntil).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, query, args...)
	return err
}

// RecordLoginSuccess resets the failure counters and stamps last_login_at.
func (r *repository) RecordLoginSuccess(ctx context.Context, userID string, at time.Time) error {
	query, args, err := r.psql.Update("users").
		Set("failed_login_attempts", 0).
		Set("locked_until", nil).
		Set("last_login_at", at).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, query, args...)
	return err
}

// UpdatePassword sets a new password hash, stamps password_changed_at and
// clears any lockout state.
func (r *repository) UpdatePassword(ctx context.Context, userID, passwordHash string, changedAt time.Time) error {
	query, args, err := r.psql.Update("users").
		Set("password_hash", passwordHash).
		Set("password_changed_at", changedAt).
		Set("failed_login_attempts", 0).
		Set("locked_until", nil).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": userID}).
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

// CreateIdentity inserts a provider link for a user.
func (r *repository) CreateIdentity(ctx context.Context, ident *Identity) error {
	ident.CreatedAt = time.Now()

	query, args, err := r.psql.Insert("identities").
		Columns("id", "user_id", "provider", "provider_id", "created_at").
		Values(ident.ID, ident.UserID, string(ident.Provider), ident.ProviderID, ident.CreatedAt).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, query, args...)
	return err
}

// FindUserByIdentity resolves the user owning the (provider, providerID)
// identity, if any.
func (r *repository) FindUserByIdentity(ctx context.Context, provider Provider, providerID string) (*User, error) {
	query, args, err := r.psql.Select("u."+userColumnsAliased("u")).
		From("users u").
		Join("identities i ON i.user_id = u.id").
		Where(squirrel.Eq{"i.provider": string(provider), "i.provider_id": providerID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, err
	}

	var u User
	if err := pgxscan.Get(ctx, r.db, &u, query, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound.WithCause(err)
		}
		return nil, err
	}
	return &u, nil
}

func userColumnsAliased(alias string) string {
	// Produces "id, u.email, u.password_hash, ..." for the leading "u." above.
	out := ""
	for i, col := range []string{"id", "email", "password_hash", "email_verified_at", "is_active",
		"failed_login_attempts", "locked_until", "password_changed_at", "last_login_at",
		"email_verification_token_hash", "email_verification_token_sent_at", "created_at", "updated_at"} {
		if i > 0 {
			out += ", " + alias + "." + col
		} else {
			out += col
		}
	}
	return out
}
