package auth

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/notedrop/notedrop-api/internal/database"
)

// Repository defines the database operations of the auth module. The
// abstraction keeps the service layer independent of the database
// implementation and lets tests run against an in-memory fake.
type Repository interface {
	// WithTx runs fn against a Repository bound to a single transaction.
	// All cross-row invariants (register, rotation, google login) go
	// through here so a crash or concurrent read never observes a
	// partially-applied state.
	WithTx(ctx context.Context, fn func(Repository) error) error

	// Users
	CreateUser(ctx context.Context, u *User) error
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	FindUserByID(ctx context.Context, id string) (*User, error)
	FindUserByVerificationTokenHash(ctx context.Context, tokenHash string) (*User, error)
	SetVerificationToken(ctx context.Context, userID, tokenHash string, sentAt time.Time) error
	MarkEmailVerified(ctx context.Context, userID string, at time.Time) error
	RecordLoginFailure(ctx context.Context, userID string, attempts int, lockedUntil *time.Time) error
	RecordLoginSuccess(ctx context.Context, userID string, at time.Time) error
	UpdatePassword(ctx context.Context, userID, passwordHash string, changedAt time.Time) error

	// Identities
	CreateIdentity(ctx context.Context, ident *Identity) error
	FindUserByIdentity(ctx context.Context, provider Provider, providerID string) (*User, error)

	// Sessions
	CreateSession(ctx context.Context, s *Session) error
	FindSessionByTokenHash(ctx context.Context, tokenHash string) (*Session, error)
	RevokeSession(ctx context.Context, sessionID string, at time.Time) error
	RevokeAllSessionsForUser(ctx context.Context, userID string, at time.Time) error
	MarkSessionRotated(ctx context.Context, sessionID, replacedBySessionID string, at time.Time) error

	// Password reset tokens
	CreateResetToken(ctx context.Context, t *PasswordResetToken) error
	FindResetTokenByHash(ctx context.Context, tokenHash string) (*PasswordResetToken, error)
	MarkResetTokenUsed(ctx context.Context, id string, at time.Time) error
	DeleteResetTokensForUser(ctx context.Context, userID string) error

	// OAuth states
	CreateOAuthState(ctx context.Context, s *OAuthState) error
	ConsumeOAuthState(ctx context.Context, state string, at time.Time) (*OAuthState, error)
	DeleteExpiredOAuthStates(ctx context.Context) (int64, error)
}

// repository implements Repository using pgx and squirrel.
type repository struct {
	db   database.DBTX
	pool database.Pool // nil when the repository is already tx-bound
	psql squirrel.StatementBuilderType
}

// NewRepository creates a new auth repository with the given connection pool.
func NewRepository(pool database.Pool) Repository {
	return &repository{
		db:   pool,
		pool: pool,
		psql: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *repository) WithTx(ctx context.Context, fn func(Repository) error) error {
	if r.pool == nil {
		// Already inside a transaction; nested sections join it.
		return fn(r)
	}
	return database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&repository{db: tx, psql: r.psql})
	})
}
