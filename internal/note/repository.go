package note

import (
	"context"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"github.com/notedrop/notedrop-api/internal/database"
)

const noteColumns = "id, author_id, title, content, visibility, created_at, updated_at"
const summaryColumns = "id, title, visibility, created_at, updated_at"

// SearchFilter narrows search results by ownership or visibility.
type SearchFilter string

const (
	// FilterDefault returns public notes plus the caller's private ones.
	FilterDefault SearchFilter = ""
	// FilterOwn returns only the caller's notes, any visibility.
	FilterOwn SearchFilter = "own"
	// FilterPublic returns only public notes, any author.
	FilterPublic SearchFilter = "public"
)

// Repository defines the database operations of the note module.
type Repository interface {
	Create(ctx context.Context, n *Note) error
	FindByID(ctx context.Context, id string) (*Note, error)
	// ListVisible returns public notes plus the user's private ones,
	// newest first.
	ListVisible(ctx context.Context, userID string) ([]NoteSummary, error)
	// Search matches the query against title and content, case
	// insensitively, within the notes the filter admits.
	Search(ctx context.Context, query, userID string, filter SearchFilter) ([]NoteSummary, error)
	// Update writes title, content and visibility of a note the user owns.
	// Returns false when no row matched.
	Update(ctx context.Context, n *Note) (bool, error)
	// DeleteByIDAndAuthor removes a note only when the caller owns it.
	DeleteByIDAndAuthor(ctx context.Context, id, authorID string) (bool, error)
}

type repository struct {
	db   database.DBTX
	psql squirrel.StatementBuilderType
}

// NewRepository creates a new note repository with the given connection pool.
func NewRepository(pool database.Pool) Repository {
	return &repository{
		db:   pool,
		psql: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *repository) Create(ctx context.Context, n *Note) error {
	now := time.Now()
	n.CreatedAt = now
	n.UpdatedAt = now

	query, args, err := r.psql.Insert("notes").
		Columns("id", "author_id", "title", "content", "visibility", "created_at", "updated_at").
		Values(n.ID, n.AuthorID, n.Title, n.Content, n.Visibility, n.CreatedAt, n.UpdatedAt).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, query, args...)
	return err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Note, error) {
	query, args, err := r.psql.Select(noteColumns).
		From("notes").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, err
	}

	var n Note
	if err := pgxscan.Get(ctx, r.db, &n, query, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound.WithCause(err)
		}
		return nil, err
	}
	return &n, nil
}

// visibleTo is the default read predicate: public, or owned by the user.
func visibleTo(userID string) squirrel.Sqlizer {
	return squirrel.Or{
		squirrel.Eq{"visibility": VisibilityPublic},
		squirrel.Eq{"author_id": userID},
	}
}

func (r *repository) ListVisible(ctx context.Context, userID string) ([]NoteSummary, error) {
	query, args, err := r.psql.Select(summaryColumns).
		From("notes").
		Where(visibleTo(userID)).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, err
	}

	notes := []NoteSummary{}
	if err := pgxscan.Select(ctx, r.db, &notes, query, args...); err != nil {
		return nil, err
	}
	return notes, nil
}

func (r *repository) Search(ctx context.Context, query, userID string, filter SearchFilter) ([]NoteSummary, error) {
	pattern := "%" + query + "%"
	match := squirrel.Or{
		squirrel.ILike{"title": pattern},
		squirrel.ILike{"content": pattern},
	}

	var scope squirrel.Sqlizer
	switch filter {
	case FilterOwn:
		scope = squirrel.Eq{"author_id": userID}
	case FilterPublic:
		scope = squirrel.Eq{"visibility": VisibilityPublic}
	default:
		scope = visibleTo(userID)
	}

	sql, args, err := r.psql.Select(summaryColumns).
		From("notes").
		Where(squirrel.And{match, scope}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, err
	}

	notes := []NoteSummary{}
	if err := pgxscan.Select(ctx, r.db, &notes, sql, args...); err != nil {
		return nil, err
	}
	return notes, nil
}

func (r *repository) Update(ctx context.Context, n *Note) (bool, error) {
	n.UpdatedAt = time.Now()

	query, args, err := r.psql.Update("notes").
		Set("title", n.Title).
		Set("content", n.Content).
		Set("visibility", n.Visibility).
		Set("updated_at", n.UpdatedAt).
		Where(squirrel.Eq{"id": n.ID, "author_id": n.AuthorID}).
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

func (r *repository) DeleteByIDAndAuthor(ctx context.Context, id, authorID string) (bool, error) {
	query, args, err := r.psql.Delete("notes").
		Where(squirrel.Eq{"id": id, "author_id": authorID}).
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
