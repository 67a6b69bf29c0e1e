package note

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/notedrop/notedrop-api/internal/content"
)

// CreateInput carries the fields of a new note.
type CreateInput struct {
	Title      string
	Content    string
	Visibility Visibility
}

// UpdateInput carries a partial update; nil fields keep their current value.
type UpdateInput struct {
	Title      *string
	Content    *string
	Visibility *Visibility
}

// Service owns note CRUD, search and the read-time markdown rendering.
type Service interface {
	Create(ctx context.Context, userID string, input CreateInput) (*Note, error)
	// GetByID returns the note with its sanitized HTML. Private notes are
	// reported as not found to anyone but their author.
	GetByID(ctx context.Context, id, userID string) (*RenderedNote, error)
	List(ctx context.Context, userID string) ([]NoteSummary, error)
	Search(ctx context.Context, query, userID string, filter SearchFilter) ([]NoteSummary, error)
	Update(ctx context.Context, id, userID string, input UpdateInput) (*Note, error)
	Delete(ctx context.Context, id, userID string) error
}

type service struct {
	repo     Repository
	renderer *content.Renderer
	logger   *slog.Logger
}

// NewService creates a new note service.
func NewService(repo Repository, renderer *content.Renderer, logger *slog.Logger) Service {
	return &service{repo: repo, renderer: renderer, logger: logger}
}

func (s *service) Create(ctx context.Context, userID string, input CreateInput) (*Note, error) {
	if input.Visibility == "" {
		input.Visibility = VisibilityPrivate
	}
	if !input.Visibility.Valid() {
		return nil, ErrInvalidVisibility
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, ErrInternal.WithCause(err)
	}

	n := &Note{
		ID:         id.String(),
		AuthorID:   userID,
		Title:      input.Title,
		Content:    input.Content,
		Visibility: input.Visibility,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Error("failed to create note", "user_id", userID, "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	s.logger.Info("note created", "note_id", n.ID, "user_id", userID)
	return n, nil
}

func (s *service) GetByID(ctx context.Context, id, userID string) (*RenderedNote, error) {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		s.logger.Error("failed to load note", "note_id", id, "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	if n.Visibility == VisibilityPrivate && n.AuthorID != userID {
		return nil, ErrNotFound
	}

	html, err := s.renderer.Render(n.Content)
	if err != nil {
		s.logger.Error("failed to render note", "note_id", id, "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	return &RenderedNote{Note: *n, HTMLContent: html}, nil
}

func (s *service) List(ctx context.Context, userID string) ([]NoteSummary, error) {
	notes, err := s.repo.ListVisible(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list notes", "user_id", userID, "error", err)
		return nil, ErrInternal.WithCause(err)
	}
	return notes, nil
}

func (s *service) Search(ctx context.Context, query, userID string, filter SearchFilter) ([]NoteSummary, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return []NoteSummary{}, nil
	}

	notes, err := s.repo.Search(ctx, trimmed, userID, filter)
	if err != nil {
		s.logger.Error("failed to search notes", "user_id", userID, "error", err)
		return nil, ErrInternal.WithCause(err)
	}
	return notes, nil
}

func (s *service) Update(ctx context.Context, id, userID string, input UpdateInput) (*Note, error) {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		s.logger.Error("failed to load note for update", "note_id", id, "error", err)
		return nil, ErrInternal.WithCause(err)
	}
	if n.AuthorID != userID {
		return nil, ErrNotFound
	}

	if input.Title != nil {
		n.Title = *input.Title
	}
	if input.Content != nil {
		n.Content = *input.Content
	}
	if input.Visibility != nil {
		if !input.Visibility.Valid() {
			return nil, ErrInvalidVisibility
		}
		n.Visibility = *input.Visibility
	}

	updated, err := s.repo.Update(ctx, n)
	if err != nil {
		s.logger.Error("failed to update note", "note_id", id, "error", err)
		return nil, ErrInternal.WithCause(err)
	}
	if !updated {
		return nil, ErrNotFound
	}
	return n, nil
}

func (s *service) Delete(ctx context.Context, id, userID string) error {
	deleted, err := s.repo.DeleteByIDAndAuthor(ctx, id, userID)
	if err != nil {
		s.logger.Error("failed to delete note", "note_id", id, "error", err)
		return ErrInternal.WithCause(err)
	}
	if !deleted {
		return ErrNotFound
	}

	s.logger.Info("note deleted", "note_id", id, "user_id", userID)
	return nil
}
