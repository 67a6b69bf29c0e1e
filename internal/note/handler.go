package note

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/notedrop/notedrop-api/internal/contextx"
	"github.com/notedrop/notedrop-api/internal/httpx"
	"github.com/notedrop/notedrop-api/internal/validation"
)

// Handler holds the dependencies for the note module's HTTP handlers.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// NewHandler creates a new handler for the note module.
func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes sets up the routing for the note module. Every route
// accepts bearer tokens and API keys alike.
func (h *Handler) RegisterRoutes(api huma.API) {
	security := []map[string][]string{{"bearer": {}}, {"apiKey": {}}}

	huma.Register(api, huma.Operation{
		OperationID: "note-create",
		Method:      http.MethodPost,
		Path:        "/notes",
		Summary:     "Create a note",
		Security:    security,
	}, h.CreateHandler)

	huma.Register(api, huma.Operation{
		OperationID: "note-list",
		Method:      http.MethodGet,
		Path:        "/notes",
		Summary:     "List notes visible to the caller",
		Security:    security,
	}, h.ListHandler)

	huma.Register(api, huma.Operation{
		OperationID: "note-search",
		Method:      http.MethodGet,
		Path:        "/notes/search",
		Summary:     "Search notes by title or content",
		Security:    security,
	}, h.SearchHandler)

	huma.Register(api, huma.Operation{
		OperationID: "note-get",
		Method:      http.MethodGet,
		Path:        "/notes/{id}",
		Summary:     "Get a note with rendered HTML",
		Security:    security,
	}, h.GetHandler)

	huma.Register(api, huma.Operation{
		OperationID: "note-update",
		Method:      http.MethodPut,
		Path:        "/notes/{id}",
		Summary:     "Update a note",
		Security:    security,
	}, h.UpdateHandler)

	huma.Register(api, huma.Operation{
		OperationID: "note-delete",
		Method:      http.MethodDelete,
		Path:        "/notes/{id}",
		Summary:     "Delete a note",
		Security:    security,
	}, h.DeleteHandler)
}

// --- DTOs ---

// NoteBody is the full note representation shared by create, get and update.
type NoteBody struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	HTMLContent string     `json:"htmlContent,omitempty"`
	Visibility  Visibility `json:"visibility"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// CreateNoteRequest defines the structure for the note creation request body.
type CreateNoteRequest struct {
	Body struct {
		Title      string     `json:"title,omitempty" validate:"omitempty,max=200"`
		Content    string     `json:"content" validate:"required,min=1,max=100000"`
		Visibility Visibility `json:"visibility,omitempty" validate:"omitempty,oneof=PUBLIC PRIVATE"`
	}
}

// NoteResponse wraps a single note.
type NoteResponse struct {
	Status int
	Body   NoteBody
}

// NoteListResponse wraps note summaries.
type NoteListResponse struct {
	Body struct {
		Notes []NoteSummary `json:"notes"`
	}
}

// NoteIDRequest identifies a note by path.
type NoteIDRequest struct {
	ID string `path:"id" format:"uuid"`
}

// SearchNotesRequest carries the search query and scope filter.
type SearchNotesRequest struct {
	Query string `query:"query"`
	Type  string `query:"type" enum:"own,public," required:"false"`
}

// UpdateNoteRequest is a partial update; absent fields are left unchanged.
type UpdateNoteRequest struct {
	ID   string `path:"id" format:"uuid"`
	Body struct {
		Title      *string     `json:"title,omitempty" validate:"omitempty,max=200"`
		Content    *string     `json:"content,omitempty" validate:"omitempty,min=1,max=100000"`
		Visibility *Visibility `json:"visibility,omitempty" validate:"omitempty,oneof=PUBLIC PRIVATE"`
	}
}

// DeleteNoteResponse acknowledges the deletion.
type DeleteNoteResponse struct {
	Body struct {
		OK bool `json:"ok"`
	}
}

func noteBody(n *Note, html string) NoteBody {
	return NoteBody{
		ID:          n.ID,
		Title:       n.Title,
		Content:     n.Content,
		HTMLContent: html,
		Visibility:  n.Visibility,
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   n.UpdatedAt,
	}
}

func callerID(ctx context.Context) (string, error) {
	userID, _ := ctx.Value(contextx.UserIDKey).(string)
	if userID == "" {
		return "", huma.Error401Unauthorized("authentication required")
	}
	return userID, nil
}

// --- Handlers ---

// CreateHandler creates a note owned by the caller.
func (h *Handler) CreateHandler(ctx context.Context, input *CreateNoteRequest) (*NoteResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateStruct(input.Body); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	n, err := h.service.Create(ctx, userID, CreateInput{
		Title:      input.Body.Title,
		Content:    input.Body.Content,
		Visibility: input.Body.Visibility,
	})
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	return &NoteResponse{Status: http.StatusCreated, Body: noteBody(n, "")}, nil
}

// GetHandler returns a note with its rendered HTML.
func (h *Handler) GetHandler(ctx context.Context, input *NoteIDRequest) (*NoteResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	rendered, err := h.service.GetByID(ctx, input.ID, userID)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	return &NoteResponse{Status: http.StatusOK, Body: noteBody(&rendered.Note, rendered.HTMLContent)}, nil
}

// ListHandler lists public notes plus the caller's private ones.
func (h *Handler) ListHandler(ctx context.Context, _ *struct{}) (*NoteListResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	notes, err := h.service.List(ctx, userID)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &NoteListResponse{}
	resp.Body.Notes = notes
	return resp, nil
}

// SearchHandler searches by title or content within the chosen scope.
func (h *Handler) SearchHandler(ctx context.Context, input *SearchNotesRequest) (*NoteListResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	notes, err := h.service.Search(ctx, input.Query, userID, SearchFilter(input.Type))
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &NoteListResponse{}
	resp.Body.Notes = notes
	return resp, nil
}

// UpdateHandler applies a partial update to a note the caller owns.
func (h *Handler) UpdateHandler(ctx context.Context, input *UpdateNoteRequest) (*NoteResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateStruct(input.Body); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	n, err := h.service.Update(ctx, input.ID, userID, UpdateInput{
		Title:      input.Body.Title,
		Content:    input.Body.Content,
		Visibility: input.Body.Visibility,
	})
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	return &NoteResponse{Status: http.StatusOK, Body: noteBody(n, "")}, nil
}

// DeleteHandler deletes a note the caller owns.
func (h *Handler) DeleteHandler(ctx context.Context, input *NoteIDRequest) (*DeleteNoteResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	if err := h.service.Delete(ctx, input.ID, userID); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &DeleteNoteResponse{}
	resp.Body.OK = true
	return resp, nil
}
