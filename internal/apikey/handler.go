package apikey

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

// Handler holds the dependencies for the api key module's HTTP handlers.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// NewHandler creates a new handler for the api key module.
func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes sets up the routing for the api key module. All routes
// require a bearer token; API keys cannot manage API keys.
func (h *Handler) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "apikey-create",
		Method:      http.MethodPost,
		Path:        "/api-keys",
		Summary:     "Create a new API key",
		Security:    []map[string][]string{{"bearer": {}}},
	}, h.CreateHandler)

	huma.Register(api, huma.Operation{
		OperationID: "apikey-list",
		Method:      http.MethodGet,
		Path:        "/api-keys",
		Summary:     "List the caller's active API keys",
		Security:    []map[string][]string{{"bearer": {}}},
	}, h.ListHandler)

	huma.Register(api, huma.Operation{
		OperationID: "apikey-revoke",
		Method:      http.MethodDelete,
		Path:        "/api-keys/{id}",
		Summary:     "Revoke an API key",
		Security:    []map[string][]string{{"bearer": {}}},
	}, h.RevokeHandler)
}

// CreateKeyRequest defines the structure for the key creation request body.
type CreateKeyRequest struct {
	Body struct {
		Name          string `json:"name" validate:"required,min=1,max=50"`
		ExpiresInDays int    `json:"expiresInDays,omitempty" validate:"omitempty,min=1,max=365"`
	}
}

// CreateKeyResponse carries the plain key. It is shown exactly once.
type CreateKeyResponse struct {
	Status int
	Body   struct {
		ID        string     `json:"id"`
		Name      string     `json:"name"`
		Key       string     `json:"key"`
		ExpiresAt *time.Time `json:"expiresAt,omitempty"`
		CreatedAt time.Time  `json:"createdAt"`
	}
}

// ListKeysResponse lists key metadata, never key material.
type ListKeysResponse struct {
	Body struct {
		Keys []KeySummary `json:"keys"`
	}
}

// RevokeKeyRequest identifies the key to revoke by path.
type RevokeKeyRequest struct {
	ID string `path:"id" format:"uuid"`
}

// RevokeKeyResponse acknowledges the revocation.
type RevokeKeyResponse struct {
	Body struct {
		OK bool `json:"ok"`
	}
}

// CreateHandler mints a new key for the authenticated user.
func (h *Handler) CreateHandler(ctx context.Context, input *CreateKeyRequest) (*CreateKeyResponse, error) {
	userID, _ := ctx.Value(contextx.UserIDKey).(string)
	if userID == "" {
		return nil, huma.Error401Unauthorized("authentication required")
	}
	if err := validation.ValidateStruct(input.Body); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	key, err := h.service.Generate(ctx, userID, input.Body.Name, input.Body.ExpiresInDays)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &CreateKeyResponse{Status: http.StatusCreated}
	resp.Body.ID = key.ID
	resp.Body.Name = key.Name
	resp.Body.Key = key.Key
	resp.Body.ExpiresAt = key.ExpiresAt
	resp.Body.CreatedAt = key.CreatedAt
	return resp, nil
}

// ListHandler lists the caller's active keys, newest first.
func (h *Handler) ListHandler(ctx context.Context, _ *struct{}) (*ListKeysResponse, error) {
	userID, _ := ctx.Value(contextx.UserIDKey).(string)
	if userID == "" {
		return nil, huma.Error401Unauthorized("authentication required")
	}

	keys, err := h.service.List(ctx, userID)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &ListKeysResponse{}
	resp.Body.Keys = keys
	return resp, nil
}

// RevokeHandler revokes one of the caller's keys.
func (h *Handler) RevokeHandler(ctx context.Context, input *RevokeKeyRequest) (*RevokeKeyResponse, error) {
	userID, _ := ctx.Value(contextx.UserIDKey).(string)
	if userID == "" {
		return nil, huma.Error401Unauthorized("authentication required")
	}

	if err := h.service.Revoke(ctx, input.ID, userID); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &RevokeKeyResponse{}
	resp.Body.OK = true
	return resp, nil
}
