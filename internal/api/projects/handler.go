package projects

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/good-yellow-bee/feattrack/internal/metrics"
	"github.com/good-yellow-bee/feattrack/internal/models"
	"github.com/good-yellow-bee/feattrack/internal/storage"
)

// Response helpers (same pattern as features)
type errorResponse struct {
	Error errorBody `json:"error"`
}
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
type dataResponse struct {
	Data any `json:"data"`
}

const (
	errCodeBadRequest       = "BAD_REQUEST"
	errCodeValidationFailed = "VALIDATION_FAILED"
	errCodeNotFound         = "NOT_FOUND"
	errCodeConflict         = "CONFLICT"
	errCodeInternalError    = "INTERNAL_ERROR"
)

func jsonError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: errorBody{Code: code, Message: message}})
}

func jsonOK(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(dataResponse{Data: data})
}

func jsonCreated(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(dataResponse{Data: data})
}

func jsonNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// ProjectResponse is the wire form of a project.
type ProjectResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type Handler struct {
	storage     storage.Storage
	development bool
}

func NewHandler(store storage.Storage, development bool) *Handler {
	return &Handler{storage: store, development: development}
}

// internalError logs the storage failure. Outside development the caller
// gets a generic message so storage internals never leak.
func (h *Handler) internalError(w http.ResponseWriter, op string, err error) {
	log.Printf("%s: %v", op, err)
	msg := "internal server error"
	if h.development {
		msg = err.Error()
	}
	jsonError(w, http.StatusInternalServerError, errCodeInternalError, msg)
}

// Request types
type CreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type UpdateRequest struct {
	Name        string  `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// List returns all projects, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.storage.Projects().List(r.Context())
	if err != nil {
		h.internalError(w, "list projects error", err)
		return
	}

	resp := make([]*ProjectResponse, len(projects))
	for i, p := range projects {
		resp[i] = projectToResponse(p)
	}
	jsonOK(w, resp)
}

// Create creates a new project.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "invalid request body")
		return
	}

	if err := ValidateName(req.Name); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, err.Error())
		return
	}

	ctx := r.Context()

	// Check name uniqueness
	existing, err := h.storage.Projects().GetByName(ctx, strings.TrimSpace(req.Name))
	if err != nil {
		h.internalError(w, "create project error: check name", err)
		return
	}
	if existing != nil {
		jsonError(w, http.StatusConflict, errCodeConflict, "project name already exists")
		return
	}

	project := models.NewProject(strings.TrimSpace(req.Name), strings.TrimSpace(req.Description))

	if err := h.storage.Projects().Create(ctx, project); err != nil {
		h.internalError(w, "create project error", err)
		return
	}

	metrics.ProjectsCreatedTotal.Inc()
	log.Printf("project created: %s (%s)", project.Name, project.ID)
	jsonCreated(w, projectToResponse(project))
}

// GetByID returns a project by ID.
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := uuid.Validate(id); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, "invalid project id")
		return
	}

	project, err := h.storage.Projects().GetByID(r.Context(), id)
	if err != nil {
		h.internalError(w, "get project error", err)
		return
	}
	if project == nil {
		jsonError(w, http.StatusNotFound, errCodeNotFound, "project not found")
		return
	}

	jsonOK(w, projectToResponse(project))
}

// Update updates a project's name and description.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := uuid.Validate(id); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, "invalid project id")
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()
	project, err := h.storage.Projects().GetByID(ctx, id)
	if err != nil {
		h.internalError(w, "update project error: get", err)
		return
	}
	if project == nil {
		jsonError(w, http.StatusNotFound, errCodeNotFound, "project not found")
		return
	}

	if req.Name != "" {
		if err := ValidateName(req.Name); err != nil {
			jsonError(w, http.StatusBadRequest, errCodeValidationFailed, err.Error())
			return
		}
		// Uniqueness check excludes the project itself
		existing, err := h.storage.Projects().GetByName(ctx, strings.TrimSpace(req.Name))
		if err != nil {
			h.internalError(w, "update project error: check name", err)
			return
		}
		if existing != nil && existing.ID != id {
			jsonError(w, http.StatusConflict, errCodeConflict, "project name already exists")
			return
		}
		project.Name = strings.TrimSpace(req.Name)
	}
	if req.Description != nil {
		project.Description = strings.TrimSpace(*req.Description)
	}

	project.UpdatedAt = time.Now()

	if err := h.storage.Projects().Update(ctx, project); err != nil {
		h.internalError(w, "update project error", err)
		return
	}

	log.Printf("project updated: %s (%s)", project.Name, project.ID)
	jsonOK(w, projectToResponse(project))
}

// Delete deletes a project and every feature it owns. Features go first, in
// one bulk step, so a failure can never orphan them behind a deleted project.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := uuid.Validate(id); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, "invalid project id")
		return
	}

	ctx := r.Context()
	project, err := h.storage.Projects().GetByID(ctx, id)
	if err != nil {
		h.internalError(w, "delete project error: get", err)
		return
	}
	if project == nil {
		jsonError(w, http.StatusNotFound, errCodeNotFound, "project not found")
		return
	}

	deleted, err := h.storage.Features().DeleteByProject(ctx, id)
	if err != nil {
		h.internalError(w, "delete project error: delete features", err)
		return
	}

	if err := h.storage.Projects().Delete(ctx, id); err != nil {
		h.internalError(w, "delete project error", err)
		return
	}

	metrics.ProjectsDeletedTotal.Inc()
	metrics.FeaturesDeletedTotal.Add(float64(deleted))
	log.Printf("project deleted: %s (%s), %d features removed", project.Name, project.ID, deleted)
	jsonNoContent(w)
}

func projectToResponse(p *models.Project) *ProjectResponse {
	return &ProjectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   p.UpdatedAt.Format(time.RFC3339),
	}
}
