package features

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/good-yellow-bee/feattrack/internal/accounting"
	"github.com/good-yellow-bee/feattrack/internal/metrics"
	"github.com/good-yellow-bee/feattrack/internal/models"
	"github.com/good-yellow-bee/feattrack/internal/storage"
	"github.com/good-yellow-bee/feattrack/internal/tree"
)

// Response helpers
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

type Handler struct {
	storage     storage.Storage
	development bool
}

func NewHandler(store storage.Storage, development bool) *Handler {
	return &Handler{storage: store, development: development}
}

func (h *Handler) internalError(w http.ResponseWriter, op string, err error) {
	log.Printf("%s: %v", op, err)
	msg := "internal server error"
	if h.development {
		msg = err.Error()
	}
	jsonError(w, http.StatusInternalServerError, errCodeInternalError, msg)
}

// Request types. Pointer fields distinguish "absent" from an explicit zero
// value; an explicit false or empty string is applied, an absent field is not.
type CreateRequest struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	ProjectID        string   `json:"project_id"`
	ParentID         string   `json:"parent_id"`
	Images           []string `json:"images"`
	Order            int      `json:"order"`
	HasAccounting    *bool    `json:"has_accounting"`
	IsAccountingDone *bool    `json:"is_accounting_done"`
	IsCompleted      *bool    `json:"is_completed"`
}

type UpdateRequest struct {
	Title            *string   `json:"title"`
	Description      *string   `json:"description"`
	ParentID         *string   `json:"parent_id"`
	Images           *[]string `json:"images"`
	Order            *int      `json:"order"`
	HasAccounting    *bool     `json:"has_accounting"`
	IsAccountingDone *bool     `json:"is_accounting_done"`
	IsCompleted      *bool     `json:"is_completed"`
}

type ReorderRequest struct {
	FeatureIDs []string `json:"feature_ids"`
}

// List returns a project's features as a flat list sorted by sibling order
// with creation time as the tie-break.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	projectID := r.URL.Query().Get("project_id")
	if err := uuid.Validate(projectID); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, "project_id query parameter is required and must be a valid id")
		return
	}

	features, err := h.storage.Features().ListByProject(r.Context(), projectID)
	if err != nil {
		h.internalError(w, "list features error", err)
		return
	}
	if features == nil {
		features = []*models.Feature{}
	}

	jsonOK(w, features)
}

// Create creates a new feature. The parent id, if given, is stored as-is: a
// fresh feature has no descendants, so it cannot close a cycle.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "invalid request body")
		return
	}

	if err := ValidateTitle(req.Title); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, err.Error())
		return
	}
	if err := uuid.Validate(req.ProjectID); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, "project_id is required and must be a valid id")
		return
	}
	if req.ParentID != "" {
		if err := uuid.Validate(req.ParentID); err != nil {
			jsonError(w, http.StatusBadRequest, errCodeValidationFailed, "parent_id must be a valid id")
			return
		}
	}
	if err := ValidateImages(req.Images); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, err.Error())
		return
	}

	state, err := accounting.Resolve(accounting.State{}, accounting.Change{
		HasAccounting:  req.HasAccounting,
		AccountingDone: req.IsAccountingDone,
	})
	if err != nil {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, err.Error())
		return
	}

	ctx := r.Context()

	project, err := h.storage.Projects().GetByID(ctx, req.ProjectID)
	if err != nil {
		h.internalError(w, "create feature error: get project", err)
		return
	}
	if project == nil {
		jsonError(w, http.StatusNotFound, errCodeNotFound, "project not found")
		return
	}

	feature := models.NewFeature(req.ProjectID, strings.TrimSpace(req.Title))
	feature.Description = strings.TrimSpace(req.Description)
	feature.ParentID = req.ParentID
	feature.Order = req.Order
	feature.HasAccounting = state.HasAccounting
	feature.IsAccountingDone = state.AccountingDone
	if req.IsCompleted != nil {
		feature.IsCompleted = *req.IsCompleted
	}
	if req.Images != nil {
		feature.Images = req.Images
	}

	if err := h.storage.Features().Create(ctx, feature); err != nil {
		h.internalError(w, "create feature error", err)
		return
	}

	metrics.FeaturesCreatedTotal.Inc()
	log.Printf("feature created: %s (%s) in project %s", feature.Title, feature.ID, feature.ProjectID)
	jsonCreated(w, feature)
}

// GetByID returns a feature by ID.
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := uuid.Validate(id); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, "invalid feature id")
		return
	}

	feature, err := h.storage.Features().GetByID(r.Context(), id)
	if err != nil {
		h.internalError(w, "get feature error", err)
		return
	}
	if feature == nil {
		jsonError(w, http.StatusNotFound, errCodeNotFound, "feature not found")
		return
	}

	jsonOK(w, feature)
}

// Update applies a partial update. Re-parenting is checked against the
// feature's descendant set before anything is written; a move that would make
// the feature its own ancestor is rejected.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := uuid.Validate(id); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, "invalid feature id")
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()
	feature, err := h.storage.Features().GetByID(ctx, id)
	if err != nil {
		h.internalError(w, "update feature error: get", err)
		return
	}
	if feature == nil {
		jsonError(w, http.StatusNotFound, errCodeNotFound, "feature not found")
		return
	}

	if req.Title != nil {
		if err := ValidateTitle(*req.Title); err != nil {
			jsonError(w, http.StatusBadRequest, errCodeValidationFailed, err.Error())
			return
		}
		feature.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		feature.Description = strings.TrimSpace(*req.Description)
	}

	if req.ParentID != nil && *req.ParentID != feature.ParentID {
		newParent := *req.ParentID
		if newParent != "" {
			if err := uuid.Validate(newParent); err != nil {
				jsonError(w, http.StatusBadRequest, errCodeValidationFailed, "parent_id must be a valid id")
				return
			}
		}
		cycle, err := tree.WouldCreateCycle(ctx, h.storage.Features().GetByID, id, newParent)
		if err != nil {
			h.internalError(w, "update feature error: cycle check", err)
			return
		}
		if cycle {
			metrics.CycleRejectionsTotal.Inc()
			jsonError(w, http.StatusBadRequest, errCodeValidationFailed, "cannot move a feature under its own descendant")
			return
		}
		feature.ParentID = newParent
	}

	if req.Images != nil {
		if err := ValidateImages(*req.Images); err != nil {
			jsonError(w, http.StatusBadRequest, errCodeValidationFailed, err.Error())
			return
		}
		feature.Images = *req.Images
	}
	if req.Order != nil {
		feature.Order = *req.Order
	}
	if req.IsCompleted != nil {
		feature.IsCompleted = *req.IsCompleted
	}

	state, err := accounting.Resolve(
		accounting.State{HasAccounting: feature.HasAccounting, AccountingDone: feature.IsAccountingDone},
		accounting.Change{HasAccounting: req.HasAccounting, AccountingDone: req.IsAccountingDone},
	)
	if err != nil {
		if errors.Is(err, accounting.ErrDoneWithoutAccounting) {
			jsonError(w, http.StatusBadRequest, errCodeValidationFailed, err.Error())
			return
		}
		h.internalError(w, "update feature error: accounting", err)
		return
	}
	feature.HasAccounting = state.HasAccounting
	feature.IsAccountingDone = state.AccountingDone

	feature.UpdatedAt = time.Now()

	if err := h.storage.Features().Update(ctx, feature); err != nil {
		h.internalError(w, "update feature error", err)
		return
	}

	log.Printf("feature updated: %s (%s)", feature.Title, feature.ID)
	jsonOK(w, feature)
}

// Delete removes a feature and its whole subtree, descendants first.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := uuid.Validate(id); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, "invalid feature id")
		return
	}

	ctx := r.Context()
	feature, err := h.storage.Features().GetByID(ctx, id)
	if err != nil {
		h.internalError(w, "delete feature error: get", err)
		return
	}
	if feature == nil {
		jsonError(w, http.StatusNotFound, errCodeNotFound, "feature not found")
		return
	}

	deleted, err := h.storage.Features().DeleteSubtree(ctx, id)
	if err != nil {
		h.internalError(w, "delete feature error", err)
		return
	}

	metrics.FeaturesDeletedTotal.Add(float64(deleted))
	metrics.CascadeDepth.Observe(float64(deleted))
	log.Printf("feature deleted: %s (%s), %d features removed", feature.Title, feature.ID, deleted)
	jsonNoContent(w)
}

// Reorder assigns sibling order by list position: the first id gets order 0,
// the second order 1, and so on. Every id is validated and resolved before
// any order is written, so a bad batch changes nothing.
func (h *Handler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req ReorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "invalid request body")
		return
	}
	if len(req.FeatureIDs) == 0 {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, "feature_ids is required")
		return
	}

	ctx := r.Context()
	for _, id := range req.FeatureIDs {
		if err := uuid.Validate(id); err != nil {
			jsonError(w, http.StatusBadRequest, errCodeValidationFailed, "feature_ids contains an invalid id")
			return
		}
		feature, err := h.storage.Features().GetByID(ctx, id)
		if err != nil {
			h.internalError(w, "reorder features error: get", err)
			return
		}
		if feature == nil {
			jsonError(w, http.StatusNotFound, errCodeNotFound, "feature not found: "+id)
			return
		}
	}

	for i, id := range req.FeatureIDs {
		if err := h.storage.Features().UpdateOrder(ctx, id, i); err != nil {
			h.internalError(w, "reorder features error", err)
			return
		}
	}

	metrics.ReordersTotal.Inc()
	log.Printf("features reordered: %d ids", len(req.FeatureIDs))
	jsonOK(w, map[string]int{"reordered": len(req.FeatureIDs)})
}

// Tree returns a project's features assembled into their hierarchy. The
// status parameter prunes the tree but keeps ancestors of every match; the q
// parameter switches the response to a flat search result.
func (h *Handler) Tree(w http.ResponseWriter, r *http.Request) {
	projectID := r.URL.Query().Get("project_id")
	if err := uuid.Validate(projectID); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, "project_id query parameter is required and must be a valid id")
		return
	}

	status, err := tree.ParseStatus(r.URL.Query().Get("status"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, err.Error())
		return
	}

	features, err := h.storage.Features().ListByProject(r.Context(), projectID)
	if err != nil {
		h.internalError(w, "feature tree error", err)
		return
	}

	nodes := tree.Assemble(features)
	nodes = tree.FilterByStatus(nodes, status)

	if q := r.URL.Query().Get("q"); q != "" {
		nodes = tree.Search(nodes, q)
	}

	jsonOK(w, nodes)
}
