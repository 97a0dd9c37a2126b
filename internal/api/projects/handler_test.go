package projects

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/good-yellow-bee/feattrack/internal/models"
	"github.com/good-yellow-bee/feattrack/internal/storage"
)

// Mock repositories
type mockProjectRepository struct {
	projects     []*models.Project
	getByIDError error
	createError  error
	updateError  error
	deleteError  error
	listError    error
}

func (m *mockProjectRepository) Create(ctx context.Context, project *models.Project) error {
	if m.createError != nil {
		return m.createError
	}
	m.projects = append(m.projects, project)
	return nil
}

func (m *mockProjectRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	if m.getByIDError != nil {
		return nil, m.getByIDError
	}
	for _, p := range m.projects {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

func (m *mockProjectRepository) GetByName(ctx context.Context, name string) (*models.Project, error) {
	for _, p := range m.projects {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, nil
}

func (m *mockProjectRepository) Update(ctx context.Context, project *models.Project) error {
	if m.updateError != nil {
		return m.updateError
	}
	for i, p := range m.projects {
		if p.ID == project.ID {
			m.projects[i] = project
			return nil
		}
	}
	return nil
}

func (m *mockProjectRepository) Delete(ctx context.Context, id string) error {
	if m.deleteError != nil {
		return m.deleteError
	}
	for i, p := range m.projects {
		if p.ID == id {
			m.projects = append(m.projects[:i], m.projects[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *mockProjectRepository) List(ctx context.Context) ([]*models.Project, error) {
	if m.listError != nil {
		return nil, m.listError
	}
	return m.projects, nil
}

type mockFeatureRepository struct {
	features           []*models.Feature
	deleteByProjectIDs []string
}

func (m *mockFeatureRepository) Create(ctx context.Context, feature *models.Feature) error {
	m.features = append(m.features, feature)
	return nil
}

func (m *mockFeatureRepository) GetByID(ctx context.Context, id string) (*models.Feature, error) {
	for _, f := range m.features {
		if f.ID == id {
			return f, nil
		}
	}
	return nil, nil
}

func (m *mockFeatureRepository) Update(ctx context.Context, feature *models.Feature) error {
	return nil
}

func (m *mockFeatureRepository) ListByProject(ctx context.Context, projectID string) ([]*models.Feature, error) {
	var result []*models.Feature
	for _, f := range m.features {
		if f.ProjectID == projectID {
			result = append(result, f)
		}
	}
	return result, nil
}

func (m *mockFeatureRepository) ListByParent(ctx context.Context, parentID string) ([]*models.Feature, error) {
	return nil, nil
}

func (m *mockFeatureRepository) UpdateOrder(ctx context.Context, id string, order int) error {
	return nil
}

func (m *mockFeatureRepository) DeleteSubtree(ctx context.Context, id string) (int, error) {
	return 0, nil
}

func (m *mockFeatureRepository) DeleteByProject(ctx context.Context, projectID string) (int, error) {
	m.deleteByProjectIDs = append(m.deleteByProjectIDs, projectID)
	deleted := 0
	var remaining []*models.Feature
	for _, f := range m.features {
		if f.ProjectID == projectID {
			deleted++
		} else {
			remaining = append(remaining, f)
		}
	}
	m.features = remaining
	return deleted, nil
}

type mockStorage struct {
	projectRepo *mockProjectRepository
	featureRepo *mockFeatureRepository
}

func (m *mockStorage) Open() error                         { return nil }
func (m *mockStorage) Close() error                        { return nil }
func (m *mockStorage) Migrate() error                      { return nil }
func (m *mockStorage) Projects() storage.ProjectRepository { return m.projectRepo }
func (m *mockStorage) Features() storage.FeatureRepository { return m.featureRepo }

func newMockStorage() (*mockStorage, *mockProjectRepository, *mockFeatureRepository) {
	projectRepo := &mockProjectRepository{}
	featureRepo := &mockFeatureRepository{}
	return &mockStorage{projectRepo: projectRepo, featureRepo: featureRepo}, projectRepo, featureRepo
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestList_Empty(t *testing.T) {
	mockStore, _, _ := newMockStorage()
	handler := NewHandler(mockStore, false)

	req := httptest.NewRequest("GET", "/api/v1/projects", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp struct {
		Data []*ProjectResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if len(resp.Data) != 0 {
		t.Errorf("items count = %d, want 0", len(resp.Data))
	}
}

func TestList_WithResults(t *testing.T) {
	mockStore, mockRepo, _ := newMockStorage()
	now := time.Now()
	mockRepo.projects = []*models.Project{
		{ID: uuid.New().String(), Name: "Billing", Description: "billing features", CreatedAt: now, UpdatedAt: now},
	}

	handler := NewHandler(mockStore, false)
	req := httptest.NewRequest("GET", "/api/v1/projects", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp struct {
		Data []*ProjectResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if len(resp.Data) != 1 {
		t.Fatalf("items count = %d, want 1", len(resp.Data))
	}
	if resp.Data[0].Name != "Billing" {
		t.Errorf("name = %q, want 'Billing'", resp.Data[0].Name)
	}
}

func TestCreate_Success(t *testing.T) {
	mockStore, mockRepo, _ := newMockStorage()
	handler := NewHandler(mockStore, false)

	body := `{"name": "Mobile App", "description": "feature tracking for mobile"}`
	req := httptest.NewRequest("POST", "/api/v1/projects", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d; body: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var resp struct {
		Data *ProjectResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if resp.Data.Name != "Mobile App" {
		t.Errorf("name = %q, want 'Mobile App'", resp.Data.Name)
	}
	if err := uuid.Validate(resp.Data.ID); err != nil {
		t.Errorf("id %q is not a valid uuid", resp.Data.ID)
	}
	if len(mockRepo.projects) != 1 {
		t.Errorf("stored projects = %d, want 1", len(mockRepo.projects))
	}
}

func TestCreate_MissingName(t *testing.T) {
	mockStore, _, _ := newMockStorage()
	handler := NewHandler(mockStore, false)

	body := `{"description": "no name"}`
	req := httptest.NewRequest("POST", "/api/v1/projects", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestCreate_DuplicateName(t *testing.T) {
	mockStore, mockRepo, _ := newMockStorage()
	now := time.Now()
	mockRepo.projects = []*models.Project{
		{ID: uuid.New().String(), Name: "Billing", CreatedAt: now, UpdatedAt: now},
	}
	handler := NewHandler(mockStore, false)

	body := `{"name": "Billing"}`
	req := httptest.NewRequest("POST", "/api/v1/projects", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestGetByID_Success(t *testing.T) {
	mockStore, mockRepo, _ := newMockStorage()
	id := uuid.New().String()
	now := time.Now()
	mockRepo.projects = []*models.Project{
		{ID: id, Name: "Billing", CreatedAt: now, UpdatedAt: now},
	}
	handler := NewHandler(mockStore, false)

	req := httptest.NewRequest("GET", "/api/v1/projects/"+id, nil)
	req = withURLParam(req, "id", id)
	rec := httptest.NewRecorder()

	handler.GetByID(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestGetByID_InvalidID(t *testing.T) {
	mockStore, _, _ := newMockStorage()
	handler := NewHandler(mockStore, false)

	req := httptest.NewRequest("GET", "/api/v1/projects/not-a-uuid", nil)
	req = withURLParam(req, "id", "not-a-uuid")
	rec := httptest.NewRecorder()

	handler.GetByID(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	mockStore, _, _ := newMockStorage()
	handler := NewHandler(mockStore, false)

	id := uuid.New().String()
	req := httptest.NewRequest("GET", "/api/v1/projects/"+id, nil)
	req = withURLParam(req, "id", id)
	rec := httptest.NewRecorder()

	handler.GetByID(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestUpdate_Success(t *testing.T) {
	mockStore, mockRepo, _ := newMockStorage()
	id := uuid.New().String()
	now := time.Now()
	mockRepo.projects = []*models.Project{
		{ID: id, Name: "Billing", CreatedAt: now, UpdatedAt: now},
	}
	handler := NewHandler(mockStore, false)

	body := `{"name": "Billing v2", "description": "renamed"}`
	req := httptest.NewRequest("PUT", "/api/v1/projects/"+id, strings.NewReader(body))
	req = withURLParam(req, "id", id)
	rec := httptest.NewRecorder()

	handler.Update(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d; body: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if mockRepo.projects[0].Name != "Billing v2" {
		t.Errorf("stored name = %q, want 'Billing v2'", mockRepo.projects[0].Name)
	}
}

func TestUpdate_DuplicateName(t *testing.T) {
	mockStore, mockRepo, _ := newMockStorage()
	id1 := uuid.New().String()
	id2 := uuid.New().String()
	now := time.Now()
	mockRepo.projects = []*models.Project{
		{ID: id1, Name: "Billing", CreatedAt: now, UpdatedAt: now},
		{ID: id2, Name: "Mobile", CreatedAt: now, UpdatedAt: now},
	}
	handler := NewHandler(mockStore, false)

	body := `{"name": "Billing"}`
	req := httptest.NewRequest("PUT", "/api/v1/projects/"+id2, strings.NewReader(body))
	req = withURLParam(req, "id", id2)
	rec := httptest.NewRecorder()

	handler.Update(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestUpdate_SameNameIsNoConflict(t *testing.T) {
	mockStore, mockRepo, _ := newMockStorage()
	id := uuid.New().String()
	now := time.Now()
	mockRepo.projects = []*models.Project{
		{ID: id, Name: "Billing", CreatedAt: now, UpdatedAt: now},
	}
	handler := NewHandler(mockStore, false)

	body := `{"name": "Billing", "description": "still billing"}`
	req := httptest.NewRequest("PUT", "/api/v1/projects/"+id, strings.NewReader(body))
	req = withURLParam(req, "id", id)
	rec := httptest.NewRecorder()

	handler.Update(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d; body: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
}

func TestDelete_CascadesFeatures(t *testing.T) {
	mockStore, mockProjects, mockFeatures := newMockStorage()
	projectID := uuid.New().String()
	otherProject := uuid.New().String()
	now := time.Now()
	mockProjects.projects = []*models.Project{
		{ID: projectID, Name: "Billing", CreatedAt: now, UpdatedAt: now},
	}
	mockFeatures.features = []*models.Feature{
		{ID: uuid.New().String(), Title: "invoices", ProjectID: projectID},
		{ID: uuid.New().String(), Title: "refunds", ProjectID: projectID},
		{ID: uuid.New().String(), Title: "unrelated", ProjectID: otherProject},
	}
	handler := NewHandler(mockStore, false)

	req := httptest.NewRequest("DELETE", "/api/v1/projects/"+projectID, nil)
	req = withURLParam(req, "id", projectID)
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d; body: %s", rec.Code, http.StatusNoContent, rec.Body.String())
	}
	if len(mockProjects.projects) != 0 {
		t.Errorf("projects remaining = %d, want 0", len(mockProjects.projects))
	}
	if len(mockFeatures.deleteByProjectIDs) != 1 || mockFeatures.deleteByProjectIDs[0] != projectID {
		t.Errorf("DeleteByProject calls = %v, want [%s]", mockFeatures.deleteByProjectIDs, projectID)
	}
	if len(mockFeatures.features) != 1 {
		t.Errorf("features remaining = %d, want 1 (other project untouched)", len(mockFeatures.features))
	}
}

func TestDelete_NotFound(t *testing.T) {
	mockStore, _, mockFeatures := newMockStorage()
	handler := NewHandler(mockStore, false)

	id := uuid.New().String()
	req := httptest.NewRequest("DELETE", "/api/v1/projects/"+id, nil)
	req = withURLParam(req, "id", id)
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if len(mockFeatures.deleteByProjectIDs) != 0 {
		t.Errorf("DeleteByProject called for a missing project")
	}
}

func TestInternalError_HidesDetailInProduction(t *testing.T) {
	mockStore, mockRepo, _ := newMockStorage()
	mockRepo.listError = context.DeadlineExceeded
	handler := NewHandler(mockStore, false)

	req := httptest.NewRequest("GET", "/api/v1/projects", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if strings.Contains(rec.Body.String(), "deadline") {
		t.Errorf("production error response leaked detail: %s", rec.Body.String())
	}
}

func TestInternalError_SurfacesDetailInDevelopment(t *testing.T) {
	mockStore, mockRepo, _ := newMockStorage()
	mockRepo.listError = context.DeadlineExceeded
	handler := NewHandler(mockStore, true)

	req := httptest.NewRequest("GET", "/api/v1/projects", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if !strings.Contains(rec.Body.String(), "deadline") {
		t.Errorf("development error response missing detail: %s", rec.Body.String())
	}
}
