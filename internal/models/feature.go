package models

import (
	"time"

	"github.com/google/uuid"
)

// MaxFeatureImages caps the number of image URLs attached to one feature.
const MaxFeatureImages = 10

// Feature is a node in a project's feature hierarchy. ParentID is empty for
// root features. The parent chain must stay acyclic; that is enforced at
// update time, not by the schema.
type Feature struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description,omitempty"`
	ProjectID        string    `json:"project_id"`
	ParentID         string    `json:"parent_id,omitempty"`
	Images           []string  `json:"images"`
	Order            int       `json:"order"`
	HasAccounting    bool      `json:"has_accounting"`
	IsAccountingDone bool      `json:"is_accounting_done"`
	IsCompleted      bool      `json:"is_completed"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// NewFeature creates a Feature with a fresh ID and initialized timestamps.
func NewFeature(projectID, title string) *Feature {
	now := time.Now()
	return &Feature{
		ID:        uuid.New().String(),
		Title:     title,
		ProjectID: projectID,
		Images:    []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
