// Package storage provides database storage interfaces and implementations.
package storage

import (
	"context"

	"github.com/good-yellow-bee/feattrack/internal/models"
)

// Storage is the main interface for database operations.
type Storage interface {
	// Open initializes the database connection.
	Open() error
	// Close closes the database connection.
	Close() error
	// Migrate runs database migrations.
	Migrate() error

	// Repository accessors
	Projects() ProjectRepository
	Features() FeatureRepository
}

// ProjectRepository defines operations for project management.
// Getters return (nil, nil) when the id or name does not resolve.
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, id string) (*models.Project, error)
	GetByName(ctx context.Context, name string) (*models.Project, error)
	Update(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*models.Project, error)
}

// FeatureRepository defines operations for the feature hierarchy.
type FeatureRepository interface {
	Create(ctx context.Context, feature *models.Feature) error
	GetByID(ctx context.Context, id string) (*models.Feature, error)
	Update(ctx context.Context, feature *models.Feature) error
	// ListByProject returns a project's features sorted by ("order", created_at).
	ListByProject(ctx context.Context, projectID string) ([]*models.Feature, error)
	// ListByParent returns direct children sorted by ("order", created_at).
	ListByParent(ctx context.Context, parentID string) ([]*models.Feature, error)
	// UpdateOrder sets the sibling order of a single feature.
	UpdateOrder(ctx context.Context, id string, order int) error
	// DeleteSubtree deletes a feature and every descendant, children before
	// parents, and returns the number of deleted features.
	DeleteSubtree(ctx context.Context, id string) (int, error)
	// DeleteByProject bulk-deletes all features owned by a project and
	// returns the number of deleted features.
	DeleteByProject(ctx context.Context, projectID string) (int, error)
}
