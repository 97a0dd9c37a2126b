package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/good-yellow-bee/feattrack/internal/models"
)

// featureColumns is the canonical SELECT column list for features.
const featureColumns = `id, title, description, project_id, parent_id, images, "order",
		has_accounting, is_accounting_done, is_completed, created_at, updated_at`

type sqliteFeatureRepo struct {
	db *sql.DB
}

func (r *sqliteFeatureRepo) Create(ctx context.Context, feature *models.Feature) error {
	images, err := encodeImages(feature.Images)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO features (` + featureColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		feature.ID, feature.Title, feature.Description, feature.ProjectID,
		nullableID(feature.ParentID), images, feature.Order,
		feature.HasAccounting, feature.IsAccountingDone, feature.IsCompleted,
		formatTime(feature.CreatedAt), formatTime(feature.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert feature: %w", err)
	}
	return nil
}

func (r *sqliteFeatureRepo) GetByID(ctx context.Context, id string) (*models.Feature, error) {
	query := `SELECT ` + featureColumns + ` FROM features WHERE id = ?`
	feature, err := scanFeature(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		//nolint:nilnil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get feature by id: %w", err)
	}
	return feature, nil
}

func (r *sqliteFeatureRepo) Update(ctx context.Context, feature *models.Feature) error {
	images, err := encodeImages(feature.Images)
	if err != nil {
		return err
	}
	query := `
		UPDATE features
		SET title = ?, description = ?, parent_id = ?, images = ?, "order" = ?,
			has_accounting = ?, is_accounting_done = ?, is_completed = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		feature.Title, feature.Description, nullableID(feature.ParentID),
		images, feature.Order,
		feature.HasAccounting, feature.IsAccountingDone, feature.IsCompleted,
		formatTime(feature.UpdatedAt),
		feature.ID,
	)
	if err != nil {
		return fmt.Errorf("update feature: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("feature not found: %s", feature.ID)
	}
	return nil
}

func (r *sqliteFeatureRepo) ListByProject(ctx context.Context, projectID string) ([]*models.Feature, error) {
	query := `SELECT ` + featureColumns + ` FROM features
		WHERE project_id = ? ORDER BY "order", created_at`
	return r.list(ctx, query, projectID)
}

func (r *sqliteFeatureRepo) ListByParent(ctx context.Context, parentID string) ([]*models.Feature, error) {
	query := `SELECT ` + featureColumns + ` FROM features
		WHERE parent_id = ? ORDER BY "order", created_at`
	return r.list(ctx, query, parentID)
}

func (r *sqliteFeatureRepo) UpdateOrder(ctx context.Context, id string, order int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE features SET "order" = ? WHERE id = ?`, order, id)
	if err != nil {
		return fmt.Errorf("update feature order: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("feature not found: %s", id)
	}
	return nil
}

// DeleteSubtree deletes a feature and all descendants. The subtree is
// collected with an explicit worklist (no recursion, arbitrary depth) and
// deleted leaves-first so no row ever references an already-deleted parent.
// A visited set guards against corrupted parent chains that loop.
func (r *sqliteFeatureRepo) DeleteSubtree(ctx context.Context, id string) (int, error) {
	order := []string{id}
	seen := map[string]struct{}{id: {}}

	for i := 0; i < len(order); i++ {
		children, err := r.ListByParent(ctx, order[i])
		if err != nil {
			return 0, fmt.Errorf("collect subtree of %s: %w", id, err)
		}
		for _, child := range children {
			if _, ok := seen[child.ID]; ok {
				continue
			}
			seen[child.ID] = struct{}{}
			order = append(order, child.ID)
		}
	}

	deleted := 0
	for i := len(order) - 1; i >= 0; i-- {
		if _, err := r.db.ExecContext(ctx, "DELETE FROM features WHERE id = ?", order[i]); err != nil {
			return deleted, fmt.Errorf("delete feature %s: %w", order[i], err)
		}
		deleted++
	}
	return deleted, nil
}

func (r *sqliteFeatureRepo) DeleteByProject(ctx context.Context, projectID string) (int, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM features WHERE project_id = ?", projectID)
	if err != nil {
		return 0, fmt.Errorf("delete features by project: %w", err)
	}
	rows, _ := result.RowsAffected()
	return int(rows), nil
}

func (r *sqliteFeatureRepo) list(ctx context.Context, query string, arg any) ([]*models.Feature, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list features: %w", err)
	}
	defer rows.Close()

	var features []*models.Feature
	for rows.Next() {
		feature, err := scanFeature(rows)
		if err != nil {
			return nil, fmt.Errorf("scan feature: %w", err)
		}
		features = append(features, feature)
	}
	return features, rows.Err()
}

func scanFeature(row rowScanner) (*models.Feature, error) {
	feature := &models.Feature{}
	var description, parentID sql.NullString
	var images string
	var createdAt, updatedAt string
	err := row.Scan(
		&feature.ID, &feature.Title, &description, &feature.ProjectID,
		&parentID, &images, &feature.Order,
		&feature.HasAccounting, &feature.IsAccountingDone, &feature.IsCompleted,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	feature.Description = description.String
	feature.ParentID = parentID.String
	if err := json.Unmarshal([]byte(images), &feature.Images); err != nil {
		return nil, fmt.Errorf("decode images: %w", err)
	}
	if feature.Images == nil {
		feature.Images = []string{}
	}
	if feature.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if feature.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return feature, nil
}

func encodeImages(images []string) (string, error) {
	if images == nil {
		images = []string{}
	}
	data, err := json.Marshal(images)
	if err != nil {
		return "", fmt.Errorf("encode images: %w", err)
	}
	return string(data), nil
}

// nullableID maps an empty id string to SQL NULL.
func nullableID(id string) any {
	if id == "" {
		return nil
	}
	return id
}
