package tree

import (
	"context"

	"github.com/good-yellow-bee/feattrack/internal/models"
)

// ParentLookup resolves a feature by id. It returns (nil, nil) when the id
// does not exist, matching the repository convention.
type ParentLookup func(ctx context.Context, id string) (*models.Feature, error)

// WouldCreateCycle reports whether re-parenting featureID under parentID
// would make the feature its own ancestor. An empty parentID (make root) is
// always safe. A parentID that does not resolve returns false; the update
// will fail elsewhere as not found.
//
// The walk tracks visited ids so a pre-existing corrupted chain that loops
// without involving featureID terminates instead of spinning, and is not
// falsely reported as a cycle.
func WouldCreateCycle(ctx context.Context, lookup ParentLookup, featureID, parentID string) (bool, error) {
	if parentID == "" {
		return false, nil
	}
	if parentID == featureID {
		return true, nil
	}

	proposed, err := lookup(ctx, parentID)
	if err != nil {
		return false, err
	}
	if proposed == nil {
		return false, nil
	}

	visited := make(map[string]struct{})
	current := proposed.ParentID
	for current != "" {
		if current == featureID {
			return true, nil
		}
		if _, seen := visited[current]; seen {
			break
		}
		visited[current] = struct{}{}

		parent, err := lookup(ctx, current)
		if err != nil {
			return false, err
		}
		if parent == nil {
			break
		}
		current = parent.ParentID
	}
	return false, nil
}
