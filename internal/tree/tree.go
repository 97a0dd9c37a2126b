// Package tree builds and queries the per-project feature hierarchy.
//
// Features are stored flat, each row carrying an optional parent id. This
// package reconstructs the forest in memory, filters it by status, runs
// searches over it, and guards re-parenting against cycles.
package tree

import "github.com/good-yellow-bee/feattrack/internal/models"

// Node is a feature together with its ordered children.
type Node struct {
	*models.Feature
	Children []*Node `json:"children"`
}

// Assemble reconstructs the forest from a flat feature list. The input is
// expected pre-sorted by (order, created_at); children and roots keep input
// order. A feature whose parent id does not resolve within the list is
// treated as a root rather than dropped.
func Assemble(features []*models.Feature) []*Node {
	byID := make(map[string]*Node, len(features))
	for _, f := range features {
		byID[f.ID] = &Node{Feature: f, Children: []*Node{}}
	}

	roots := []*Node{}
	for _, f := range features {
		node := byID[f.ID]
		if parent, ok := byID[f.ParentID]; ok && f.ParentID != "" {
			parent.Children = append(parent.Children, node)
		} else {
			roots = append(roots, node)
		}
	}
	return roots
}

// Flatten returns the forest as a single depth-first sequence, parents
// before children.
func Flatten(nodes []*Node) []*Node {
	var out []*Node
	for _, n := range nodes {
		out = append(out, n)
		out = append(out, Flatten(n.Children)...)
	}
	return out
}
