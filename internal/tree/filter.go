package tree

import (
	"fmt"
	"strings"

	"github.com/good-yellow-bee/feattrack/internal/models"
)

// Status selects features by completion or accounting state.
type Status string

const (
	StatusAll               Status = "all"
	StatusCompleted         Status = "completed"
	StatusNotCompleted      Status = "not-completed"
	StatusWithAccounting    Status = "with-accounting"
	StatusWithoutAccounting Status = "without-accounting"
	StatusAccountingDone    Status = "accounting-done"
)

// ParseStatus validates a status filter string. Empty means all.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case "", StatusAll:
		return StatusAll, nil
	case StatusCompleted, StatusNotCompleted, StatusWithAccounting,
		StatusWithoutAccounting, StatusAccountingDone:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown status filter: %q", s)
}

// Matches reports whether a single feature satisfies the filter.
func (s Status) Matches(f *models.Feature) bool {
	switch s {
	case StatusCompleted:
		return f.IsCompleted
	case StatusNotCompleted:
		return !f.IsCompleted
	case StatusWithAccounting:
		return f.HasAccounting
	case StatusWithoutAccounting:
		return !f.HasAccounting
	case StatusAccountingDone:
		return f.IsAccountingDone
	default:
		return true
	}
}

// FilterByStatus prunes the forest to nodes that match the filter or have at
// least one retained descendant. Ancestors of matches are never dropped, so
// matched nodes stay reachable in the displayed tree.
func FilterByStatus(nodes []*Node, status Status) []*Node {
	if status == StatusAll || status == "" {
		return nodes
	}

	out := []*Node{}
	for _, n := range nodes {
		kept := FilterByStatus(n.Children, status)
		if status.Matches(n.Feature) || len(kept) > 0 {
			out = append(out, &Node{Feature: n.Feature, Children: kept})
		}
	}
	return out
}

// Search flattens the forest depth-first and keeps nodes whose title or
// description contains the query, case-insensitively. Search results are a
// flat list; hierarchy is deliberately discarded.
func Search(nodes []*Node, query string) []*Node {
	q := strings.ToLower(query)
	out := []*Node{}
	for _, n := range Flatten(nodes) {
		if strings.Contains(strings.ToLower(n.Title), q) ||
			strings.Contains(strings.ToLower(n.Description), q) {
			out = append(out, &Node{Feature: n.Feature, Children: []*Node{}})
		}
	}
	return out
}
