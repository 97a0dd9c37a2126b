package tree

import (
	"testing"
	"time"

	"github.com/good-yellow-bee/feattrack/internal/models"
)

func feat(id, parentID, title string) *models.Feature {
	return &models.Feature{
		ID:        id,
		Title:     title,
		ProjectID: "proj-1",
		ParentID:  parentID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func titles(nodes []*Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Title
	}
	return out
}

func TestAssemble(t *testing.T) {
	flat := []*models.Feature{
		feat("a", "", "A"),
		feat("b", "a", "B"),
		feat("c", "a", "C"),
		feat("d", "b", "D"),
		feat("e", "", "E"),
	}

	roots := Assemble(flat)

	if len(roots) != 2 {
		t.Fatalf("roots = %d, want 2", len(roots))
	}
	if roots[0].ID != "a" || roots[1].ID != "e" {
		t.Errorf("root ids = %s, %s; want a, e", roots[0].ID, roots[1].ID)
	}
	if len(roots[0].Children) != 2 {
		t.Fatalf("children of a = %d, want 2", len(roots[0].Children))
	}
	if roots[0].Children[0].ID != "b" || roots[0].Children[1].ID != "c" {
		t.Errorf("children of a = %v, want [b c]", titles(roots[0].Children))
	}
	if len(roots[0].Children[0].Children) != 1 || roots[0].Children[0].Children[0].ID != "d" {
		t.Errorf("grandchild of a missing, got %v", titles(roots[0].Children[0].Children))
	}
}

func TestAssembleDanglingParentBecomesRoot(t *testing.T) {
	flat := []*models.Feature{
		feat("a", "", "A"),
		feat("b", "missing", "B"),
	}

	roots := Assemble(flat)

	if len(roots) != 2 {
		t.Fatalf("roots = %d, want 2 (dangling parent must not drop the node)", len(roots))
	}
}

func TestAssembleEmpty(t *testing.T) {
	if roots := Assemble(nil); len(roots) != 0 {
		t.Errorf("roots = %d, want 0", len(roots))
	}
}

func TestAssembleIdempotent(t *testing.T) {
	flat := []*models.Feature{
		feat("a", "", "A"),
		feat("b", "a", "B"),
		feat("c", "b", "C"),
	}

	first := Assemble(flat)
	second := Assemble(flat)

	var compare func(x, y []*Node) bool
	compare = func(x, y []*Node) bool {
		if len(x) != len(y) {
			return false
		}
		for i := range x {
			if x[i].ID != y[i].ID || !compare(x[i].Children, y[i].Children) {
				return false
			}
		}
		return true
	}
	if !compare(first, second) {
		t.Error("assembling the same flat list twice produced different forests")
	}
}

func TestFlatten(t *testing.T) {
	roots := Assemble([]*models.Feature{
		feat("a", "", "A"),
		feat("b", "a", "B"),
		feat("c", "b", "C"),
		feat("d", "", "D"),
	})

	flat := Flatten(roots)

	want := []string{"A", "B", "C", "D"}
	got := titles(flat)
	if len(got) != len(want) {
		t.Fatalf("flatten = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("flatten = %v, want %v (depth-first, parents before children)", got, want)
		}
	}
}

func TestFilterByStatusRetainsAncestorsOfMatches(t *testing.T) {
	// Root A is not completed, child B is. Filtering by completed must keep both.
	a := feat("a", "", "A")
	b := feat("b", "a", "B")
	b.IsCompleted = true
	roots := Assemble([]*models.Feature{a, b})

	filtered := FilterByStatus(roots, StatusCompleted)

	if len(filtered) != 1 || filtered[0].ID != "a" {
		t.Fatalf("filtered roots = %v, want [A]", titles(filtered))
	}
	if len(filtered[0].Children) != 1 || filtered[0].Children[0].ID != "b" {
		t.Fatalf("filtered children = %v, want [B]", titles(filtered[0].Children))
	}
}

func TestFilterByStatusDropsNonMatchingSubtrees(t *testing.T) {
	a := feat("a", "", "A")
	b := feat("b", "a", "B")
	c := feat("c", "", "C")
	c.IsCompleted = true
	roots := Assemble([]*models.Feature{a, b, c})

	filtered := FilterByStatus(roots, StatusCompleted)

	if len(filtered) != 1 || filtered[0].ID != "c" {
		t.Fatalf("filtered roots = %v, want [C]", titles(filtered))
	}
}

func TestFilterByStatusAllIsIdentity(t *testing.T) {
	roots := Assemble([]*models.Feature{feat("a", "", "A"), feat("b", "a", "B")})
	if got := FilterByStatus(roots, StatusAll); len(got) != 1 {
		t.Errorf("filter all changed the forest: %v", titles(got))
	}
}

func TestFilterByStatusVariants(t *testing.T) {
	withAcct := feat("a", "", "Acct")
	withAcct.HasAccounting = true
	done := feat("b", "", "Done")
	done.HasAccounting = true
	done.IsAccountingDone = true
	plain := feat("c", "", "Plain")
	roots := Assemble([]*models.Feature{withAcct, done, plain})

	tests := []struct {
		status Status
		want   []string
	}{
		{StatusWithAccounting, []string{"Acct", "Done"}},
		{StatusWithoutAccounting, []string{"Plain"}},
		{StatusAccountingDone, []string{"Done"}},
		{StatusNotCompleted, []string{"Acct", "Done", "Plain"}},
		{StatusCompleted, nil},
	}
	for _, tt := range tests {
		got := titles(FilterByStatus(roots, tt.status))
		if len(got) != len(tt.want) {
			t.Errorf("%s: got %v, want %v", tt.status, got, tt.want)
			continue
		}
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Errorf("%s: got %v, want %v", tt.status, got, tt.want)
				break
			}
		}
	}
}

func TestParseStatus(t *testing.T) {
	for _, valid := range []string{"", "all", "completed", "not-completed", "with-accounting", "without-accounting", "accounting-done"} {
		if _, err := ParseStatus(valid); err != nil {
			t.Errorf("ParseStatus(%q) = %v, want nil", valid, err)
		}
	}
	if _, err := ParseStatus("bogus"); err == nil {
		t.Error("ParseStatus(bogus) = nil, want error")
	}
}

func TestSearchFlattensAndMatchesCaseInsensitively(t *testing.T) {
	a := feat("a", "", "Login page")
	b := feat("b", "a", "OAuth flow")
	b.Description = "Google and GitHub login"
	c := feat("c", "", "Billing")
	roots := Assemble([]*models.Feature{a, b, c})

	got := Search(roots, "LOGIN")

	// Both title and description matches, in depth-first order, flat.
	want := []string{"Login page", "OAuth flow"}
	if len(got) != len(want) {
		t.Fatalf("search = %v, want %v", titles(got), want)
	}
	for i := range want {
		if got[i].Title != want[i] {
			t.Fatalf("search = %v, want %v", titles(got), want)
		}
	}
	for _, n := range got {
		if len(n.Children) > 0 {
			t.Error("search results must be flat")
		}
	}
}

func TestSearchNoMatches(t *testing.T) {
	roots := Assemble([]*models.Feature{feat("a", "", "A")})
	if got := Search(roots, "zzz"); len(got) != 0 {
		t.Errorf("search = %v, want empty", titles(got))
	}
}
