package hierarchy

import (
	"strings"
	"testing"

	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestFilter_EmptyQuery(t *testing.T) {
	folders, _ := fixtureForest()
	forest := Build(folders)

	for _, q := range []string{"", "   ", "\t"} {
		if got := Filter(forest, q); len(got) != len(forest) {
			t.Errorf("Filter(%q) pruned the tree, want unchanged", q)
		}
	}
}

func TestFilter_DirectMatch(t *testing.T) {
	folders, _ := fixtureForest()
	forest := Build(folders)

	got := Filter(forest, "reports")
	if len(got) != 1 {
		t.Fatalf("Filter(reports) roots = %d, want 1", len(got))
	}
	if got[0].Folder.Name != "Fund I" {
		t.Errorf("kept root = %s, want Fund I", got[0].Folder.Name)
	}
	if len(got[0].Children) != 1 || got[0].Children[0].Folder.Name != "Reports" {
		t.Error("Fund I children should be pruned to just Reports")
	}
}

func TestFilter_CaseInsensitive(t *testing.T) {
	folders, _ := fixtureForest()
	forest := Build(folders)

	if got := Filter(forest, "SIDE letters"); len(got) == 0 {
		t.Error("Filter should match case-insensitively")
	}
}

func TestFilter_DoesNotMutateOriginal(t *testing.T) {
	folders, _ := fixtureForest()
	forest := Build(folders)

	Filter(forest, "side")
	if len(forest[0].Children) != 2 {
		t.Error("Filter must not prune the original tree's children")
	}
}

// Every node a filtered tree keeps either matches the query itself or
// has a matching descendant in the original tree.
func TestFilter_Soundness(t *testing.T) {
	folders, _ := fixtureForest()
	forest := Build(folders)

	for _, q := range []string{"legal", "fund", "side", "letters", "II"} {
		folded := text.Fold(q)
		var check func(kept *Node)
		check = func(kept *Node) {
			if !subtreeMatches(kept, folded) {
				t.Errorf("Filter(%q) kept %s with no matching descendant", q, kept.Folder.Name)
			}
			for _, c := range kept.Children {
				check(c)
			}
		}
		for _, n := range Filter(forest, q) {
			check(n)
		}
	}
}

func subtreeMatches(n *Node, folded string) bool {
	if strings.Contains(text.Fold(n.Folder.Name), folded) ||
		strings.Contains(text.Fold(n.Folder.Path), folded) {
		return true
	}
	for _, c := range n.Children {
		if subtreeMatches(c, folded) {
			return true
		}
	}
	return false
}

func TestExpandForQuery(t *testing.T) {
	folders, ids := fixtureForest()
	forest := Build(folders)

	got := ExpandForQuery(forest, "side letters")

	// The match is three levels deep: both ancestors must be expanded.
	for _, key := range []string{"fund1", "legal"} {
		if _, ok := got[ids[key]]; !ok {
			t.Errorf("expansion set missing ancestor %s", key)
		}
	}
	// The matching node itself is not an ancestor.
	if _, ok := got[ids["side"]]; ok {
		t.Error("expansion set should not include the matching node")
	}
	if _, ok := got[ids["fund2"]]; ok {
		t.Error("expansion set should not include unrelated roots")
	}
}

func TestExpandForQuery_EmptyQuery(t *testing.T) {
	folders, _ := fixtureForest()
	forest := Build(folders)

	if got := ExpandForQuery(forest, "  "); len(got) != 0 {
		t.Errorf("ExpandForQuery with blank query = %d ids, want 0", len(got))
	}
}

// If the filtered tree reaches a match at depth d, the expansion set
// must contain every ancestor from the root down to the match's
// parent.
func TestExpandForQuery_Completeness(t *testing.T) {
	folders, _ := fixtureForest()
	forest := Build(folders)

	for _, q := range []string{"legal", "side", "reports", "fund"} {
		expand := ExpandForQuery(forest, q)
		folded := text.Fold(q)

		var walk func(n *Node, ancestors []primitive.ObjectID)
		walk = func(n *Node, ancestors []primitive.ObjectID) {
			if strings.Contains(text.Fold(n.Folder.Name), folded) ||
				strings.Contains(text.Fold(n.Folder.Path), folded) {
				for _, a := range ancestors {
					if _, ok := expand[a]; !ok {
						t.Errorf("query %q: ancestor %s of match %s not in expansion set",
							q, a.Hex(), n.Folder.Name)
					}
				}
			}
			for _, c := range n.Children {
				walk(c, append(ancestors, n.Folder.ID))
			}
		}
		for _, n := range forest {
			walk(n, nil)
		}
	}
}
