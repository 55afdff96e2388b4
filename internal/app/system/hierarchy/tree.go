// Package hierarchy holds the pure folder-tree algorithms: building a
// nested tree from the flat folder list, resolving descendant sets,
// search filtering with ancestor auto-expansion, and drag/drop
// payload interpretation. Nothing in this package reads or writes
// navigation or presentation state.
package hierarchy

import (
	"github.com/dalemusser/dealdocs/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Node is one folder with its materialized children. Trees are built
// fresh from each folder-list snapshot and never mutated in place.
type Node struct {
	Folder   models.Folder
	Children []*Node
}

// Build converts a flat folder list into a forest keyed by parent id.
// Sibling order within a parent is preserved as given; callers sort
// the input. Runs in O(n): one grouping pass plus one materialization
// per folder.
func Build(folders []models.Folder) []*Node {
	byParent := make(map[primitive.ObjectID][]models.Folder)
	var roots []models.Folder
	for _, f := range folders {
		if f.IsRoot() {
			roots = append(roots, f)
			continue
		}
		byParent[*f.ParentID] = append(byParent[*f.ParentID], f)
	}

	var expand func(f models.Folder) *Node
	expand = func(f models.Folder) *Node {
		children := byParent[f.ID]
		n := &Node{Folder: f, Children: make([]*Node, 0, len(children))}
		for _, c := range children {
			n.Children = append(n.Children, expand(c))
		}
		n.Folder.SubfolderCount = int64(len(n.Children))
		return n
	}

	forest := make([]*Node, 0, len(roots))
	for _, r := range roots {
		forest = append(forest, expand(r))
	}
	return forest
}

// Flatten returns the folders of a forest in pre-order. Used by the
// tree round-trip tests and by callers that need the display order of
// a rendered tree.
func Flatten(nodes []*Node) []models.Folder {
	var out []models.Folder
	var walk func(n *Node)
	walk = func(n *Node) {
		out = append(out, n.Folder)
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return out
}

// DescendantIDs returns the ids of folderID and every folder reachable
// below it in the given flat list. A folder with no children yields a
// singleton set. Used to scope "documents in this folder and all its
// subfolders".
func DescendantIDs(folderID primitive.ObjectID, folders []models.Folder) map[primitive.ObjectID]struct{} {
	children := make(map[primitive.ObjectID][]primitive.ObjectID)
	for _, f := range folders {
		if f.ParentID != nil {
			children[*f.ParentID] = append(children[*f.ParentID], f.ID)
		}
	}

	ids := map[primitive.ObjectID]struct{}{folderID: {}}
	stack := []primitive.ObjectID{folderID}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, c := range children[cur] {
			if _, seen := ids[c]; seen {
				continue
			}
			ids[c] = struct{}{}
			stack = append(stack, c)
		}
	}
	return ids
}
