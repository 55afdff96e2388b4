// internal/app/system/hierarchy/search.go
package hierarchy

import (
	"strings"

	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// matches reports whether a folder's name or path contains the folded
// query. The query must already be folded by the caller.
func matches(n *Node, foldedQuery string) bool {
	return strings.Contains(text.Fold(n.Folder.Name), foldedQuery) ||
		strings.Contains(text.Fold(n.Folder.Path), foldedQuery)
}

// Filter prunes a forest to nodes that match the query or contain a
// matching descendant. Returned nodes carry their filtered children,
// never the originals. An empty or whitespace-only query disables
// filtering and returns the input unchanged.
func Filter(nodes []*Node, query string) []*Node {
	query = strings.TrimSpace(query)
	if query == "" {
		return nodes
	}
	return filterFolded(nodes, text.Fold(query))
}

func filterFolded(nodes []*Node, foldedQuery string) []*Node {
	var kept []*Node
	for _, n := range nodes {
		children := filterFolded(n.Children, foldedQuery)
		if len(children) == 0 && !matches(n, foldedQuery) {
			continue
		}
		kept = append(kept, &Node{Folder: n.Folder, Children: children})
	}
	return kept
}

// ExpandForQuery returns the folder ids that must be force-expanded so
// every match is visible: for each node matching the query, all
// ancestors on the path from the root down to the node's parent.
//
// This is an independent pass over the unfiltered forest rather than a
// byproduct of Filter: what is shown and what is expanded are separate
// concerns, and search expansion is layered additively over the
// user's manual expansion state. An empty query yields an empty set.
func ExpandForQuery(nodes []*Node, query string) map[primitive.ObjectID]struct{} {
	expand := make(map[primitive.ObjectID]struct{})
	query = strings.TrimSpace(query)
	if query == "" {
		return expand
	}
	folded := text.Fold(query)

	var walk func(n *Node, ancestors []primitive.ObjectID) bool
	walk = func(n *Node, ancestors []primitive.ObjectID) bool {
		hit := matches(n, folded)
		path := append(ancestors, n.Folder.ID)
		childHit := false
		for _, c := range n.Children {
			if walk(c, path) {
				childHit = true
			}
		}
		if hit || childHit {
			for _, id := range ancestors {
				expand[id] = struct{}{}
			}
		}
		return hit || childHit
	}
	for _, n := range nodes {
		walk(n, nil)
	}
	return expand
}
