// Package document provides read-only traversal over a page's component tree.
// All functions tolerate dangling child references: an id listed in a Children
// slice but missing from the component map is skipped, so a partially corrupt
// document still yields its healthy subtree.
package document

import "github.com/webstudio-labs/studio-backend/internal/studio/domain"

// SiblingIDs returns the ordered ids sharing a parent with the given component,
// including the component itself. Returns nil when the component is unknown or
// its parent reference dangles.
func SiblingIDs(doc *domain.Document, id string) []string {
	if doc == nil {
		return nil
	}
	c, ok := doc.Components[id]
	if !ok || c == nil {
		return nil
	}

	if c.ParentID == "" {
		return doc.Root.Children
	}

	parent, ok := doc.Components[c.ParentID]
	if !ok || parent == nil {
		return nil
	}
	return parent.Children
}

// IndexAmongSiblings returns the component's position within its parent's
// Children slice, or -1 when the component or its parent is unknown.
func IndexAmongSiblings(doc *domain.Document, id string) int {
	for i, sibling := range SiblingIDs(doc, id) {
		if sibling == id {
			return i
		}
	}
	return -1
}

// PreorderIDs returns the depth-first preorder list of every component id
// reachable from the root. Ids present in the component map but unreachable
// from the root are treated as deleted and do not appear.
func PreorderIDs(doc *domain.Document) []string {
	if doc == nil {
		return nil
	}

	var out []string
	seen := make(map[string]bool)

	var walk func(ids []string)
	walk = func(ids []string) {
		for _, id := range ids {
			c, ok := doc.Components[id]
			if !ok || c == nil || seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, id)
			walk(c.Children)
		}
	}
	walk(doc.Root.Children)

	return out
}
