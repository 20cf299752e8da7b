package layers

import (
	"strings"

	"github.com/webstudio-labs/studio-backend/internal/studio/domain"
)

// Builder derives layer forests from a document. A nil Registry falls back to
// the built-in icon table.
type Builder struct {
	Registry Registry
}

// Build walks the document depth-first from the root children and produces an
// ordered forest of LayerItems, one per reachable component. Dangling child
// references are dropped silently.
func (b *Builder) Build(doc *domain.Document, selectedID string, expanded map[string]bool) []*domain.LayerItem {
	if doc == nil {
		return nil
	}
	seen := make(map[string]bool)
	return b.buildLevel(doc, doc.Root.Children, "", 0, selectedID, expanded, seen)
}

func (b *Builder) buildLevel(doc *domain.Document, ids []string, parentID string, depth int, selectedID string, expanded map[string]bool, seen map[string]bool) []*domain.LayerItem {
	items := make([]*domain.LayerItem, 0, len(ids))
	for _, id := range ids {
		c, ok := doc.Components[id]
		if !ok || c == nil || seen[id] {
			continue
		}
		seen[id] = true

		item := &domain.LayerItem{
			ID:         id,
			Type:       c.Type,
			Label:      ComponentLabel(c),
			Icon:       ComponentIcon(c.Type, b.Registry),
			IsLocked:   c.Locked,
			IsHidden:   c.Hidden,
			IsSelected: id == selectedID,
			IsExpanded: expanded[id],
			Depth:      depth,
			ParentID:   parentID,
		}
		item.Children = b.buildLevel(doc, c.Children, id, depth+1, selectedID, expanded, seen)
		item.HasChildren = len(item.Children) > 0
		items = append(items, item)
	}
	return items
}

// Flatten produces the depth-first sequence of visible rows for a virtualized
// list: a collapsed item contributes only its own row, its subtree is skipped.
// Document order is preserved exactly.
func Flatten(forest []*domain.LayerItem, expanded map[string]bool) []*domain.LayerItem {
	var rows []*domain.LayerItem

	var walk func(items []*domain.LayerItem)
	walk = func(items []*domain.LayerItem) {
		for _, item := range items {
			rows = append(rows, item)
			if item.HasChildren && expanded[item.ID] {
				walk(item.Children)
			}
		}
	}
	walk(forest)

	return rows
}

// Filter returns a new forest containing only items whose type or label
// matches the query (case-insensitive substring), or that have at least one
// matching descendant. Every surviving item is expanded so matches are visible
// without manual expansion. A blank query returns the input unchanged. The
// source forest is never mutated.
func Filter(forest []*domain.LayerItem, query string) []*domain.LayerItem {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return forest
	}

	out := make([]*domain.LayerItem, 0, len(forest))
	for _, item := range forest {
		if kept := filterItem(item, q); kept != nil {
			out = append(out, kept)
		}
	}
	return out
}

func filterItem(item *domain.LayerItem, q string) *domain.LayerItem {
	children := make([]*domain.LayerItem, 0, len(item.Children))
	for _, child := range item.Children {
		if kept := filterItem(child, q); kept != nil {
			children = append(children, kept)
		}
	}

	matches := strings.Contains(strings.ToLower(item.Type), q) ||
		strings.Contains(strings.ToLower(item.Label), q)
	if !matches && len(children) == 0 {
		return nil
	}

	kept := *item
	kept.Children = children
	kept.HasChildren = len(children) > 0
	kept.IsExpanded = true
	return &kept
}
