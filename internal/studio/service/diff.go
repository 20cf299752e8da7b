package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/webstudio-labs/studio-backend/internal/studio/domain"
)

// DiffDocuments computes a props-and-membership diff between two documents:
// which components appeared, disappeared, or changed props. Tree position and
// children reordering are ignored; this is not a tree-edit-distance diff.
func DiffDocuments(a, b *domain.Document) *domain.SnapshotDiff {
	diff := &domain.SnapshotDiff{
		Added:    []domain.ComponentRef{},
		Removed:  []domain.ComponentRef{},
		Modified: []domain.ModifiedComponent{},
	}

	aComponents := componentMap(a)
	bComponents := componentMap(b)

	for id, c := range bComponents {
		if _, ok := aComponents[id]; !ok {
			diff.Added = append(diff.Added, domain.ComponentRef{ID: id, Type: c.Type})
		}
	}
	for id, c := range aComponents {
		if _, ok := bComponents[id]; !ok {
			diff.Removed = append(diff.Removed, domain.ComponentRef{ID: id, Type: c.Type})
		}
	}

	for id, ca := range aComponents {
		cb, ok := bComponents[id]
		if !ok {
			continue
		}
		changes := diffProps(ca.Props, cb.Props)
		if len(changes) == 0 {
			continue
		}
		diff.Modified = append(diff.Modified, domain.ModifiedComponent{
			ID:      id,
			Type:    cb.Type,
			Changes: changes,
		})
	}

	sort.Slice(diff.Added, func(i, j int) bool { return diff.Added[i].ID < diff.Added[j].ID })
	sort.Slice(diff.Removed, func(i, j int) bool { return diff.Removed[i].ID < diff.Removed[j].ID })
	sort.Slice(diff.Modified, func(i, j int) bool { return diff.Modified[i].ID < diff.Modified[j].ID })

	diff.Summary = summarize(len(diff.Added), len(diff.Removed), len(diff.Modified))
	return diff
}

func componentMap(doc *domain.Document) map[string]*domain.Component {
	if doc == nil {
		return nil
	}
	return doc.Components
}

// diffProps compares two prop maps key-by-key using value equality after
// serialization, so structurally equal nested objects count as unchanged.
// Keys present on only one side are recorded as changes too.
func diffProps(oldProps, newProps map[string]any) map[string]domain.PropChange {
	changes := make(map[string]domain.PropChange)

	keys := make(map[string]bool, len(oldProps)+len(newProps))
	for k := range oldProps {
		keys[k] = true
	}
	for k := range newProps {
		keys[k] = true
	}

	for key := range keys {
		oldVal, inOld := oldProps[key]
		newVal, inNew := newProps[key]
		if inOld && inNew && jsonEqual(oldVal, newVal) {
			continue
		}
		changes[key] = domain.PropChange{Old: oldVal, New: newVal}
	}

	return changes
}

// jsonEqual reports whether two values serialize identically. encoding/json
// sorts map keys, so structurally equal objects compare equal regardless of
// insertion order.
func jsonEqual(a, b any) bool {
	aJSON, errA := json.Marshal(a)
	bJSON, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(aJSON, bJSON)
}

func summarize(added, removed, modified int) string {
	var parts []string
	if added > 0 {
		parts = append(parts, fmt.Sprintf("%d added", added))
	}
	if removed > 0 {
		parts = append(parts, fmt.Sprintf("%d removed", removed))
	}
	if modified > 0 {
		parts = append(parts, fmt.Sprintf("%d modified", modified))
	}
	if len(parts) == 0 {
		return "No changes"
	}
	return strings.Join(parts, ", ")
}
