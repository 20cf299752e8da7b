package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Component is one node in a page's component tree.
type Component struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Props    map[string]any `json:"props,omitempty"`
	Children []string       `json:"children"`
	ParentID string         `json:"parentId,omitempty"` // empty when attached directly under root
	Locked   bool           `json:"locked,omitempty"`
	Hidden   bool           `json:"hidden,omitempty"`
}

// RootComponent is the synthetic root holding the ordered top-level children ids.
type RootComponent struct {
	Children []string `json:"children"`
}

// Document is the full page state: a synthetic root plus a flat id-to-component map.
// Tree order comes from the Children slices, never from map iteration order.
type Document struct {
	Root       RootComponent         `json:"root"`
	Components map[string]*Component `json:"components"`
}

// Clone returns a deep, independent copy of the document via a JSON round trip.
// Props must be JSON-shaped; an unsupported value fails loudly instead of being
// silently dropped.
func (d *Document) Clone() (*Document, error) {
	if d == nil {
		return nil, fmt.Errorf("cannot clone nil document")
	}

	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}

	var out Document
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}
	if out.Components == nil {
		out.Components = make(map[string]*Component)
	}

	return &out, nil
}

// ActionKind tags a recorded editor action.
type ActionKind string

const (
	ActionComponentAdded      ActionKind = "component.added"
	ActionComponentDeleted    ActionKind = "component.deleted"
	ActionComponentMoved      ActionKind = "component.moved"
	ActionComponentEdited     ActionKind = "component.edited"
	ActionComponentDuplicated ActionKind = "component.duplicated"
	ActionComponentLocked     ActionKind = "component.locked"
	ActionComponentUnlocked   ActionKind = "component.unlocked"
	ActionComponentHidden     ActionKind = "component.hidden"
	ActionComponentShown      ActionKind = "component.shown"
	ActionPageLoaded          ActionKind = "page.loaded"
	ActionPageGenerated       ActionKind = "page.generated"
	ActionSnapshotRestored    ActionKind = "snapshot.restored"
	ActionBulk                ActionKind = "bulk"
)

// componentVerbs are the phrases for component-scoped actions. The verb is
// combined with the component type when one is known.
var componentVerbs = map[ActionKind]string{
	ActionComponentAdded:      "Added",
	ActionComponentDeleted:    "Deleted",
	ActionComponentMoved:      "Moved",
	ActionComponentEdited:     "Edited",
	ActionComponentDuplicated: "Duplicated",
	ActionComponentLocked:     "Locked",
	ActionComponentUnlocked:   "Unlocked",
	ActionComponentHidden:     "Hid",
	ActionComponentShown:      "Showed",
}

// Describe builds the history-panel description for an action. A non-empty
// custom description always wins; unrecognized actions fall back to "Changed page".
func Describe(action ActionKind, componentType, custom string) string {
	if custom != "" {
		return custom
	}

	switch action {
	case ActionPageLoaded:
		return "Loaded page"
	case ActionPageGenerated:
		return "Generated page"
	case ActionSnapshotRestored:
		return "Restored snapshot"
	case ActionBulk:
		return "Applied bulk action"
	}

	verb, ok := componentVerbs[action]
	if !ok {
		return "Changed page"
	}
	if componentType == "" {
		return verb + " component"
	}
	return verb + " " + componentType
}

// HistoryEntry is one recorded full-document checkpoint. Entries are never
// mutated after creation.
type HistoryEntry struct {
	ID            string     `json:"id"`
	Timestamp     time.Time  `json:"timestamp"`
	Action        ActionKind `json:"action"`
	ComponentID   string     `json:"componentId,omitempty"`
	ComponentType string     `json:"componentType,omitempty"`
	Description   string     `json:"description"`
	Data          *Document  `json:"data"`
}

// Snapshot is a named, durable, user-initiated checkpoint independent of the
// automatic history log.
type Snapshot struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	Data        *Document `json:"data"`
	Thumbnail   string    `json:"thumbnail,omitempty"`
	PageID      string    `json:"pageId"`
	SiteID      string    `json:"siteId"`
}

// LayerItem is a derived, read-only view node for the layers panel. It is
// recomputed on demand and never persisted.
type LayerItem struct {
	ID          string       `json:"id"`
	Type        string       `json:"type"`
	Label       string       `json:"label"`
	Icon        string       `json:"icon"`
	Children    []*LayerItem `json:"children"`
	IsLocked    bool         `json:"isLocked"`
	IsHidden    bool         `json:"isHidden"`
	IsSelected  bool         `json:"isSelected"`
	IsExpanded  bool         `json:"isExpanded"`
	Depth       int          `json:"depth"`
	ParentID    string       `json:"parentId,omitempty"`
	HasChildren bool         `json:"hasChildren"`
}

// ComponentRef identifies a component that appeared or disappeared between
// two documents.
type ComponentRef struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// PropChange records both sides of a changed prop key.
type PropChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// ModifiedComponent is a component present in both documents with at least one
// changed prop key.
type ModifiedComponent struct {
	ID      string                `json:"id"`
	Type    string                `json:"type"`
	Changes map[string]PropChange `json:"changes"`
}

// SnapshotDiff is a props-and-membership comparison between two documents.
// Tree position and children ordering are intentionally ignored.
type SnapshotDiff struct {
	Added    []ComponentRef      `json:"componentsAdded"`
	Removed  []ComponentRef      `json:"componentsRemoved"`
	Modified []ModifiedComponent `json:"componentsModified"`
	Summary  string              `json:"summary"`
}
