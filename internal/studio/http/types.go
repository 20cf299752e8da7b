package http

import (
	"time"

	"github.com/webstudio-labs/studio-backend/internal/studio/domain"
)

type CreateSessionRequest struct {
	PageID   string           `json:"page_id" binding:"required"`
	SiteID   string           `json:"site_id" binding:"required"`
	Document *domain.Document `json:"document" binding:"required"`
}

type RecordActionRequest struct {
	Action        string           `json:"action" binding:"required"`
	Document      *domain.Document `json:"document" binding:"required"`
	ComponentID   string           `json:"component_id"`
	ComponentType string           `json:"component_type"`
	Description   string           `json:"description"`
}

type JumpRequest struct {
	EntryID string `json:"entry_id" binding:"required"`
}

type SaveSnapshotRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
}

// HistoryEntryMeta is a history entry without its document payload; the
// history panel only needs the labels.
type HistoryEntryMeta struct {
	ID            string    `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	Action        string    `json:"action"`
	ComponentID   string    `json:"component_id,omitempty"`
	ComponentType string    `json:"component_type,omitempty"`
	Description   string    `json:"description"`
}

// SnapshotMeta is a snapshot without its document payload.
type SnapshotMeta struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	Thumbnail   string    `json:"thumbnail,omitempty"`
	PageID      string    `json:"page_id"`
	SiteID      string    `json:"site_id"`
}

// SessionInfo summarizes an open session for the editor chrome.
type SessionInfo struct {
	ID              string `json:"id"`
	PageID          string `json:"page_id"`
	SiteID          string `json:"site_id"`
	HistoryLength   int    `json:"history_length"`
	HistoryIndex    int    `json:"history_index"`
	UndoDescription string `json:"undo_description,omitempty"`
	RedoDescription string `json:"redo_description,omitempty"`
	CanUndo         bool   `json:"can_undo"`
	CanRedo         bool   `json:"can_redo"`
}

func entryMeta(e *domain.HistoryEntry) HistoryEntryMeta {
	return HistoryEntryMeta{
		ID:            e.ID,
		Timestamp:     e.Timestamp,
		Action:        string(e.Action),
		ComponentID:   e.ComponentID,
		ComponentType: e.ComponentType,
		Description:   e.Description,
	}
}

func snapshotMeta(s *domain.Snapshot) SnapshotMeta {
	return SnapshotMeta{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		Timestamp:   s.Timestamp,
		Thumbnail:   s.Thumbnail,
		PageID:      s.PageID,
		SiteID:      s.SiteID,
	}
}
