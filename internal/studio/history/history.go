// Package history implements the bounded, linear undo log for one editing
// session. Every recorded action stores a full deep copy of the document, so
// jumping to any surviving entry is always coherent regardless of interleaved
// undos, redos, and direct jumps.
package history

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/webstudio-labs/studio-backend/internal/studio/domain"
)

// DefaultMaxEntries is the history cap; the oldest entries are dropped
// silently once the log grows past it.
const DefaultMaxEntries = 50

// Log records an ordered sequence of full-document checkpoints, oldest first.
// It is not safe for concurrent use: each open document owns its own Log.
type Log struct {
	entries    []*domain.HistoryEntry
	currentIdx int
	maxEntries int
}

// New creates an empty Log. A non-positive maxEntries selects
// DefaultMaxEntries.
func New(maxEntries int) *Log {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Log{
		entries:    make([]*domain.HistoryEntry, 0, maxEntries),
		currentIdx: -1,
		maxEntries: maxEntries,
	}
}

// RecordAction appends a new checkpoint. Any entries after the current
// position are discarded first (the redo branch is lost), then the log is
// truncated from the front if it exceeds the cap. The stored document is a
// deep copy; later mutations of doc do not affect the entry.
func (l *Log) RecordAction(action domain.ActionKind, doc *domain.Document, componentID, componentType, description string) (*domain.HistoryEntry, error) {
	data, err := doc.Clone()
	if err != nil {
		return nil, fmt.Errorf("record action: %w", err)
	}

	entry := &domain.HistoryEntry{
		ID:            uuid.New().String(),
		Timestamp:     time.Now(),
		Action:        action,
		ComponentID:   componentID,
		ComponentType: componentType,
		Description:   domain.Describe(action, componentType, description),
		Data:          data,
	}

	l.entries = append(l.entries[:l.currentIdx+1], entry)
	if over := len(l.entries) - l.maxEntries; over > 0 {
		l.entries = l.entries[over:]
	}
	l.currentIdx = len(l.entries) - 1

	return entry, nil
}

// JumpToEntry moves the cursor to the entry with the given id, forward or
// backward, and returns a deep copy of its document. The cursor is unchanged
// when the id is unknown.
func (l *Log) JumpToEntry(id string) (*domain.Document, error) {
	for i, entry := range l.entries {
		if entry.ID == id {
			l.currentIdx = i
			return entry.Data.Clone()
		}
	}
	return nil, domain.ErrEntryNotFound
}

// MarkUndo moves the cursor one step back and reports whether it moved.
// Reading the restored document is the caller's job, via Current.
func (l *Log) MarkUndo() bool {
	if l.currentIdx <= 0 {
		return false
	}
	l.currentIdx--
	return true
}

// MarkRedo moves the cursor one step forward and reports whether it moved.
func (l *Log) MarkRedo() bool {
	if l.currentIdx >= len(l.entries)-1 {
		return false
	}
	l.currentIdx++
	return true
}

// UndoDescription returns the description of the entry that would become
// current after an undo, or false at the boundary.
func (l *Log) UndoDescription() (string, bool) {
	if l.currentIdx <= 0 {
		return "", false
	}
	return l.entries[l.currentIdx-1].Description, true
}

// RedoDescription returns the description of the entry that would become
// current after a redo, or false at the boundary.
func (l *Log) RedoDescription() (string, bool) {
	if l.currentIdx >= len(l.entries)-1 {
		return "", false
	}
	return l.entries[l.currentIdx+1].Description, true
}

// Current returns the entry under the cursor.
func (l *Log) Current() (*domain.HistoryEntry, bool) {
	if l.currentIdx < 0 || l.currentIdx >= len(l.entries) {
		return nil, false
	}
	return l.entries[l.currentIdx], true
}

// Entries returns the log oldest-first. The slice is a copy; the entries
// themselves are immutable by contract.
func (l *Log) Entries() []*domain.HistoryEntry {
	out := make([]*domain.HistoryEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// CurrentIndex returns the cursor position, -1 when the log is empty.
func (l *Log) CurrentIndex() int {
	return l.currentIdx
}

// Len returns the number of recorded entries.
func (l *Log) Len() int {
	return len(l.entries)
}
