package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/webstudio-labs/studio-backend/internal/studio/domain"
	"github.com/webstudio-labs/studio-backend/internal/studio/history"
	"github.com/webstudio-labs/studio-backend/internal/studio/layers"
)

// EditorSession is the editing context for one open page document: the live
// document, its history log, and its snapshot service. The editing model is
// single-writer, so each session serializes its own operations with a mutex;
// sessions never share state.
type EditorSession struct {
	ID     string
	PageID string
	SiteID string

	mu        sync.Mutex
	document  *domain.Document
	history   *history.Log
	snapshots *SnapshotService
	builder   *layers.Builder
	touchedAt time.Time
}

func (s *EditorSession) touch() {
	s.touchedAt = time.Now()
}

// RecordAction accepts the document state after a completed edit and appends
// a history checkpoint for it.
func (s *EditorSession) RecordAction(action domain.ActionKind, doc *domain.Document, componentID, componentType, description string) (*domain.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	entry, err := s.history.RecordAction(action, doc, componentID, componentType, description)
	if err != nil {
		return nil, err
	}
	s.document = doc
	return entry, nil
}

// Undo steps the history cursor back and returns the restored document with
// the entry's description. ErrHistoryBoundary when there is nothing to undo.
func (s *EditorSession) Undo() (*domain.Document, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if !s.history.MarkUndo() {
		return nil, "", domain.ErrHistoryBoundary
	}
	return s.restoreCurrent()
}

// Redo steps the history cursor forward and returns the restored document
// with the entry's description. ErrHistoryBoundary when there is nothing to
// redo.
func (s *EditorSession) Redo() (*domain.Document, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if !s.history.MarkRedo() {
		return nil, "", domain.ErrHistoryBoundary
	}
	return s.restoreCurrent()
}

func (s *EditorSession) restoreCurrent() (*domain.Document, string, error) {
	entry, ok := s.history.Current()
	if !ok {
		return nil, "", domain.ErrEntryNotFound
	}
	doc, err := entry.Data.Clone()
	if err != nil {
		return nil, "", err
	}
	s.document = doc
	return doc, entry.Description, nil
}

// Jump moves the history cursor directly to an entry, forward or backward,
// and returns the restored document.
func (s *EditorSession) Jump(entryID string) (*domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	doc, err := s.history.JumpToEntry(entryID)
	if err != nil {
		return nil, err
	}
	s.document = doc
	return doc, nil
}

// HistoryEntries returns the session's history log, oldest first.
func (s *EditorSession) HistoryEntries() []*domain.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Entries()
}

// HistoryState reports the cursor position, log length, and the descriptions
// an undo or redo would land on ("" with false at the boundary).
func (s *EditorSession) HistoryState() (index, length int, undoDesc, redoDesc string, canUndo, canRedo bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index = s.history.CurrentIndex()
	length = s.history.Len()
	undoDesc, canUndo = s.history.UndoDescription()
	redoDesc, canRedo = s.history.RedoDescription()
	return
}

// Layers rebuilds the layer forest for the current document and flattens it
// into visible rows. The filtered forest is re-flattened so a search expands
// its matches.
func (s *EditorSession) Layers(query, selectedID string, expanded map[string]bool) (forest, rows []*domain.LayerItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	forest = s.builder.Build(s.document, selectedID, expanded)
	forest = layers.Filter(forest, query)
	rows = layers.Flatten(forest, visibleExpansion(forest, expanded))
	return forest, rows
}

// visibleExpansion honors filter-forced expansion on top of the caller's set.
func visibleExpansion(forest []*domain.LayerItem, expanded map[string]bool) map[string]bool {
	merged := make(map[string]bool, len(expanded))
	for id, v := range expanded {
		merged[id] = v
	}
	var walk func(items []*domain.LayerItem)
	walk = func(items []*domain.LayerItem) {
		for _, item := range items {
			if item.IsExpanded {
				merged[item.ID] = true
			}
			walk(item.Children)
		}
	}
	walk(forest)
	return merged
}

// SaveSnapshot persists a named checkpoint of the current document.
func (s *EditorSession) SaveSnapshot(ctx context.Context, name, description, thumbnail string) (*domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	return s.snapshots.Save(ctx, name, s.document, description, thumbnail)
}

// Snapshots returns the loaded snapshot list, most recent first, along with
// any load error captured on session open.
func (s *EditorSession) Snapshots() ([]*domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshots.Snapshots(), s.snapshots.LastError()
}

// DeleteSnapshot removes a named checkpoint durably.
func (s *EditorSession) DeleteSnapshot(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	return s.snapshots.Delete(ctx, id)
}

// RestoreSnapshot returns a deep copy of a stored snapshot's document. The
// editor decides whether to apply it and record a snapshot-restored action.
func (s *EditorSession) RestoreSnapshot(ctx context.Context, id string) (*domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	return s.snapshots.Restore(ctx, id)
}

// CompareSnapshots diffs two stored snapshots.
func (s *EditorSession) CompareSnapshots(ctx context.Context, idA, idB string) (*domain.SnapshotDiff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshots.Compare(ctx, idA, idB)
}

// CompareSnapshotToCurrent diffs a stored snapshot against the live document.
func (s *EditorSession) CompareSnapshotToCurrent(ctx context.Context, id string) (*domain.SnapshotDiff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshots.CompareToCurrent(ctx, id, s.document)
}

// SessionManager tracks open editor sessions by id. Sessions are created when
// the editor opens a page and pruned once idle.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*EditorSession

	repo       SnapshotRepository
	registry   layers.Registry
	maxEntries int
}

// NewSessionManager creates a SessionManager backed by the given snapshot
// repository. A non-positive maxEntries selects the history default.
func NewSessionManager(repo SnapshotRepository, registry layers.Registry, maxEntries int) *SessionManager {
	return &SessionManager{
		sessions:   make(map[string]*EditorSession),
		repo:       repo,
		registry:   registry,
		maxEntries: maxEntries,
	}
}

// Create opens a session for a page: clones the incoming document, records
// the page-loaded checkpoint, and loads the page's stored snapshots.
func (m *SessionManager) Create(ctx context.Context, pageID, siteID string, doc *domain.Document) (*EditorSession, error) {
	owned, err := doc.Clone()
	if err != nil {
		return nil, err
	}

	snapshots := NewSnapshotService(m.repo)
	snapshots.SetContext(pageID, siteID)
	snapshots.Load(ctx)

	session := &EditorSession{
		ID:        uuid.New().String(),
		PageID:    pageID,
		SiteID:    siteID,
		document:  owned,
		history:   history.New(m.maxEntries),
		snapshots: snapshots,
		builder:   &layers.Builder{Registry: m.registry},
		touchedAt: time.Now(),
	}
	if _, err := session.history.RecordAction(domain.ActionPageLoaded, owned, "", "", ""); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()

	return session, nil
}

// Get returns an open session by id.
func (m *SessionManager) Get(id string) (*EditorSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// Close tears a session down.
func (m *SessionManager) Close(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

// Len returns the number of open sessions.
func (m *SessionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// PruneIdle closes every session untouched for longer than maxAge and returns
// how many were removed.
func (m *SessionManager) PruneIdle(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	m.mu.Lock()
	defer m.mu.Unlock()

	pruned := 0
	for id, session := range m.sessions {
		session.mu.Lock()
		idle := session.touchedAt.Before(cutoff)
		session.mu.Unlock()
		if idle {
			delete(m.sessions, id)
			pruned++
		}
	}
	return pruned
}
