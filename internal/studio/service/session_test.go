package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webstudio-labs/studio-backend/internal/studio/domain"
)

func newTestManager() *SessionManager {
	return NewSessionManager(newFakeRepo(), nil, 50)
}

func createSession(t *testing.T, m *SessionManager) *EditorSession {
	t.Helper()
	session, err := m.Create(context.Background(), "page-1", "site-1", serviceDoc("initial"))
	require.NoError(t, err)
	return session
}

func TestSessionManager_Create(t *testing.T) {
	m := newTestManager()
	session := createSession(t, m)

	t.Run("records the page-loaded checkpoint", func(t *testing.T) {
		entries := session.HistoryEntries()
		require.Len(t, entries, 1)
		assert.Equal(t, domain.ActionPageLoaded, entries[0].Action)
		assert.Equal(t, "Loaded page", entries[0].Description)
	})

	t.Run("owns its copy of the document", func(t *testing.T) {
		doc := serviceDoc("mine")
		s, err := m.Create(context.Background(), "page-2", "site-1", doc)
		require.NoError(t, err)

		doc.Components["a"].Props["title"] = "mutated"

		entries := s.HistoryEntries()
		assert.Equal(t, "mine", entries[0].Data.Components["a"].Props["title"])
	})

	t.Run("sessions are retrievable by id", func(t *testing.T) {
		got, err := m.Get(session.ID)
		require.NoError(t, err)
		assert.Same(t, session, got)
	})

	t.Run("unknown session id reports not found", func(t *testing.T) {
		_, err := m.Get("nope")
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})
}

func TestEditorSession_UndoRedoFlow(t *testing.T) {
	m := newTestManager()
	session := createSession(t, m)

	_, err := session.RecordAction(domain.ActionComponentEdited, serviceDoc("v1"), "a", "Hero", "")
	require.NoError(t, err)
	_, err = session.RecordAction(domain.ActionComponentEdited, serviceDoc("v2"), "a", "Hero", "")
	require.NoError(t, err)

	doc, description, err := session.Undo()
	require.NoError(t, err)
	assert.Equal(t, "v1", doc.Components["a"].Props["title"])
	assert.Equal(t, "Edited Hero", description)

	doc, _, err = session.Redo()
	require.NoError(t, err)
	assert.Equal(t, "v2", doc.Components["a"].Props["title"])

	_, _, err = session.Redo()
	assert.ErrorIs(t, err, domain.ErrHistoryBoundary)

	_, _, err = session.Undo()
	require.NoError(t, err)
	_, _, err = session.Undo()
	require.NoError(t, err) // back to the page-loaded entry
	_, _, err = session.Undo()
	assert.ErrorIs(t, err, domain.ErrHistoryBoundary)
}

func TestEditorSession_Jump(t *testing.T) {
	m := newTestManager()
	session := createSession(t, m)

	entry, err := session.RecordAction(domain.ActionComponentEdited, serviceDoc("v1"), "a", "Hero", "")
	require.NoError(t, err)
	_, err = session.RecordAction(domain.ActionComponentEdited, serviceDoc("v2"), "a", "Hero", "")
	require.NoError(t, err)

	doc, err := session.Jump(entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "v1", doc.Components["a"].Props["title"])

	_, err = session.Jump("nope")
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)
}

func TestEditorSession_Layers(t *testing.T) {
	m := newTestManager()
	session := createSession(t, m)

	nested := &domain.Document{
		Root: domain.RootComponent{Children: []string{"s"}},
		Components: map[string]*domain.Component{
			"s": {ID: "s", Type: "Section", Children: []string{"t"}},
			"t": {ID: "t", Type: "Text", Props: map[string]any{"text": "Needle"}, Children: []string{}, ParentID: "s"},
		},
	}
	_, err := session.RecordAction(domain.ActionPageGenerated, nested, "", "", "")
	require.NoError(t, err)

	t.Run("collapsed tree flattens to top-level rows", func(t *testing.T) {
		forest, rows := session.Layers("", "", nil)
		require.Len(t, forest, 1)
		require.Len(t, rows, 1)
		assert.Equal(t, "s", rows[0].ID)
	})

	t.Run("filtering expands matches into the rows", func(t *testing.T) {
		forest, rows := session.Layers("needle", "", nil)
		require.Len(t, forest, 1)
		require.Len(t, rows, 2)
		assert.Equal(t, "s", rows[0].ID)
		assert.Equal(t, "t", rows[1].ID)
	})
}

func TestEditorSession_Snapshots(t *testing.T) {
	m := newTestManager()
	session := createSession(t, m)
	ctx := context.Background()

	snap, err := session.SaveSnapshot(ctx, "milestone", "before the redesign", "")
	require.NoError(t, err)
	assert.Equal(t, "page-1", snap.PageID)

	snaps, loadErr := session.Snapshots()
	require.NoError(t, loadErr)
	require.Len(t, snaps, 1)

	t.Run("restore does not touch history", func(t *testing.T) {
		before := len(session.HistoryEntries())

		doc, err := session.RestoreSnapshot(ctx, snap.ID)
		require.NoError(t, err)
		assert.Equal(t, "initial", doc.Components["a"].Props["title"])

		assert.Len(t, session.HistoryEntries(), before)
	})

	t.Run("diff against current document", func(t *testing.T) {
		_, err := session.RecordAction(domain.ActionComponentEdited, serviceDoc("edited"), "a", "Hero", "")
		require.NoError(t, err)

		diff, err := session.CompareSnapshotToCurrent(ctx, snap.ID)
		require.NoError(t, err)
		assert.Equal(t, "1 modified", diff.Summary)
	})

	t.Run("delete removes the snapshot", func(t *testing.T) {
		require.NoError(t, session.DeleteSnapshot(ctx, snap.ID))

		snaps, _ := session.Snapshots()
		assert.Empty(t, snaps)
	})
}

func TestSessionManager_PruneIdle(t *testing.T) {
	m := newTestManager()
	idle := createSession(t, m)
	active := createSession(t, m)

	// Age the idle session past the cutoff.
	idle.mu.Lock()
	idle.touchedAt = time.Now().Add(-time.Hour)
	idle.mu.Unlock()

	pruned := m.PruneIdle(30 * time.Minute)

	assert.Equal(t, 1, pruned)
	assert.Equal(t, 1, m.Len())

	_, err := m.Get(idle.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	_, err = m.Get(active.ID)
	assert.NoError(t, err)
}

func TestSessionManager_Close(t *testing.T) {
	m := newTestManager()
	session := createSession(t, m)

	require.NoError(t, m.Close(session.ID))
	assert.ErrorIs(t, m.Close(session.ID), domain.ErrSessionNotFound)
}
