package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/webstudio-labs/studio-backend/internal/studio/domain"
	"github.com/webstudio-labs/studio-backend/internal/studio/service"
)

// Handler exposes editor sessions over JSON REST. It is a thin transport
// adapter: all semantics live in the service layer.
type Handler struct {
	sessions *service.SessionManager
}

// NewHandler creates a Handler over the given session manager.
func NewHandler(sessions *service.SessionManager) *Handler {
	return &Handler{sessions: sessions}
}

// CreateSession opens an editing session for a page document.
func (h *Handler) CreateSession(c *gin.Context) {
	var body CreateSessionRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	session, err := h.sessions.Create(c.Request.Context(), body.PageID, body.SiteID, body.Document)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"session": h.sessionInfo(session)})
}

// GetSession returns the session summary used by the editor chrome.
func (h *Handler) GetSession(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": h.sessionInfo(session)})
}

// CloseSession tears a session down.
func (h *Handler) CloseSession(c *gin.Context) {
	if err := h.sessions.Close(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// RecordAction appends a history checkpoint for a completed edit.
func (h *Handler) RecordAction(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var body RecordActionRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	entry, err := session.RecordAction(
		domain.ActionKind(body.Action), body.Document,
		body.ComponentID, body.ComponentType, body.Description,
	)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"entry": entryMeta(entry)})
}

// GetHistory lists the session's history entries without document payloads.
func (h *Handler) GetHistory(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	entries := session.HistoryEntries()
	metas := make([]HistoryEntryMeta, 0, len(entries))
	for _, e := range entries {
		metas = append(metas, entryMeta(e))
	}

	index, length, _, _, _, _ := session.HistoryState()
	c.JSON(http.StatusOK, gin.H{
		"entries":       metas,
		"current_index": index,
		"length":        length,
	})
}

// Undo steps the session one entry back and returns the restored document.
func (h *Handler) Undo(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	doc, description, err := session.Undo()
	if errors.Is(err, domain.ErrHistoryBoundary) {
		c.JSON(http.StatusConflict, gin.H{"error": "nothing to undo"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to undo"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"document": doc, "description": description})
}

// Redo steps the session one entry forward and returns the restored document.
func (h *Handler) Redo(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	doc, description, err := session.Redo()
	if errors.Is(err, domain.ErrHistoryBoundary) {
		c.JSON(http.StatusConflict, gin.H{"error": "nothing to redo"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to redo"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"document": doc, "description": description})
}

// Jump moves the history cursor directly to an entry picked in the history
// panel.
func (h *Handler) Jump(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var body JumpRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	doc, err := session.Jump(body.EntryID)
	if errors.Is(err, domain.ErrEntryNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "history entry not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to jump"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"document": doc})
}

// GetLayers derives the layer forest and its flattened visible rows for the
// current document. Query params: q (filter), selected (component id),
// expanded (comma-separated component ids).
func (h *Handler) GetLayers(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	expanded := make(map[string]bool)
	if raw := c.Query("expanded"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				expanded[id] = true
			}
		}
	}

	forest, rows := session.Layers(c.Query("q"), c.Query("selected"), expanded)
	c.JSON(http.StatusOK, gin.H{"layers": forest, "rows": rows})
}

// SaveSnapshot persists a named checkpoint of the current document.
func (h *Handler) SaveSnapshot(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var body SaveSnapshotRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	snap, err := session.SaveSnapshot(c.Request.Context(), body.Name, body.Description, body.Thumbnail)
	if errors.Is(err, domain.ErrContextNotSet) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to save snapshot"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"snapshot": snapshotMeta(snap)})
}

// ListSnapshots returns the page's snapshots without document payloads.
func (h *Handler) ListSnapshots(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	snapshots, loadErr := session.Snapshots()
	metas := make([]SnapshotMeta, 0, len(snapshots))
	for _, s := range snapshots {
		metas = append(metas, snapshotMeta(s))
	}

	resp := gin.H{"snapshots": metas}
	if loadErr != nil {
		resp["load_error"] = loadErr.Error()
	}
	c.JSON(http.StatusOK, resp)
}

// RestoreSnapshot returns a deep copy of a snapshot's document for the editor
// to apply.
func (h *Handler) RestoreSnapshot(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	doc, err := session.RestoreSnapshot(c.Request.Context(), c.Param("snapshotId"))
	if errors.Is(err, domain.ErrSnapshotNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "snapshot not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to restore snapshot"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"document": doc})
}

// DeleteSnapshot removes a snapshot durably.
func (h *Handler) DeleteSnapshot(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	err := session.DeleteSnapshot(c.Request.Context(), c.Param("snapshotId"))
	if errors.Is(err, domain.ErrSnapshotNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "snapshot not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to delete snapshot"})
		return
	}

	c.Status(http.StatusNoContent)
}

// DiffSnapshot compares a snapshot against the session's current document.
func (h *Handler) DiffSnapshot(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	diff, err := session.CompareSnapshotToCurrent(c.Request.Context(), c.Param("snapshotId"))
	if errors.Is(err, domain.ErrSnapshotNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "snapshot not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to diff snapshot"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"diff": diff})
}

// CompareSnapshots diffs two stored snapshots. Query params: a, b.
func (h *Handler) CompareSnapshots(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	idA, idB := c.Query("a"), c.Query("b")
	if idA == "" || idB == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query params a and b are required"})
		return
	}

	diff, err := session.CompareSnapshots(c.Request.Context(), idA, idB)
	if errors.Is(err, domain.ErrSnapshotNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "snapshot not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to compare snapshots"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"diff": diff})
}

func (h *Handler) session(c *gin.Context) (*service.EditorSession, bool) {
	session, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return nil, false
	}
	return session, true
}

func (h *Handler) sessionInfo(session *service.EditorSession) SessionInfo {
	index, length, undoDesc, redoDesc, canUndo, canRedo := session.HistoryState()
	return SessionInfo{
		ID:              session.ID,
		PageID:          session.PageID,
		SiteID:          session.SiteID,
		HistoryLength:   length,
		HistoryIndex:    index,
		UndoDescription: undoDesc,
		RedoDescription: redoDesc,
		CanUndo:         canUndo,
		CanRedo:         canRedo,
	}
}
