package http

import "github.com/gin-gonic/gin"

// Register registers the studio routes.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/sessions", h.CreateSession)
	rg.GET("/sessions/:id", h.GetSession)
	rg.DELETE("/sessions/:id", h.CloseSession)

	rg.POST("/sessions/:id/actions", h.RecordAction)
	rg.GET("/sessions/:id/history", h.GetHistory)
	rg.POST("/sessions/:id/undo", h.Undo)
	rg.POST("/sessions/:id/redo", h.Redo)
	rg.POST("/sessions/:id/jump", h.Jump)

	rg.GET("/sessions/:id/layers", h.GetLayers)

	rg.POST("/sessions/:id/snapshots", h.SaveSnapshot)
	rg.GET("/sessions/:id/snapshots", h.ListSnapshots)
	rg.GET("/sessions/:id/snapshots/compare", h.CompareSnapshots)
	rg.GET("/sessions/:id/snapshots/:snapshotId/restore", h.RestoreSnapshot)
	rg.GET("/sessions/:id/snapshots/:snapshotId/diff", h.DiffSnapshot)
	rg.DELETE("/sessions/:id/snapshots/:snapshotId", h.DeleteSnapshot)
}
