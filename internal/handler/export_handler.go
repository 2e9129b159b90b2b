package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lexatlas/lexatlas/internal/service"
)

type ExportHandler struct {
	export *service.ExportService
}

func NewExportHandler(export *service.ExportService) *ExportHandler {
	return &ExportHandler{export: export}
}

// Chunks streams the active chunk sets as JSONL. Errors after the first
// line surface as a truncated stream; clients must check line counts.
func (h *ExportHandler) Chunks(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "200"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	collection := c.Query("collection")
	c.Header("Content-Type", "application/x-ndjson")
	c.Header("Content-Disposition", `attachment; filename="chunks.jsonl"`)
	if _, err := h.export.WriteJSONL(c.Request.Context(), c.Writer, collection, limit, offset); err != nil {
		if !c.Writer.Written() {
			handleError(c, err)
		}
		return
	}
}
