package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lexatlas/lexatlas/internal/pkg/errcode"
	"github.com/lexatlas/lexatlas/internal/pkg/response"
	"github.com/lexatlas/lexatlas/internal/service"
)

type IngestHandler struct {
	ingest *service.IngestService
}

func NewIngestHandler(ingest *service.IngestService) *IngestHandler {
	return &IngestHandler{ingest: ingest}
}

func (h *IngestHandler) Ingest(c *gin.Context) {
	var in service.IngestInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "invalid request body")
		return
	}
	if in.Content == "" {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "content is required")
		return
	}
	result, err := h.ingest.Ingest(c.Request.Context(), in)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}
