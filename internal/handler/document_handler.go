package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lexatlas/lexatlas/internal/model"
	"github.com/lexatlas/lexatlas/internal/pkg/response"
	"github.com/lexatlas/lexatlas/internal/service"
)

type DocumentHandler struct {
	ingest *service.IngestService
}

func NewDocumentHandler(ingest *service.IngestService) *DocumentHandler {
	return &DocumentHandler{ingest: ingest}
}

func (h *DocumentHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	docs, err := h.ingest.ListDocuments(c.Request.Context(), limit, offset)
	if err != nil {
		handleError(c, err)
		return
	}
	if docs == nil {
		docs = []model.NormalizedDocument{}
	}
	response.Success(c, gin.H{"documents": docs})
}

func (h *DocumentHandler) Get(c *gin.Context) {
	doc, setVersion, err := h.ingest.GetDocument(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"document": doc, "chunk_set_version": setVersion})
}

func (h *DocumentHandler) ListChunks(c *gin.Context) {
	chunks, err := h.ingest.ListChunks(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	if chunks == nil {
		chunks = []model.Chunk{}
	}
	response.Success(c, gin.H{"chunks": chunks})
}
