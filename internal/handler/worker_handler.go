package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/lexatlas/lexatlas/internal/pkg/response"
	"github.com/lexatlas/lexatlas/internal/service"
)

type WorkerHandler struct {
	chunkWorker *service.ChunkWorker
	embedWorker *service.EmbedWorker
}

func NewWorkerHandler(chunkWorker *service.ChunkWorker, embedWorker *service.EmbedWorker) *WorkerHandler {
	return &WorkerHandler{chunkWorker: chunkWorker, embedWorker: embedWorker}
}

type workerTriggerRequest struct {
	ConcurrencyDocs int    `json:"concurrency_docs"`
	SourceTable     string `json:"source_table"`
}

// TriggerChunk runs one chunk worker pass synchronously and returns its
// report. Used for manual drains next to the scheduled passes.
func (h *WorkerHandler) TriggerChunk(c *gin.Context) {
	var req workerTriggerRequest
	_ = c.ShouldBindJSON(&req)
	report, err := h.chunkWorker.Run(c.Request.Context(), req.ConcurrencyDocs, req.SourceTable)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, report)
}

func (h *WorkerHandler) TriggerEmbed(c *gin.Context) {
	var req workerTriggerRequest
	_ = c.ShouldBindJSON(&req)
	report, err := h.embedWorker.Run(c.Request.Context(), req.ConcurrencyDocs)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, report)
}
