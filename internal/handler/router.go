package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/lexatlas/lexatlas/internal/middleware"
)

type RouterDeps struct {
	Ingest    *IngestHandler
	Workers   *WorkerHandler
	Documents *DocumentHandler
	Jobs      *JobHandler
	Export    *ExportHandler
	Settings  *SettingsHandler
	APIKey    string
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.Use(middleware.RequestID())
	api.Use(middleware.APIKeyAuth(deps.APIKey))

	api.POST("/ingest", deps.Ingest.Ingest)

	api.POST("/workers/chunk", deps.Workers.TriggerChunk)
	api.POST("/workers/embed", deps.Workers.TriggerEmbed)

	api.GET("/documents", deps.Documents.List)
	api.GET("/documents/:id", deps.Documents.Get)
	api.GET("/documents/:id/chunks", deps.Documents.ListChunks)

	api.GET("/jobs", deps.Jobs.List)
	api.POST("/jobs/:id/requeue", deps.Jobs.Requeue)

	api.GET("/export/chunks", deps.Export.Chunks)

	api.GET("/settings/:key", deps.Settings.Get)
	api.PUT("/settings/:key", deps.Settings.Set)
}
