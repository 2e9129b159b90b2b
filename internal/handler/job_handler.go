package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lexatlas/lexatlas/internal/model"
	"github.com/lexatlas/lexatlas/internal/pkg/response"
	"github.com/lexatlas/lexatlas/internal/repo"
)

type JobHandler struct {
	jobs *repo.JobRepo
}

func NewJobHandler(jobs *repo.JobRepo) *JobHandler {
	return &JobHandler{jobs: jobs}
}

func (h *JobHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	status := model.JobStatus(c.Query("status"))
	jobs, err := h.jobs.List(c.Request.Context(), status, limit)
	if err != nil {
		handleError(c, err)
		return
	}
	if jobs == nil {
		jobs = []model.Job{}
	}
	response.Success(c, gin.H{"jobs": jobs})
}

// Requeue resurrects one dead-lettered job with a fresh retry budget.
func (h *JobHandler) Requeue(c *gin.Context) {
	id := c.Param("id")
	if err := h.jobs.RequeueDeadLetter(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	job, err := h.jobs.Get(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"job": job})
}
