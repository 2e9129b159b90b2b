package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lexatlas/lexatlas/internal/pkg/errcode"
	"github.com/lexatlas/lexatlas/internal/pkg/response"
	"github.com/lexatlas/lexatlas/internal/service"
)

type SettingsHandler struct {
	settings *service.SettingsService
}

func NewSettingsHandler(settings *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

func (h *SettingsHandler) Get(c *gin.Context) {
	key := c.Param("key")
	value, found, err := h.settings.Get(c.Request.Context(), key)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"key": key, "value": value, "found": found})
}

type setSettingRequest struct {
	Value string `json:"value"`
}

func (h *SettingsHandler) Set(c *gin.Context) {
	key := c.Param("key")
	var req setSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "invalid request body")
		return
	}
	if err := h.settings.Set(c.Request.Context(), key, req.Value); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"key": key, "value": req.Value})
}
