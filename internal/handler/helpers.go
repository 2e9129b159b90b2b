package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/lexatlas/lexatlas/internal/pkg/errcode"
	appErr "github.com/lexatlas/lexatlas/internal/pkg/errors"
	"github.com/lexatlas/lexatlas/internal/pkg/response"
	"github.com/lexatlas/lexatlas/internal/service"
)

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	requestID, _ := c.Get("request_id")
	logutil.GetLogger(c.Request.Context()).Warn("request failed",
		zap.Any("request_id", requestID),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err))

	var validationErr *service.ValidationFailedError
	var qaErr *service.QAFailedError
	switch {
	case errors.As(err, &validationErr):
		response.ErrorDetails(c, http.StatusUnprocessableEntity, errcode.ErrValidationFailed,
			"Validation failed", validationErr.Fields)
	case errors.As(err, &qaErr):
		response.ErrorDetails(c, http.StatusUnprocessableEntity, errcode.ErrQAGateFailed,
			"Chunk validation failed (QA gate)", qaErr.Errors)
	case errors.Is(err, appErr.ErrUnauthorized):
		response.Error(c, http.StatusUnauthorized, errcode.ErrUnauthorized, "unauthorized")
	case errors.Is(err, appErr.ErrNotFound):
		response.Error(c, http.StatusNotFound, errcode.ErrNotFound, "not found")
	case errors.Is(err, appErr.ErrInvalid):
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "invalid request")
	case errors.Is(err, appErr.ErrConflict):
		response.Error(c, http.StatusConflict, errcode.ErrConflict, "conflict")
	default:
		response.Error(c, http.StatusInternalServerError, errcode.ErrInternal, "internal error")
	}
}
