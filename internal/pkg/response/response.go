package response

import (
	"github.com/gin-gonic/gin"
)

type errBody struct {
	Code    int         `json:"code"`
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(200, data)
}

func Error(c *gin.Context, status int, code int, message string) {
	c.JSON(status, errBody{Code: code, Error: message})
}

func ErrorDetails(c *gin.Context, status int, code int, message string, details interface{}) {
	c.JSON(status, errBody{Code: code, Error: message, Details: details})
}
