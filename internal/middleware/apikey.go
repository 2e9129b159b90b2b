package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lexatlas/lexatlas/internal/pkg/errcode"
	"github.com/lexatlas/lexatlas/internal/pkg/response"
)

const apiKeyHeader = "X-Api-Key"

// APIKeyAuth is fail-closed: an empty configured key rejects every
// request rather than opening the API.
func APIKeyAuth(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		presented := c.GetHeader(apiKeyHeader)
		if key == "" || presented == "" ||
			subtle.ConstantTimeCompare([]byte(presented), []byte(key)) != 1 {
			response.Error(c, http.StatusUnauthorized, errcode.ErrUnauthorized, "invalid api key")
			c.Abort()
			return
		}
		c.Next()
	}
}
