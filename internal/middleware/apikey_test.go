package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func apiKeyTestRouter(key string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(APIKeyAuth(key))
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return r
}

func doRequest(r *gin.Engine, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if key != "" {
		req.Header.Set("X-Api-Key", key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAPIKeyAuth(t *testing.T) {
	r := apiKeyTestRouter("secret-key")

	require.Equal(t, http.StatusOK, doRequest(r, "secret-key").Code)
	require.Equal(t, http.StatusUnauthorized, doRequest(r, "wrong-key").Code)
	require.Equal(t, http.StatusUnauthorized, doRequest(r, "").Code)
}

func TestAPIKeyAuthFailClosed(t *testing.T) {
	// No configured key means nobody gets in, not everybody.
	r := apiKeyTestRouter("")
	require.Equal(t, http.StatusUnauthorized, doRequest(r, "").Code)
	require.Equal(t, http.StatusUnauthorized, doRequest(r, "anything").Code)
}
