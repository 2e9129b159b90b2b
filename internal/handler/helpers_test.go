package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/lexatlas/lexatlas/internal/model"
	appErr "github.com/lexatlas/lexatlas/internal/pkg/errors"
	"github.com/lexatlas/lexatlas/internal/service"
)

func TestHandleErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name:       "validation failure",
			err:        &service.ValidationFailedError{Fields: []model.ValidationError{{Field: "title", Message: "empty"}}},
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "Validation failed",
		},
		{
			name:       "qa gate failure",
			err:        &service.QAFailedError{Errors: []string{"chunk 1: empty or inverted span"}},
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "Chunk validation failed (QA gate)",
		},
		{
			name:       "invalid input",
			err:        appErr.ErrInvalid,
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid request",
		},
		{
			name:       "not found",
			err:        appErr.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantError:  "not found",
		},
		{
			name:       "conflict",
			err:        appErr.ErrConflict,
			wantStatus: http.StatusConflict,
			wantError:  "conflict",
		},
		{
			name:       "unknown error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "internal error",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/ingest", nil)

			handleError(c, tc.err)
			require.Equal(t, tc.wantStatus, w.Code)

			var body struct {
				Error   string          `json:"error"`
				Details json.RawMessage `json:"details"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			require.Equal(t, tc.wantError, body.Error)
			if tc.wantStatus == http.StatusUnprocessableEntity {
				require.NotEmpty(t, body.Details)
			}
		})
	}
}
