package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stockledger/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bodyLimitEngine(limit int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), BodyLimit(limit))
	r.POST("/stock-items/:id/receive", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.String(http.StatusBadRequest, "truncated")
			return
		}
		c.Status(http.StatusOK)
	})
	r.GET("/stock-items", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestBodyLimit(t *testing.T) {
	receive := `{"quantity":3,"store_id":"8d2f6c1e-4b7a-4c1d-9e0f-1a2b3c4d5e6f","aisle":"A3"}`

	tests := []struct {
		name          string
		limit         int64
		method        string
		body          string
		contentLength int64
		want          int
	}{
		{"receive payload within limit", 1024, http.MethodPost, receive, int64(len(receive)), http.StatusOK},
		{"declared length over limit", 32, http.MethodPost, receive, int64(len(receive)), http.StatusRequestEntityTooLarge},
		{"chunked body over limit is cut while reading", 32, http.MethodPost, receive, -1, http.StatusBadRequest},
		{"bodiless read unaffected", 8, http.MethodGet, "", 0, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := "/stock-items"
			if tt.method == http.MethodPost {
				path += "/6b1d0a52-0f7e-4f59-8a43-0e8c1f9b2d10/receive"
			}
			req := httptest.NewRequest(tt.method, path, strings.NewReader(tt.body))
			req.ContentLength = tt.contentLength
			w := httptest.NewRecorder()
			bodyLimitEngine(tt.limit).ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestBodyLimit_EnvelopeCarriesRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/stock-items/x/receive", strings.NewReader(strings.Repeat("9", 64)))
	req.ContentLength = 64
	req.Header.Set(RequestIDHeader, "req-413")
	w := httptest.NewRecorder()
	bodyLimitEngine(16).ServeHTTP(w, req)

	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeRequestTooLarge, resp.Error.Code)
	assert.Equal(t, "req-413", resp.Error.RequestID)
}
