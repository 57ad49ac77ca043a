package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-ingest/cmd/api/trace"
)

func TestRedactBody(t *testing.T) {
	assert.Equal(t, `{"email":"a@b.c","password":"***"}`, redactBody(`{"email":"a@b.c","password":"hunter2"}`))
	assert.Equal(t, `{"password" : "***"}`, redactBody(`{"password" : "with \"quote\""}`))
	assert.Equal(t, `{"title":"x"}`, redactBody(`{"title":"x"}`))
}

func TestRequestTraceKeepsBodyAndSetsIDs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestTrace())

	var seenBody, seenRequestID string
	r.POST("/echo", func(c *gin.Context) {
		b, _ := c.GetRawData()
		seenBody = string(b)
		seenRequestID = trace.RequestIDFromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"password":"secret"}`))
	req.Header.Set("X-Request-Id", "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, `{"password":"secret"}`, seenBody)
	assert.Equal(t, "req-123", seenRequestID)
	assert.Equal(t, "req-123", w.Header().Get("X-Request-Id"))
}

func TestRequestTraceGeneratesID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestTrace())

	var runs int64
	r.GET("/ping", func(c *gin.Context) {
		trace.StartIngestion(c.Request.Context())
		runs = trace.IngestionRuns(c.Request.Context())
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
	assert.Equal(t, int64(1), runs)
}
