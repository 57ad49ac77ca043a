package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-ingest/cmd/api/dto"
	"blog-ingest/cmd/api/services"
	"blog-ingest/ingestion"
)

func TestWriteServiceErrorStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	storageDown := errors.New("connection reset")
	cases := []struct {
		name   string
		err    error
		action string
		status int
		msg    string
	}{
		{"not found", services.ErrPostNotFound, "", http.StatusNotFound, msgPostNotFound},
		{"validation", fmt.Errorf("%w: title: cannot be blank", services.ErrValidation), "", http.StatusBadRequest, "validation failed: title: cannot be blank"},
		{"validation on create", fmt.Errorf("%w: title: cannot be blank", services.ErrValidation), msgCreateFailed, http.StatusBadRequest, "Failed to create blog post: validation failed: title: cannot be blank"},
		{"media storage", fmt.Errorf("%w: %w", ingestion.ErrMediaUpload, storageDown), msgCreateFailed, http.StatusBadGateway, msgMediaUploadFailed},
		{"cover storage", fmt.Errorf("%w: %w", ingestion.ErrCoverUpload, storageDown), "", http.StatusBadGateway, msgCoverUploadFailed},
		{"bad payload", fmt.Errorf("%w: %w", ingestion.ErrMediaUpload, ingestion.ErrInvalidPayload), "", http.StatusBadRequest, msgMediaUploadFailed},
		{"unmapped blob cover", fmt.Errorf("%w: %w", ingestion.ErrCoverUpload, ingestion.ErrUnresolvedReference), "", http.StatusBadRequest, msgCoverUploadFailed},
		{"database", fmt.Errorf("%w: %w", services.ErrStoreUnavailable, storageDown), "", http.StatusServiceUnavailable, "store unavailable: connection reset"},
		{"database on update", fmt.Errorf("%w: %w", services.ErrStoreUnavailable, storageDown), msgUpdateFailed, http.StatusServiceUnavailable, "Failed to update blog post: store unavailable: connection reset"},
		{"unknown", storageDown, "", http.StatusInternalServerError, msgInternalError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/posts", nil)

			writeServiceError(c, tc.err, tc.action)
			assert.Equal(t, tc.status, w.Code)

			var body dto.ErrorResponseDTO
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.msg, body.Error)
		})
	}
}
