package middleware

import (
	"bytes"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"

	"blog-ingest/cmd/api/trace"
	"blog-ingest/internal/logger"
)

const headerRequestID = "X-Request-Id"

var passwordField = regexp.MustCompile(`("password"\s*:\s*)"(?:[^"\\]|\\.)*"`)

// redactBody 는 로그에 남기기 전에 JSON 본문의 password 값을 가린다.
func redactBody(body string) string {
	return passwordField.ReplaceAllString(body, `${1}"***"`)
}

// RequestTrace 는 모든 요청에 Request ID 를 보장하고 컨텍스트와 응답 헤더에 싣는다.
// 완료 로그에는 그 요청에서 실행된 인제스천 횟수가 함께 남는다.
func RequestTrace() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		req := c.Request

		requestID := req.Header.Get(headerRequestID)
		if requestID == "" {
			requestID = trace.NewRequestID()
		}

		c.Request = req.WithContext(trace.WithRequest(req.Context(), requestID))
		req = c.Request

		c.Request.Header.Set(headerRequestID, requestID)
		c.Writer.Header().Set(headerRequestID, requestID)

		// 쿼리 및 요청 바디 스니펫을 함께 로깅한다.
		// query_params 는 멀티 값 쿼리도 모두 보존하기 위해 map[string][]string 으로 기록한다.
		queryParams := map[string][]string{}
		for key, values := range req.URL.Query() {
			if len(values) > 0 {
				queryParams[key] = values
			}
		}
		var bodySnippet string
		if req.Body != nil && req.ContentLength != 0 &&
			(req.Method == http.MethodPost || req.Method == http.MethodPut || req.Method == http.MethodPatch || req.Method == http.MethodDelete) {
			if bodyBytes, err := io.ReadAll(req.Body); err == nil {
				if len(bodyBytes) > 0 {
					const maxBodyLog = 1024
					if len(bodyBytes) > maxBodyLog {
						bodySnippet = string(bodyBytes[:maxBodyLog])
					} else {
						bodySnippet = string(bodyBytes)
					}
				}
				// gin 핸들러에서 다시 읽을 수 있도록 Body 를 복원한다.
				c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
			}
		}

		c.Next()

		status := c.Writer.Status()
		duration := time.Since(start)
		fields := logger.Fields{
			"method":         req.Method,
			"path":           req.URL.Path,
			"query_params":   queryParams,
			"status":         status,
			"duration":       duration.String(),
			"request_id":     requestID,
			"ingestion_runs": trace.IngestionRuns(c.Request.Context()),
		}
		if bodySnippet != "" {
			fields["body"] = redactBody(bodySnippet)
		}
		logger.InfoWithFields("completed request", fields)
	}
}
