package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"blog-ingest/cmd/api/auth"
	"blog-ingest/cmd/api/trace"
	"blog-ingest/internal/logger"
)

const (
	ContextKeyUserID = "user_id"
	ContextKeyRole   = "role"
)

// TokenParser 는 액세스 토큰을 검증한다. services.AuthService 가 구현한다.
type TokenParser interface {
	ParseAccessToken(token string) (auth.Identity, error)
}

// AdminAuthMiddleware 는 요청 헤더의 JWT를 검증하고, role이 'admin'인지 확인합니다.
func AdminAuthMiddleware(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractBearerToken(c)
		if err != nil {
			auth.AbortWithUnauthorized(c, err)
			return
		}

		id, err := parser.ParseAccessToken(token)
		if err != nil {
			logger.WarnWithFields("token parse error", logger.Fields{
				"error":      err.Error(),
				"request_id": trace.RequestIDFromContext(c.Request.Context()),
			})
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
			return
		}

		if id.Role != auth.RoleAdmin {
			logger.WarnWithFields("access denied", logger.Fields{
				"user_id":    id.UserID,
				"role":       id.Role,
				"request_id": trace.RequestIDFromContext(c.Request.Context()),
			})
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden_insufficient_permissions"})
			return
		}

		c.Set(ContextKeyUserID, id.UserID)
		c.Set(ContextKeyRole, id.Role)

		c.Next()
	}
}
