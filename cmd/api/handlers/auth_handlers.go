package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"blog-ingest/cmd/api/dto"
	"blog-ingest/cmd/api/services"
	"blog-ingest/internal/logger"
)

// LoginHandler godoc
// @Summary      로그인
// @Description  이메일/비밀번호를 확인하고 JWT 액세스 토큰을 발급합니다.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequestDTO  true  "Credentials"
// @Success      200  {object}  dto.LoginResponseDTO
// @Failure      400  {object}  dto.ErrorResponseDTO
// @Failure      401  {object}  dto.ErrorResponseDTO
// @Router       /auth/login [post]
func LoginHandler(authSvc *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.LoginRequestDTO
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: err.Error()})
			return
		}

		resp, err := authSvc.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			writeServiceError(c, err, "")
			return
		}

		logger.InfoWithFields("user logged in", logger.Fields{
			"user_id": resp.User.ID,
			"role":    resp.User.Role,
		})
		c.JSON(http.StatusOK, resp)
	}
}
