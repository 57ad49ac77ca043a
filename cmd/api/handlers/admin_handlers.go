package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"blog-ingest/cmd/api/services"
)

// @Summary List users
// @Description List back office accounts without password hashes
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.UserDTO
// @Failure 401 {object} dto.ErrorResponseDTO
// @Failure 403 {object} dto.ErrorResponseDTO
// @Router /admin/users [get]
func AdminListUsersHandler(svc *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := svc.ListUsers(c.Request.Context())
		if err != nil {
			writeServiceError(c, err, "")
			return
		}
		c.JSON(http.StatusOK, users)
	}
}
