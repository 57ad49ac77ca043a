package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"blog-ingest/cmd/api/handlers"
	"blog-ingest/cmd/api/middleware"
	"blog-ingest/cmd/api/services"
	_ "blog-ingest/docs"
)

// HealthChecker 는 /health 에서 의존 서비스 상태를 확인한다. nil 이면 항상 ok 이다.
type HealthChecker func(ctx context.Context) error

type Deps struct {
	Posts  *services.PostService
	Users  *services.UserService
	Auth   *services.AuthService
	Health HealthChecker
}

func New(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestTrace())

	r.GET("/health", func(c *gin.Context) {
		if d.Health != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
			defer cancel()
			if err := d.Health(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "down", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1")
	{
		api.POST("/auth/login", handlers.LoginHandler(d.Auth))

		api.GET("/posts", handlers.ListPostsHandler(d.Posts))
		api.GET("/posts/:id", handlers.GetPostHandler(d.Posts))

		admin := api.Group("")
		admin.Use(middleware.AdminAuthMiddleware(d.Auth))
		{
			admin.POST("/posts", handlers.CreatePostHandler(d.Posts))
			admin.PUT("/posts/:id", handlers.UpdatePostHandler(d.Posts))
			admin.DELETE("/posts/:id", handlers.DeletePostHandler(d.Posts))
			admin.GET("/admin/users", handlers.AdminListUsersHandler(d.Users))
		}
	}

	return r
}
