package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"blog-ingest/cmd/api/dto"
	"blog-ingest/cmd/api/services"
	"blog-ingest/cmd/api/trace"
	"blog-ingest/ingestion"
	"blog-ingest/internal/logger"
)

const (
	msgPostNotFound       = "Blog post not found"
	msgMediaUploadFailed  = "Failed to upload media. The file might be too large or in an unsupported format."
	msgCoverUploadFailed  = "Failed to upload cover image. The file might be too large or in an unsupported format."
	msgCreateFailed       = "Failed to create blog post"
	msgUpdateFailed       = "Failed to update blog post"
	msgInternalError      = "Internal server error"
	msgPostCreated        = "Blog post created successfully"
	msgPostUpdated        = "Blog post updated successfully"
	msgPostDeleted        = "Blog post deleted successfully"
	msgInvalidCredentials = "Invalid email or password"
)

// ListPostsHandler godoc
// @Summary      List posts
// @Description  List published posts, newest first
// @Tags         posts
// @Param        page          query  int     false  "Page number (1-based)"
// @Param        page_size     query  int     false  "Page size (<=100)"
// @Param        category      query  string  false  "Category"
// @Param        search        query  string  false  "Case-insensitive title/excerpt search"
// @Param        is_banner     query  bool    false  "Only banner posts"
// @Param        is_featured   query  bool    false  "Only featured posts"
// @Produce      json
// @Success      200  {object}  dto.PaginationPostDTO
// @Failure      503  {object}  dto.ErrorResponseDTO
// @Router       /posts [get]
func ListPostsHandler(svc *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in services.ListPostsInput
		in.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
		in.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))
		in.Category = c.Query("category")
		in.Search = c.Query("search")
		in.IsBanner = queryBool(c, "is_banner")
		in.IsFeatured = queryBool(c, "is_featured")

		page, err := svc.List(c.Request.Context(), in)
		if err != nil {
			writeServiceError(c, err, "")
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// GetPostHandler godoc
// @Summary      Get post by id
// @Description  Get a single post by ObjectID
// @Tags         posts
// @Param        id   path   string  true  "ObjectID"
// @Produce      json
// @Success      200  {object}  dto.PostDTO
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Router       /posts/{id} [get]
func GetPostHandler(svc *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		post, err := svc.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeServiceError(c, err, "")
			return
		}
		c.JSON(http.StatusOK, post)
	}
}

// CreatePostHandler godoc
// @Summary      Create post
// @Description  Uploads inline media (data URIs or blob URLs) and the cover image, then stores the post
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.PostRequestDTO  true  "Post"
// @Success      201  {object}  dto.PostEnvelopeDTO
// @Failure      400  {object}  dto.ErrorResponseDTO
// @Failure      401  {object}  dto.ErrorResponseDTO
// @Failure      403  {object}  dto.ErrorResponseDTO
// @Failure      502  {object}  dto.ErrorResponseDTO
// @Router       /posts [post]
func CreatePostHandler(svc *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.PostRequestDTO
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: err.Error()})
			return
		}
		post, err := svc.Create(c.Request.Context(), toPostInput(req))
		if err != nil {
			writeServiceError(c, err, msgCreateFailed)
			return
		}
		c.JSON(http.StatusCreated, dto.PostEnvelopeDTO{Message: msgPostCreated, Post: *post})
	}
}

// UpdatePostHandler godoc
// @Summary      Update post
// @Description  Replaces a post. New inline media is uploaded under the post's existing storage path
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string              true  "ObjectID"
// @Param        body  body  dto.PostRequestDTO  true  "Post"
// @Success      200  {object}  dto.PostEnvelopeDTO
// @Failure      400  {object}  dto.ErrorResponseDTO
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Failure      502  {object}  dto.ErrorResponseDTO
// @Router       /posts/{id} [put]
func UpdatePostHandler(svc *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.PostRequestDTO
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: err.Error()})
			return
		}
		post, err := svc.Update(c.Request.Context(), c.Param("id"), toPostInput(req))
		if err != nil {
			writeServiceError(c, err, msgUpdateFailed)
			return
		}
		c.JSON(http.StatusOK, dto.PostEnvelopeDTO{Message: msgPostUpdated, Post: *post})
	}
}

// DeletePostHandler godoc
// @Summary      Delete post
// @Description  Deletes a post and every stored asset under its storage path
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path   string  true  "ObjectID"
// @Success      200  {object}  dto.PostEnvelopeDTO
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Router       /posts/{id} [delete]
func DeletePostHandler(svc *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		post, err := svc.Delete(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeServiceError(c, err, "")
			return
		}
		c.JSON(http.StatusOK, dto.PostEnvelopeDTO{Message: msgPostDeleted, Post: *post})
	}
}

func toPostInput(req dto.PostRequestDTO) services.PostInput {
	return services.PostInput{
		Title:       req.Title,
		Excerpt:     req.Excerpt,
		Content:     req.Content,
		CoverImage:  req.CoverImage,
		Category:    req.Category,
		Tags:        req.Tags,
		Author:      req.Author,
		IsBanner:    req.IsBanner.Bool(),
		IsFeatured:  req.IsFeatured.Bool(),
		Editor:      req.Editor,
		Attachments: req.Attachments,
	}
}

func queryBool(c *gin.Context, key string) *bool {
	v := c.Query(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil
	}
	return &b
}

// writeServiceError 는 서비스 에러를 HTTP 상태 코드와 사용자 메시지로 변환한다.
// 업로드 실패는 본문 미디어와 커버 이미지를 구분해서 알려준다.
// action 이 있으면 검증 실패와 저장소 에러 메시지 앞에 붙인다.
func writeServiceError(c *gin.Context, err error, action string) {
	status, msg := http.StatusInternalServerError, msgInternalError
	switch {
	case errors.Is(err, services.ErrPostNotFound):
		status, msg = http.StatusNotFound, msgPostNotFound
	case errors.Is(err, services.ErrInvalidCredentials):
		status, msg = http.StatusUnauthorized, msgInvalidCredentials
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrUnknownEditor):
		status, msg = http.StatusBadRequest, withAction(action, err)
	case errors.Is(err, ingestion.ErrCoverUpload):
		status, msg = uploadStatus(err), msgCoverUploadFailed
	case errors.Is(err, ingestion.ErrMediaUpload):
		status, msg = uploadStatus(err), msgMediaUploadFailed
	case errors.Is(err, services.ErrStoreUnavailable):
		status, msg = http.StatusServiceUnavailable, withAction(action, err)
	}

	fields := logger.Fields{
		"status":     status,
		"path":       c.Request.URL.Path,
		"request_id": trace.RequestIDFromContext(c.Request.Context()),
		"error":      err.Error(),
	}
	if status >= http.StatusInternalServerError {
		logger.ErrorWithFields("request failed", fields)
	} else {
		logger.WarnWithFields("request rejected", fields)
	}
	c.JSON(status, dto.ErrorResponseDTO{Error: msg})
}

func withAction(action string, err error) string {
	if action == "" {
		return err.Error()
	}
	return action + ": " + err.Error()
}

// uploadStatus 는 잘못된 payload 나 매핑되지 않은 blob URL 이면 400, 스토리지 쪽 실패면 502 를 돌려준다.
func uploadStatus(err error) int {
	if errors.Is(err, ingestion.ErrInvalidPayload) || errors.Is(err, ingestion.ErrUnresolvedReference) {
		return http.StatusBadRequest
	}
	return http.StatusBadGateway
}
