package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"blog-ingest/cmd/api/dto"
	"blog-ingest/cmd/api/trace"
	"blog-ingest/ingestion"
	"blog-ingest/internal/logger"
	"blog-ingest/models"
	"blog-ingest/repositories"
	"blog-ingest/sanitizer"
)

var (
	ErrPostNotFound     = errors.New("post not found")
	ErrValidation       = errors.New("validation failed")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrUnknownEditor    = errors.New("unknown editor")
)

// PostStore 는 PostService 가 사용하는 영속화 계층이다. repositories.PostRepository 가 구현한다.
type PostStore interface {
	Insert(ctx context.Context, p *models.Post) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	Update(ctx context.Context, p *models.Post) error
	Delete(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	List(ctx context.Context, opt repositories.ListPostsOptions) ([]models.Post, int64, error)
}

// PostService encapsulates the ingestion pipeline, persistence and DTO mapping for posts.
type PostService struct {
	posts          PostStore
	pipeline       *ingestion.Pipeline
	sanitizer      *sanitizer.HTMLSanitizer
	wordsPerMinute int
	newDocumentID  func() string
}

type PostServiceOptions struct {
	WordsPerMinute int
	// NewDocumentID 가 nil 이면 uuid 를 사용한다.
	NewDocumentID func() string
}

func NewPostService(posts PostStore, pipeline *ingestion.Pipeline, opts PostServiceOptions) *PostService {
	newID := opts.NewDocumentID
	if newID == nil {
		newID = uuid.NewString
	}
	return &PostService{
		posts:          posts,
		pipeline:       pipeline,
		sanitizer:      sanitizer.NewHTMLSanitizer(),
		wordsPerMinute: opts.WordsPerMinute,
		newDocumentID:  newID,
	}
}

// PostInput 은 생성/수정 요청에서 받은 값이다. 플래그는 이미 엄격한 bool 로 정규화되어 있다.
type PostInput struct {
	Title       string
	Excerpt     string
	Content     string
	CoverImage  string
	Category    string
	Tags        []string
	Author      string
	IsBanner    bool
	IsFeatured  bool
	Editor      string
	Attachments map[string]string
}

type ListPostsInput struct {
	Page       int
	PageSize   int
	Category   string
	Search     string
	IsBanner   *bool
	IsFeatured *bool
}

func (s *PostService) List(ctx context.Context, in ListPostsInput) (dto.Pagination[dto.PostDTO], error) {
	if in.Page <= 0 {
		in.Page = 1
	}
	if in.PageSize <= 0 || in.PageSize > 100 {
		in.PageSize = 20
	}
	posts, total, err := s.posts.List(ctx, repositories.ListPostsOptions{
		Page:       in.Page,
		PageSize:   in.PageSize,
		Category:   strings.TrimSpace(in.Category),
		Search:     strings.TrimSpace(in.Search),
		IsBanner:   in.IsBanner,
		IsFeatured: in.IsFeatured,
	})
	if err != nil {
		return dto.Pagination[dto.PostDTO]{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	out := make([]dto.PostDTO, 0, len(posts))
	for _, p := range posts {
		out = append(out, mapPost(p))
	}
	return dto.Pagination[dto.PostDTO]{
		Data:     out,
		Page:     in.Page,
		PageSize: in.PageSize,
		Total:    total,
	}, nil
}

// GetByID loads a post by its ObjectID hex and returns a DTO
func (s *PostService) GetByID(ctx context.Context, hexID string) (*dto.PostDTO, error) {
	p, err := s.find(ctx, hexID)
	if err != nil {
		return nil, err
	}
	d := mapPost(*p)
	return &d, nil
}

// Create 는 새 문서 식별자를 발급하고 인제스천 파이프라인을 거친 글을 저장한다.
func (s *PostService) Create(ctx context.Context, in PostInput) (*dto.PostDTO, error) {
	documentID := s.newDocumentID()

	post, uploaded, err := s.finalize(ctx, documentID, in)
	if err != nil {
		return nil, err
	}
	if err := s.posts.Insert(ctx, &post); err != nil {
		s.pipeline.Discard(ctx, uploaded)
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	logger.InfoWithFields("post created", logger.Fields{
		"post_id":     post.ID.Hex(),
		"document_id": documentID,
		"uploaded":    len(uploaded),
		"request_id":  trace.RequestIDFromContext(ctx),
	})
	d := mapPost(post)
	return &d, nil
}

// Update 는 기존 글의 문서 식별자로 같은 파이프라인을 실행한다.
// 새로 추가된 미디어는 최초 생성 때와 같은 스토리지 경로 아래에 올라간다.
func (s *PostService) Update(ctx context.Context, hexID string, in PostInput) (*dto.PostDTO, error) {
	existing, err := s.find(ctx, hexID)
	if err != nil {
		return nil, err
	}
	documentID := existing.BlogID
	if documentID == "" {
		documentID = existing.ID.Hex()
	}

	post, uploaded, err := s.finalize(ctx, documentID, in)
	if err != nil {
		return nil, err
	}
	post.ID = existing.ID
	post.CreatedAt = existing.CreatedAt

	if err := s.posts.Update(ctx, &post); err != nil {
		s.pipeline.Discard(ctx, uploaded)
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	logger.InfoWithFields("post updated", logger.Fields{
		"post_id":     post.ID.Hex(),
		"document_id": documentID,
		"uploaded":    len(uploaded),
		"request_id":  trace.RequestIDFromContext(ctx),
	})
	d := mapPost(post)
	return &d, nil
}

// Delete 는 글을 지우고 해당 문서의 스토리지 경로를 비운다.
// 스토리지 정리 실패는 로그만 남기며, 남은 에셋은 sweeper 가 회수한다.
func (s *PostService) Delete(ctx context.Context, hexID string) (*dto.PostDTO, error) {
	id, err := primitive.ObjectIDFromHex(hexID)
	if err != nil {
		return nil, ErrPostNotFound
	}
	deleted, err := s.posts.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	if deleted.BlogID != "" {
		n, err := s.pipeline.Purge(ctx, deleted.BlogID)
		fields := logger.Fields{"post_id": hexID, "document_id": deleted.BlogID, "deleted_assets": n}
		if err != nil {
			fields["error"] = err.Error()
			logger.WarnWithFields("failed to purge post assets", fields)
		} else {
			logger.InfoWithFields("post assets purged", fields)
		}
	}

	d := mapPost(*deleted)
	return &d, nil
}

func (s *PostService) find(ctx context.Context, hexID string) (*models.Post, error) {
	id, err := primitive.ObjectIDFromHex(hexID)
	if err != nil {
		return nil, ErrPostNotFound
	}
	p, err := s.posts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return p, nil
}

// finalize 는 본문 정리, 미디어 업로드/치환, 읽기 시간 계산, 검증까지 수행한 레코드를 만든다.
// 검증에 실패하면 이번에 올린 에셋을 지운다.
func (s *PostService) finalize(ctx context.Context, documentID string, in PostInput) (models.Post, []ingestion.StoredAsset, error) {
	pipeline, err := s.pipelineFor(in.Editor)
	if err != nil {
		return models.Post{}, nil, err
	}

	fields := trace.IngestionFields(ctx, documentID)
	fields["extractor"] = pipeline.Extractor().Name()
	logger.DebugWithFields("ingestion started", fields)

	res, err := pipeline.Ingest(ctx, ingestion.Draft{
		DocumentID:  documentID,
		Content:     ingestion.NormalizeHeadings(in.Content),
		CoverImage:  strings.TrimSpace(in.CoverImage),
		Attachments: in.Attachments,
	})
	if err != nil {
		return models.Post{}, nil, err
	}

	if ingestion.HasEphemeral(res.Content) || ingestion.IsEphemeral(res.CoverImage) {
		s.pipeline.Discard(ctx, res.Uploaded)
		return models.Post{}, nil, fmt.Errorf("%w: %w", ErrValidation, models.ErrEphemeralMedia)
	}

	content := s.sanitizer.Sanitize(res.Content)
	if key, ok := droppedAsset(content, res); ok {
		s.pipeline.Discard(ctx, res.Uploaded)
		return models.Post{}, nil, fmt.Errorf("%w: %w: %s", ErrValidation, models.ErrDroppedMedia, key)
	}
	post := models.Post{
		BlogID:      documentID,
		Title:       strings.TrimSpace(in.Title),
		Excerpt:     strings.TrimSpace(in.Excerpt),
		Content:     content,
		CoverImage:  res.CoverImage,
		Category:    strings.TrimSpace(in.Category),
		Tags:        normalizeTags(in.Tags),
		Author:      strings.TrimSpace(in.Author),
		ReadingTime: ingestion.ReadingTime(content, s.wordsPerMinute),
		IsBanner:    in.IsBanner,
		IsFeatured:  in.IsFeatured,
	}
	if err := post.Validate(); err != nil {
		s.pipeline.Discard(ctx, res.Uploaded)
		return models.Post{}, nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return post, res.Uploaded, nil
}

// droppedAsset 은 sanitize 과정에서 참조가 사라진 업로드 에셋을 찾는다.
// 허용되지 않는 URL 스킴의 src 는 sanitizer 가 태그째 지운다.
func droppedAsset(content string, res ingestion.Result) (string, bool) {
	for _, a := range res.Uploaded {
		if a.URL == res.CoverImage || strings.Contains(content, a.URL) {
			continue
		}
		return a.Key, true
	}
	return "", false
}

func (s *PostService) pipelineFor(editor string) (*ingestion.Pipeline, error) {
	if editor == "" || editor == s.pipeline.Extractor().Name() {
		return s.pipeline, nil
	}
	e, err := ingestion.ExtractorByName(editor)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnknownEditor, err)
	}
	return s.pipeline.WithExtractor(e), nil
}

// normalizeTags 는 공백 태그와 중복 태그를 제거한다. 순서는 유지한다.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func mapPost(p models.Post) dto.PostDTO {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return dto.PostDTO{
		ID:          p.ID.Hex(),
		BlogID:      p.BlogID,
		Title:       p.Title,
		Excerpt:     p.Excerpt,
		Content:     p.Content,
		CoverImage:  p.CoverImage,
		Category:    p.Category,
		Tags:        tags,
		Author:      p.Author,
		ReadingTime: p.ReadingTime,
		IsBanner:    p.IsBanner,
		IsFeatured:  p.IsFeatured,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
