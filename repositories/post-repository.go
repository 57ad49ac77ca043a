package repositories

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"blog-ingest/models"
)

// ErrNotFound 는 조회/수정/삭제 대상 문서가 없을 때 반환된다.
var ErrNotFound = errors.New("document not found")

type PostRepository struct {
	col *mongo.Collection
}

func NewPostRepository(db *mongo.Database) *PostRepository {
	return &PostRepository{col: db.Collection("posts")}
}

// Insert inserts a new post document and sets its ID.
func (r *PostRepository) Insert(ctx context.Context, p *models.Post) error {
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	if p.Tags == nil {
		p.Tags = []string{}
	}
	res, err := r.col.InsertOne(ctx, p)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = oid
	}
	return nil
}

// FindByID returns a post by its ObjectID
func (r *PostRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByBlogID returns a post by its storage document id
func (r *PostRepository) FindByBlogID(ctx context.Context, blogID string) (*models.Post, error) {
	return r.findOne(ctx, bson.M{"blog_id": blogID})
}

func (r *PostRepository) findOne(ctx context.Context, filter bson.M) (*models.Post, error) {
	var p models.Post
	if err := r.col.FindOne(ctx, filter).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Update overwrites the editable fields of a post. created_at and blog_id are left untouched.
func (r *PostRepository) Update(ctx context.Context, p *models.Post) error {
	p.UpdatedAt = time.Now()
	if p.Tags == nil {
		p.Tags = []string{}
	}
	res, err := r.col.UpdateByID(ctx, p.ID, bson.M{
		"$set": bson.M{
			"updated_at":   p.UpdatedAt,
			"title":        p.Title,
			"excerpt":      p.Excerpt,
			"content":      p.Content,
			"cover_image":  p.CoverImage,
			"category":     p.Category,
			"tags":         p.Tags,
			"author":       p.Author,
			"reading_time": p.ReadingTime,
			"is_banner":    p.IsBanner,
			"is_featured":  p.IsFeatured,
		},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a post and returns the deleted document.
func (r *PostRepository) Delete(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var p models.Post
	if err := r.col.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

type ListPostsOptions struct {
	Page       int
	PageSize   int
	Category   string
	Search     string
	IsBanner   *bool
	IsFeatured *bool
}

// List returns posts with filters and pagination, sorted by created_at desc
func (r *PostRepository) List(ctx context.Context, opt ListPostsOptions) ([]models.Post, int64, error) {
	filter := BuildListFilter(opt)

	if opt.Page <= 0 {
		opt.Page = 1
	}
	if opt.PageSize <= 0 || opt.PageSize > 100 {
		opt.PageSize = 20
	}
	skip := int64((opt.Page - 1) * opt.PageSize)
	limit := int64(opt.PageSize)

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	findOpts := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{
		{Key: "created_at", Value: -1},
		{Key: "_id", Value: -1},
	})
	cur, err := r.col.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var results []models.Post
	for cur.Next(ctx) {
		var p models.Post
		if err := cur.Decode(&p); err != nil {
			return nil, 0, err
		}
		results = append(results, p)
	}
	if err := cur.Err(); err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

// BuildListFilter 는 목록 조회 필터를 만든다.
// category 는 대소문자 무시 완전 일치, search 는 title/excerpt/category 대소문자 무시 부분 일치이다.
func BuildListFilter(opt ListPostsOptions) bson.M {
	filter := bson.M{}
	if opt.Category != "" {
		filter["category"] = primitive.Regex{Pattern: "^" + regexp.QuoteMeta(opt.Category) + "$", Options: "i"}
	}
	if opt.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(opt.Search), Options: "i"}
		filter["$or"] = []bson.M{
			{"title": re},
			{"excerpt": re},
			{"category": re},
		}
	}
	if opt.IsBanner != nil {
		filter["is_banner"] = *opt.IsBanner
	}
	if opt.IsFeatured != nil {
		filter["is_featured"] = *opt.IsFeatured
	}
	return filter
}
