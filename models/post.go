package models

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrEphemeralMedia = errors.New("content still references unresolved inline media")
	ErrDroppedMedia   = errors.New("uploaded media is no longer referenced after sanitizing")
)

// Post represents a published blog post
// Collection: posts
//
// BlogID 는 스토리지 경로(blogs/blog-<BlogID>/...)에 쓰이는 문서 식별자이며 생성 후 바뀌지 않는다.
type Post struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
	BlogID      string             `bson:"blog_id" json:"blog_id"`
	Title       string             `bson:"title" json:"title"`
	Excerpt     string             `bson:"excerpt" json:"excerpt"`
	Content     string             `bson:"content" json:"content"`
	CoverImage  string             `bson:"cover_image" json:"cover_image"`
	Category    string             `bson:"category" json:"category"`
	Tags        []string           `bson:"tags" json:"tags"`
	Author      string             `bson:"author" json:"author"`
	ReadingTime string             `bson:"reading_time" json:"reading_time"`
	IsBanner    bool               `bson:"is_banner" json:"is_banner"`
	IsFeatured  bool               `bson:"is_featured" json:"is_featured"`
}

// Validate 는 저장 전 필수 필드를 검사한다.
func (p Post) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.BlogID, validation.Required),
		validation.Field(&p.Title, validation.Required, validation.Length(1, 300)),
		validation.Field(&p.Excerpt, validation.Required),
		validation.Field(&p.Content, validation.Required),
		validation.Field(&p.CoverImage, validation.Required),
		validation.Field(&p.Category, validation.Required),
		validation.Field(&p.Author, validation.Required),
		validation.Field(&p.ReadingTime, validation.Required),
	)
}
