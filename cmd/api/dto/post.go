package dto

import "time"

// PostDTO 는 블로그 글 응답 스키마이다.
// 필드 이름은 기존 프런트엔드 계약(camelCase)을 그대로 따른다.
type PostDTO struct {
	ID          string    `json:"id" example:"665f1c2e9b1e8a3d4c5b6a79"`
	BlogID      string    `json:"blogId" example:"0b7f4a52-8c1e-4d5e-9f00-2a7c9d3e1b11"`
	Title       string    `json:"title"`
	Excerpt     string    `json:"excerpt"`
	Content     string    `json:"content"`
	CoverImage  string    `json:"coverImage" example:"https://cdn.example.com/blogs/blog-0b7f4a52/cover/a.png"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"`
	Author      string    `json:"author"`
	ReadingTime string    `json:"readingTime" example:"3 min read"`
	IsBanner    bool      `json:"isBanner"`
	IsFeatured  bool      `json:"isFeatured"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PostRequestDTO 는 글 생성/수정 요청 본문이다.
//
// content 와 coverImage 에는 data URI 또는 blob URL 이 포함될 수 있다.
// editor 가 "blob-url" 이면 attachments 에 blob URL -> data URI 매핑을 함께 보내야 한다.
type PostRequestDTO struct {
	Title       string            `json:"title" binding:"required"`
	Excerpt     string            `json:"excerpt" binding:"required"`
	Content     string            `json:"content" binding:"required"`
	CoverImage  string            `json:"coverImage" binding:"required"`
	Category    string            `json:"category" binding:"required"`
	Tags        []string          `json:"tags"`
	Author      string            `json:"author" binding:"required"`
	IsBanner    FlexBool          `json:"isBanner" swaggertype:"boolean"`
	IsFeatured  FlexBool          `json:"isFeatured" swaggertype:"boolean"`
	Editor      string            `json:"editor" example:"data-uri" enums:"data-uri,blob-url"`
	Attachments map[string]string `json:"attachments,omitempty"`
}

// PostEnvelopeDTO 는 생성/수정/삭제 응답 형식이다.
type PostEnvelopeDTO struct {
	Message string  `json:"message" example:"Blog post created successfully"`
	Post    PostDTO `json:"post"`
}

// PaginationPostDTO is explicitly defined for Swagger (generics are not supported).
type PaginationPostDTO struct {
	Data     []PostDTO `json:"data"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
	Total    int64     `json:"total"`
}
