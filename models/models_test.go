package models

import (
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPost() Post {
	return Post{
		BlogID:      "b1",
		Title:       "Hello",
		Excerpt:     "short",
		Content:     "<p>body</p>",
		CoverImage:  "https://cdn.example.com/cover.png",
		Category:    "news",
		Author:      "ops",
		ReadingTime: "1 min read",
	}
}

func TestPostValidate(t *testing.T) {
	assert.NoError(t, validPost().Validate())

	p := validPost()
	p.Title = ""
	p.CoverImage = ""
	err := p.Validate()
	require.Error(t, err)

	errs, ok := err.(validation.Errors)
	require.True(t, ok)
	assert.Contains(t, errs, "title")
	assert.Contains(t, errs, "cover_image")
	assert.NotContains(t, errs, "excerpt")
}

func TestUserValidate(t *testing.T) {
	u := User{Name: "Admin", Email: "admin@example.com", PasswordHash: "$2a$10$hash", Role: RoleAdmin}
	assert.NoError(t, u.Validate())

	u.Email = "not-an-email"
	assert.Error(t, u.Validate())

	u.Email = "admin@example.com"
	u.Role = "owner"
	assert.Error(t, u.Validate())
}
