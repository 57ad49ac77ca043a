package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBuildListFilterEmpty(t *testing.T) {
	assert.Empty(t, BuildListFilter(ListPostsOptions{}))
}

func TestBuildListFilterCategoryIsAnchoredAndEscaped(t *testing.T) {
	f := BuildListFilter(ListPostsOptions{Category: "C++ (news)"})

	re, ok := f["category"].(primitive.Regex)
	require.True(t, ok)
	assert.Equal(t, `^C\+\+ \(news\)$`, re.Pattern)
	assert.Equal(t, "i", re.Options)
}

func TestBuildListFilterSearchMatchesTitleExcerptCategory(t *testing.T) {
	f := BuildListFilter(ListPostsOptions{Search: "go.dev"})

	or, ok := f["$or"].([]bson.M)
	require.True(t, ok)
	require.Len(t, or, 3)
	for i, field := range []string{"title", "excerpt", "category"} {
		re, ok := or[i][field].(primitive.Regex)
		require.True(t, ok, field)
		assert.Equal(t, `go\.dev`, re.Pattern)
		assert.Equal(t, "i", re.Options)
	}
}

func TestBuildListFilterFlags(t *testing.T) {
	yes, no := true, false
	f := BuildListFilter(ListPostsOptions{IsBanner: &yes, IsFeatured: &no})

	assert.Equal(t, true, f["is_banner"])
	assert.Equal(t, false, f["is_featured"])
}
