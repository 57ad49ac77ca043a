package sweeper_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-ingest/ingestion"
	"blog-ingest/models"
	"blog-ingest/repositories"
	"blog-ingest/storage"
	"blog-ingest/sweeper"
)

type postsByBlogID map[string]models.Post

func (m postsByBlogID) FindByBlogID(_ context.Context, id string) (*models.Post, error) {
	p, ok := m[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &p, nil
}

func put(t *testing.T, s *storage.MemoryStore, key string) string {
	t.Helper()
	a, err := s.Put(context.Background(), ingestion.Object{Key: key, ContentType: "image/png", Body: []byte("x")}, ingestion.PutOptions{})
	require.NoError(t, err)
	return a.URL
}

func setup(t *testing.T) (*storage.MemoryStore, postsByBlogID, time.Time) {
	t.Helper()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := storage.NewMemoryStore("https://cdn.example.com")
	store.SetClock(func() time.Time { return now.Add(-2 * time.Hour) })

	keptContent := put(t, store, "blogs/blog-a/content/1.png")
	keptCover := put(t, store, "blogs/blog-a/cover/2.png")
	put(t, store, "blogs/blog-a/content/stale.png")
	put(t, store, "blogs/blog-gone/content/3.png")
	put(t, store, "blogs/blog-gone/cover/4.png")

	// 방금 올라간 에셋은 아직 저장 중인 글의 것일 수 있다.
	store.SetClock(func() time.Time { return now.Add(-time.Minute) })
	put(t, store, "blogs/blog-new/content/5.png")

	posts := postsByBlogID{
		"a": {BlogID: "a", Content: `<img src="` + keptContent + `">`, CoverImage: keptCover},
	}
	return store, posts, now
}

func TestRunDeletesOrphans(t *testing.T) {
	store, posts, now := setup(t)

	rep, err := sweeper.New(store, posts, sweeper.Options{MinAge: time.Hour, Now: func() time.Time { return now }}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, rep.Documents)
	assert.Equal(t, 6, rep.Scanned)
	assert.Equal(t, 1, rep.Skipped)
	assert.ElementsMatch(t, []string{
		"blogs/blog-a/content/stale.png",
		"blogs/blog-gone/content/3.png",
		"blogs/blog-gone/cover/4.png",
	}, rep.Orphaned)
	assert.Equal(t, 3, rep.Deleted)

	left, err := store.List(context.Background(), "blogs/")
	require.NoError(t, err)
	keys := make([]string, 0, len(left))
	for _, o := range left {
		keys = append(keys, o.Key)
	}
	assert.Equal(t, []string{
		"blogs/blog-a/content/1.png",
		"blogs/blog-a/cover/2.png",
		"blogs/blog-new/content/5.png",
	}, keys)
}

func TestRunDryRunKeepsEverything(t *testing.T) {
	store, posts, now := setup(t)

	rep, err := sweeper.New(store, posts, sweeper.Options{MinAge: time.Hour, DryRun: true, Now: func() time.Time { return now }}).Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, rep.Orphaned, 3)
	assert.Equal(t, 0, rep.Deleted)
	assert.Equal(t, 6, store.Len())
}

func TestDocumentID(t *testing.T) {
	id, ok := sweeper.DocumentID("blogs/blog-42/content/x.png")
	assert.True(t, ok)
	assert.Equal(t, "42", id)

	_, ok = sweeper.DocumentID("blogs/other/x.png")
	assert.False(t, ok)
	_, ok = sweeper.DocumentID("blogs/blog-/x.png")
	assert.False(t, ok)
	_, ok = sweeper.DocumentID("blogs/blog-42")
	assert.False(t, ok)
}
