package ingestion_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-ingest/ingestion"
	"blog-ingest/storage"
)

type putCall struct {
	obj      ingestion.Object
	opts     ingestion.PutOptions
	deadline time.Duration
}

// recordingStore 는 MemoryStore 앞에서 Put 호출을 기록하고 n 번째 Put 을 실패시킬 수 있다.
type recordingStore struct {
	*storage.MemoryStore
	mu     sync.Mutex
	calls  []putCall
	failAt int
}

func newRecordingStore() *recordingStore {
	return &recordingStore{MemoryStore: storage.NewMemoryStore("https://cdn.example.com")}
}

func (s *recordingStore) Put(ctx context.Context, obj ingestion.Object, opts ingestion.PutOptions) (ingestion.StoredAsset, error) {
	s.mu.Lock()
	var remaining time.Duration
	if dl, ok := ctx.Deadline(); ok {
		remaining = time.Until(dl)
	}
	s.calls = append(s.calls, putCall{obj: obj, opts: opts, deadline: remaining})
	n := len(s.calls)
	s.mu.Unlock()

	if s.failAt > 0 && n == s.failAt {
		return ingestion.StoredAsset{}, errors.New("storage backend unavailable")
	}
	return s.MemoryStore.Put(ctx, obj, opts)
}

func (s *recordingStore) keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.calls))
	for _, c := range s.calls {
		out = append(out, c.obj.Key)
	}
	return out
}

func newPipeline(store ingestion.Store, e ingestion.Extractor) *ingestion.Pipeline {
	return ingestion.NewPipeline(e, store, ingestion.DefaultConfig())
}

func TestIngestScenarioDocument42(t *testing.T) {
	store := newRecordingStore()
	p := newPipeline(store, ingestion.DataURIExtractor{})

	res, err := p.Ingest(context.Background(), ingestion.Draft{
		DocumentID: "42",
		Content:    `<p><img src="data:image/png;base64,AAAA"></p>`,
		CoverImage: "data:image/png;base64,BBBB",
	})
	require.NoError(t, err)

	keys := store.keys()
	require.Len(t, keys, 2)
	assert.True(t, strings.HasPrefix(keys[0], "blogs/blog-42/content/"), keys[0])
	assert.True(t, strings.HasPrefix(keys[1], "blogs/blog-42/cover/"), keys[1])

	contentURL := "https://cdn.example.com/" + keys[0]
	assert.Equal(t, `<p><img src="`+contentURL+`"></p>`, res.Content)
	assert.NotContains(t, res.Content, "data:image/png;base64,AAAA")
	assert.Equal(t, "https://cdn.example.com/"+keys[1], res.CoverImage)
	assert.Len(t, res.Uploaded, 2)
}

func TestIngestWithoutMediaIsNoop(t *testing.T) {
	store := newRecordingStore()
	p := newPipeline(store, ingestion.DataURIExtractor{})

	content := `<h1>Hello</h1><p><img src="https://cdn.example.com/old.png"></p>`
	res, err := p.Ingest(context.Background(), ingestion.Draft{
		DocumentID: "7",
		Content:    content,
		CoverImage: "https://cdn.example.com/cover.png",
	})
	require.NoError(t, err)
	assert.Equal(t, content, res.Content)
	assert.Equal(t, "https://cdn.example.com/cover.png", res.CoverImage)
	assert.Empty(t, store.keys())
}

func TestIngestEphemeralCoverUploadsOnce(t *testing.T) {
	store := newRecordingStore()
	p := newPipeline(store, ingestion.DataURIExtractor{})

	res, err := p.Ingest(context.Background(), ingestion.Draft{
		DocumentID: "7",
		Content:    "<p>text only</p>",
		CoverImage: "data:image/jpeg;base64,/9j/4AAQ",
	})
	require.NoError(t, err)
	require.Len(t, store.keys(), 1)
	assert.True(t, strings.HasPrefix(store.keys()[0], "blogs/blog-7/cover/"))
	assert.Equal(t, "<p>text only</p>", res.Content)
}

func TestIngestDistinctPayloadsUploadEach(t *testing.T) {
	store := newRecordingStore()
	p := newPipeline(store, ingestion.DataURIExtractor{})

	doc := `<img src="data:image/png;base64,AAAA"><img src="data:image/png;base64,BBBB"><audio src="data:audio/mpeg;base64,CCCC"></audio>`
	res, err := p.Ingest(context.Background(), ingestion.Draft{DocumentID: "1", Content: doc})
	require.NoError(t, err)

	assert.Len(t, store.keys(), 3)
	assert.Empty(t, ingestion.Collect(ingestion.DataURIExtractor{}, res.Content))
}

func TestIngestDeduplicatesIdenticalPayloads(t *testing.T) {
	store := newRecordingStore()
	p := newPipeline(store, ingestion.DataURIExtractor{})

	doc := `<img src="data:image/png;base64,AAAA"><p>between</p><img src="data:image/png;base64,AAAA">`
	res, err := p.Ingest(context.Background(), ingestion.Draft{DocumentID: "1", Content: doc})
	require.NoError(t, err)

	keys := store.keys()
	require.Len(t, keys, 1)
	url := "https://cdn.example.com/" + keys[0]
	assert.Equal(t, `<img src="`+url+`"><p>between</p><img src="`+url+`">`, res.Content)
}

func TestIngestOutputIsFixedPoint(t *testing.T) {
	docs := []struct {
		extractor ingestion.Extractor
		draft     ingestion.Draft
	}{
		{
			extractor: ingestion.DataURIExtractor{},
			draft: ingestion.Draft{
				DocumentID: "a",
				Content:    `<img src="data:image/png;base64,AAAA"><video src="data:video/mp4;base64,AAAAIGZ0eXA="></video>`,
			},
		},
		{
			extractor: ingestion.BlobURLExtractor{},
			draft: ingestion.Draft{
				DocumentID: "b",
				Content:    `<img src="blob:http://localhost/1"><img src="blob:http://localhost/2">`,
				Attachments: map[string]string{
					"blob:http://localhost/1": "data:image/png;base64,AAAA",
					"blob:http://localhost/2": "data:image/gif;base64,R0lGODlh",
				},
			},
		},
	}

	for _, d := range docs {
		p := newPipeline(newRecordingStore(), d.extractor)
		res, err := p.Ingest(context.Background(), d.draft)
		require.NoError(t, err)
		assert.Empty(t, ingestion.Collect(d.extractor, res.Content))
		assert.False(t, ingestion.HasEphemeral(res.Content))

		again, err := p.Ingest(context.Background(), ingestion.Draft{DocumentID: d.draft.DocumentID, Content: res.Content})
		require.NoError(t, err)
		assert.Equal(t, res.Content, again.Content)
		assert.Empty(t, again.Uploaded)
	}
}

func TestIngestRoutesVideoThroughChunkedMode(t *testing.T) {
	store := newRecordingStore()
	p := ingestion.NewPipeline(ingestion.DataURIExtractor{}, store, ingestion.Config{
		DefaultTimeout: 5 * time.Second,
		VideoTimeout:   2 * time.Minute,
		ChunkSizeBytes: 6 * 1024 * 1024,
	})

	doc := `<video src="data:video/mp4;base64,AAAAIGZ0eXA="></video><img src="data:image/png;base64,iVBORw0KGgo="><audio src="data:audio/mpeg;base64,SUQz"></audio>`
	_, err := p.Ingest(context.Background(), ingestion.Draft{DocumentID: "v", Content: doc})
	require.NoError(t, err)

	require.Len(t, store.calls, 3)

	video := store.calls[0]
	assert.True(t, video.opts.Chunked)
	assert.Equal(t, int64(6*1024*1024), video.opts.ChunkSize)
	assert.Equal(t, ingestion.ResourceVideo, video.opts.ResourceType)
	assert.Greater(t, video.deadline, 5*time.Second)

	image := store.calls[1]
	assert.False(t, image.opts.Chunked)
	assert.Equal(t, ingestion.ResourceImage, image.opts.ResourceType)
	assert.LessOrEqual(t, image.deadline, 5*time.Second)
	assert.Equal(t, "image/png", image.obj.ContentType)
	assert.True(t, strings.HasSuffix(image.obj.Key, ".png"), image.obj.Key)

	audio := store.calls[2]
	assert.False(t, audio.opts.Chunked)
	assert.Equal(t, ingestion.ResourceAudio, audio.opts.ResourceType)
}

func TestIngestSamePayloadDifferentDocuments(t *testing.T) {
	store := newRecordingStore()
	p := newPipeline(store, ingestion.DataURIExtractor{})
	doc := `<img src="data:image/png;base64,AAAA">`

	_, err := p.Ingest(context.Background(), ingestion.Draft{DocumentID: "A", Content: doc})
	require.NoError(t, err)
	_, err = p.Ingest(context.Background(), ingestion.Draft{DocumentID: "B", Content: doc})
	require.NoError(t, err)

	keys := store.keys()
	require.Len(t, keys, 2)
	assert.True(t, strings.HasPrefix(keys[0], "blogs/blog-A/content/"))
	assert.True(t, strings.HasPrefix(keys[1], "blogs/blog-B/content/"))
}

func TestIngestSecondMediaFailureAbortsAndCleansUp(t *testing.T) {
	store := newRecordingStore()
	store.failAt = 2
	p := newPipeline(store, ingestion.DataURIExtractor{})

	_, err := p.Ingest(context.Background(), ingestion.Draft{
		DocumentID: "9",
		Content:    `<img src="data:image/png;base64,AAAA"><img src="data:image/png;base64,BBBB">`,
		CoverImage: "data:image/png;base64,CCCC",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ingestion.ErrMediaUpload)
	assert.NotErrorIs(t, err, ingestion.ErrCoverUpload)

	assert.Len(t, store.calls, 2, "cover must not be attempted after a content failure")
	assert.Equal(t, 0, store.Len(), "first upload must be deleted")
}

func TestIngestCoverFailureIsDistinguished(t *testing.T) {
	store := newRecordingStore()
	store.failAt = 2
	p := newPipeline(store, ingestion.DataURIExtractor{})

	_, err := p.Ingest(context.Background(), ingestion.Draft{
		DocumentID: "9",
		Content:    `<img src="data:image/png;base64,AAAA">`,
		CoverImage: "data:image/png;base64,CCCC",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ingestion.ErrCoverUpload)
	assert.NotErrorIs(t, err, ingestion.ErrMediaUpload)
	assert.Equal(t, 0, store.Len())
}

func TestIngestUnresolvedBlobFails(t *testing.T) {
	store := newRecordingStore()
	p := newPipeline(store, ingestion.BlobURLExtractor{})

	_, err := p.Ingest(context.Background(), ingestion.Draft{
		DocumentID: "1",
		Content:    `<img src="blob:http://localhost/missing">`,
	})
	assert.ErrorIs(t, err, ingestion.ErrMediaUpload)
	assert.ErrorIs(t, err, ingestion.ErrUnresolvedReference)
	assert.Empty(t, store.calls)
}

func TestIngestBlobCover(t *testing.T) {
	store := newRecordingStore()
	p := newPipeline(store, ingestion.BlobURLExtractor{})

	res, err := p.Ingest(context.Background(), ingestion.Draft{
		DocumentID:  "1",
		Content:     `<p>x</p>`,
		CoverImage:  "blob:http://localhost/cover",
		Attachments: map[string]string{"blob:http://localhost/cover": "data:image/png;base64,AAAA"},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.CoverImage, "https://cdn.example.com/blogs/blog-1/cover/"))
}

func TestIngestHonoursCancellation(t *testing.T) {
	store := newRecordingStore()
	p := newPipeline(store, ingestion.DataURIExtractor{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Ingest(ctx, ingestion.Draft{
		DocumentID: "1",
		Content:    `<img src="data:image/png;base64,AAAA">`,
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, store.calls)
}

func TestIngestRequiresDocumentID(t *testing.T) {
	p := newPipeline(newRecordingStore(), ingestion.DataURIExtractor{})
	_, err := p.Ingest(context.Background(), ingestion.Draft{Content: "<p></p>"})
	assert.Error(t, err)
}

func TestDiscardAndPurge(t *testing.T) {
	store := newRecordingStore()
	p := newPipeline(store, ingestion.DataURIExtractor{})

	res, err := p.Ingest(context.Background(), ingestion.Draft{
		DocumentID: "p",
		Content:    `<img src="data:image/png;base64,AAAA"><img src="data:image/png;base64,BBBB">`,
		CoverImage: "data:image/png;base64,CCCC",
	})
	require.NoError(t, err)
	require.Equal(t, 3, store.Len())

	require.NoError(t, p.Discard(context.Background(), res.Uploaded[:1]))
	assert.Equal(t, 2, store.Len())

	deleted, err := p.Purge(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)
	assert.Equal(t, 0, store.Len())
}

func TestWithExtractorSharesStore(t *testing.T) {
	store := newRecordingStore()
	p := newPipeline(store, ingestion.DataURIExtractor{})
	blob := p.WithExtractor(ingestion.BlobURLExtractor{})

	assert.Equal(t, ingestion.ExtractorDataURI, p.Extractor().Name())
	assert.Equal(t, ingestion.ExtractorBlobURL, blob.Extractor().Name())

	_, err := blob.Ingest(context.Background(), ingestion.Draft{
		DocumentID:  "s",
		Content:     `<img src="blob:x">`,
		Attachments: map[string]string{"blob:x": "data:image/png;base64,AAAA"},
	})
	require.NoError(t, err)
	assert.Len(t, store.calls, 1)
}

func TestIngestDecodesWholeWrappedPayload(t *testing.T) {
	store := newRecordingStore()
	p := newPipeline(store, ingestion.DataURIExtractor{})

	res, err := p.Ingest(context.Background(), ingestion.Draft{
		DocumentID: "w",
		Content:    "<img src=\"data:image/png;base64,iVBORw0K\nGgoAAAAN\"><img src=\"data:image/png;base64,iVBORw0KGg_-AAAN\">",
	})
	require.NoError(t, err)

	require.Len(t, store.calls, 2)
	assert.Len(t, store.calls[0].obj.Body, 12)
	assert.Len(t, store.calls[1].obj.Body, 12)
	assert.Equal(t, `<img src="https://cdn.example.com/`+store.calls[0].obj.Key+`"><img src="https://cdn.example.com/`+store.calls[1].obj.Key+`">`, res.Content)
	assert.False(t, ingestion.HasEphemeral(res.Content))
}

func TestIngestRejectsCutOffPayload(t *testing.T) {
	store := newRecordingStore()
	p := newPipeline(store, ingestion.DataURIExtractor{})

	_, err := p.Ingest(context.Background(), ingestion.Draft{
		DocumentID: "c",
		Content:    `<img src="data:image/png;base64,AAAA"><img src="data:image/png;base64,AAAA%BBBB">`,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ingestion.ErrMediaUpload)
	assert.ErrorIs(t, err, ingestion.ErrInvalidPayload)
	assert.Equal(t, 0, store.Len())
}
