package ingestion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"blog-ingest/internal/logger"
)

// Config 는 업로드 동작을 결정하는 명시적 설정이다. 프로세스 전역 상태를 두지 않는다.
type Config struct {
	DefaultTimeout time.Duration
	VideoTimeout   time.Duration
	ChunkSizeBytes int64
}

func DefaultConfig() Config {
	return Config{
		DefaultTimeout: 60 * time.Second,
		VideoTimeout:   2 * time.Minute,
		ChunkSizeBytes: 6 * 1024 * 1024,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.DefaultTimeout <= 0 {
		c.DefaultTimeout = d.DefaultTimeout
	}
	if c.VideoTimeout <= 0 {
		c.VideoTimeout = d.VideoTimeout
	}
	if c.ChunkSizeBytes <= 0 {
		c.ChunkSizeBytes = d.ChunkSizeBytes
	}
	return c
}

type Uploader struct {
	store Store
	cfg   Config
}

func NewUploader(store Store, cfg Config) *Uploader {
	return &Uploader{store: store, cfg: cfg.withDefaults()}
}

// IsVideo 는 선언된 MIME 으로 청크/장시간 업로드 경로 여부를 판단한다.
func IsVideo(mime string) bool {
	return strings.HasPrefix(strings.ToLower(mime), "video/")
}

// Upload 는 payload 1건을 blogs/blog-<documentID>/<purpose> 아래에 저장한다.
func (u *Uploader) Upload(ctx context.Context, media Media, documentID string, purpose Purpose) (StoredAsset, error) {
	if documentID == "" {
		return StoredAsset{}, fmt.Errorf("document id is required")
	}
	if len(media.Bytes) == 0 {
		return StoredAsset{}, fmt.Errorf("%w: empty payload", ErrInvalidPayload)
	}

	folder := Folder(documentID, purpose)
	opts := PutOptions{Folder: folder}
	timeout := u.cfg.DefaultTimeout
	contentType := media.MIME
	mode := "default"

	if IsVideo(media.MIME) {
		opts.ResourceType = ResourceVideo
		opts.Chunked = true
		opts.ChunkSize = u.cfg.ChunkSizeBytes
		timeout = u.cfg.VideoTimeout
		mode = "chunked"
	} else {
		detected := mimetype.Detect(media.Bytes)
		opts.ResourceType = resourceTypeOf(detected.String())
		if opts.ResourceType == ResourceRaw && contentType != "" {
			opts.ResourceType = resourceTypeOf(contentType)
		}
		if contentType == "" {
			contentType = detected.String()
		}
	}

	obj := Object{
		Key:         folder + "/" + uuid.NewString() + extensionFor(contentType),
		ContentType: contentType,
		Body:        media.Bytes,
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	asset, err := u.store.Put(ctx, obj, opts)
	if err != nil {
		return StoredAsset{}, err
	}
	logger.InfoWithFields("media uploaded", logger.Fields{
		"document_id":   documentID,
		"purpose":       string(purpose),
		"key":           asset.Key,
		"size":          len(media.Bytes),
		"mode":          mode,
		"resource_type": opts.ResourceType,
		"duration_ms":   time.Since(start).Milliseconds(),
	})
	return asset, nil
}

func resourceTypeOf(mime string) string {
	switch {
	case strings.HasPrefix(mime, "image/"):
		return ResourceImage
	case strings.HasPrefix(mime, "video/"):
		return ResourceVideo
	case strings.HasPrefix(mime, "audio/"):
		return ResourceAudio
	default:
		return ResourceRaw
	}
}

func extensionFor(contentType string) string {
	if contentType == "" {
		return ""
	}
	if m := mimetype.Lookup(contentType); m != nil {
		return m.Extension()
	}
	return ""
}
