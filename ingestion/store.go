package ingestion

import (
	"context"
	"time"
)

type Purpose string

const (
	PurposeCover   Purpose = "cover"
	PurposeContent Purpose = "content"
)

// Resource types reported alongside a stored asset.
const (
	ResourceImage = "image"
	ResourceVideo = "video"
	ResourceAudio = "audio"
	ResourceRaw   = "raw"
)

// StoredAsset 는 업로드 결과이다. 업로드 이후에는 스토리지가 소유하며 파이프라인은 변경하지 않는다.
type StoredAsset struct {
	URL          string
	Key          string
	Folder       string
	ContentType  string
	ResourceType string
	Size         int64
}

type Object struct {
	Key         string
	ContentType string
	Body        []byte
}

type PutOptions struct {
	Folder       string
	ResourceType string
	// Chunked 이면 ChunkSize 단위 multipart 업로드를 사용한다.
	Chunked   bool
	ChunkSize int64
}

type ObjectInfo struct {
	Key          string
	URL          string
	Size         int64
	LastModified time.Time
}

// Store 는 미디어를 보관하는 오브젝트 스토리지이다.
type Store interface {
	Put(ctx context.Context, obj Object, opts PutOptions) (StoredAsset, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
}

// DocumentPrefix 는 문서 하나의 에셋이 모두 놓이는 경로이다.
func DocumentPrefix(documentID string) string {
	return "blogs/blog-" + documentID + "/"
}

// Folder 는 blogs/blog-<documentId>/<purpose> 경로를 만든다.
func Folder(documentID string, purpose Purpose) string {
	return DocumentPrefix(documentID) + string(purpose)
}
