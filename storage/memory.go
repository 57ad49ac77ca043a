package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"blog-ingest/ingestion"
)

type memoryObject struct {
	contentType string
	body        []byte
	modified    time.Time
}

// DefaultMemoryBaseURL 은 public_base_url 이 비어 있을 때 쓰는 주소이다.
// 본문 sanitizer 가 http(s) src 만 남기므로 반드시 http(s) 여야 한다.
const DefaultMemoryBaseURL = "http://localhost:8080/media"

// MemoryStore 는 프로세스 메모리에 에셋을 보관한다. 로컬 개발과 테스트용이다.
type MemoryStore struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string]memoryObject
	now     func() time.Time
}

func NewMemoryStore(baseURL string) *MemoryStore {
	if baseURL == "" {
		baseURL = DefaultMemoryBaseURL
	}
	return &MemoryStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		objects: make(map[string]memoryObject),
		now:     time.Now,
	}
}

// SetClock 은 LastModified 계산에 사용할 시계를 바꾼다.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *MemoryStore) URL(key string) string {
	return s.baseURL + "/" + key
}

func (s *MemoryStore) Put(ctx context.Context, obj ingestion.Object, opts ingestion.PutOptions) (ingestion.StoredAsset, error) {
	if err := ctx.Err(); err != nil {
		return ingestion.StoredAsset{}, err
	}
	if obj.Key == "" {
		return ingestion.StoredAsset{}, fmt.Errorf("object key is required")
	}
	body := make([]byte, len(obj.Body))
	copy(body, obj.Body)

	s.mu.Lock()
	s.objects[obj.Key] = memoryObject{contentType: obj.ContentType, body: body, modified: s.now()}
	s.mu.Unlock()

	return ingestion.StoredAsset{
		URL:          s.URL(obj.Key),
		Key:          obj.Key,
		Folder:       opts.Folder,
		ContentType:  obj.ContentType,
		ResourceType: opts.ResourceType,
		Size:         int64(len(body)),
	}, nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.objects, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) List(ctx context.Context, prefix string) ([]ingestion.ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []ingestion.ObjectInfo
	for key, o := range s.objects {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		out = append(out, ingestion.ObjectInfo{
			Key:          key,
			URL:          s.URL(key),
			Size:         int64(len(o.body)),
			LastModified: o.modified,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Get 은 저장된 오브젝트의 바이트와 content type 을 반환한다.
func (s *MemoryStore) Get(key string) ([]byte, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.objects[key]
	if !ok {
		return nil, "", false
	}
	return o.body, o.contentType, true
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
