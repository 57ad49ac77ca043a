package ingestion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"blog-ingest/internal/logger"
)

var (
	ErrMediaUpload = errors.New("media upload failed")
	ErrCoverUpload = errors.New("cover image upload failed")
)

const cleanupTimeout = 30 * time.Second

// Draft 는 저장 직전의 편집 문서이다.
type Draft struct {
	DocumentID string
	Content    string
	CoverImage string
	// Attachments 는 blob URL -> data URI 매핑이다. blob-url 에디터가 보낸 경우에만 채워진다.
	Attachments map[string]string
}

type Result struct {
	Content    string
	CoverImage string
	// Uploaded 는 이번 실행에서 새로 올라간 에셋이다. 저장 실패 시 Discard 로 회수한다.
	Uploaded []StoredAsset
}

// Pipeline 은 문서의 임시 미디어 참조를 추출하고, 업로드하고, 안정적인 URL 로 치환한다.
type Pipeline struct {
	extractor Extractor
	uploader  *Uploader
	store     Store
}

func NewPipeline(extractor Extractor, store Store, cfg Config) *Pipeline {
	if extractor == nil {
		extractor = DataURIExtractor{}
	}
	return &Pipeline{
		extractor: extractor,
		uploader:  NewUploader(store, cfg),
		store:     store,
	}
}

func (p *Pipeline) Extractor() Extractor { return p.extractor }

// WithExtractor 는 같은 스토리지/설정을 공유하고 추출 전략만 다른 파이프라인을 돌려준다.
func (p *Pipeline) WithExtractor(e Extractor) *Pipeline {
	cp := *p
	cp.extractor = e
	return &cp
}

// Ingest 는 본문 미디어를 문서 순서대로 하나씩 업로드한 뒤 커버를 업로드한다.
// 동일 payload 는 한 번만 업로드되고 모든 위치가 같은 URL 을 참조한다.
// 어느 업로드든 실패하면 이번 실행에서 올라간 에셋을 지우고 에러를 반환한다.
func (p *Pipeline) Ingest(ctx context.Context, d Draft) (Result, error) {
	if d.DocumentID == "" {
		return Result{}, fmt.Errorf("document id is required")
	}

	resolver := Resolver{Attachments: d.Attachments}
	byHash := make(map[string]StoredAsset)
	var uploaded []StoredAsset
	var reps []Replacement

	fail := func(kind error, err error) (Result, error) {
		p.Discard(ctx, uploaded)
		logger.ErrorWithFields("ingestion failed", logger.Fields{
			"document_id": d.DocumentID,
			"extractor":   p.extractor.Name(),
			"uploaded":    len(uploaded),
			"error":       err.Error(),
		})
		return Result{}, fmt.Errorf("%w: %w", kind, err)
	}

	for span := range p.extractor.Extract(d.Content) {
		if err := ctx.Err(); err != nil {
			return fail(ErrMediaUpload, err)
		}
		media, err := resolver.Resolve(span)
		if err != nil {
			return fail(ErrMediaUpload, err)
		}
		hash := media.Hash()
		asset, seen := byHash[hash]
		if !seen {
			asset, err = p.uploader.Upload(ctx, media, d.DocumentID, PurposeContent)
			if err != nil {
				return fail(ErrMediaUpload, err)
			}
			byHash[hash] = asset
			uploaded = append(uploaded, asset)
		}
		reps = append(reps, Replacement{Start: span.Start, End: span.End, URL: asset.URL})
	}

	content, err := Rewrite(d.Content, reps)
	if err != nil {
		return fail(ErrMediaUpload, err)
	}

	cover := d.CoverImage
	if IsEphemeral(cover) {
		if err := ctx.Err(); err != nil {
			return fail(ErrCoverUpload, err)
		}
		media, err := resolver.ResolveRef(cover)
		if err != nil {
			return fail(ErrCoverUpload, err)
		}
		asset, err := p.uploader.Upload(ctx, media, d.DocumentID, PurposeCover)
		if err != nil {
			return fail(ErrCoverUpload, err)
		}
		uploaded = append(uploaded, asset)
		cover = asset.URL
	}

	return Result{Content: content, CoverImage: cover, Uploaded: uploaded}, nil
}

// Discard 는 주어진 에셋을 동기적으로 삭제한다.
// 요청 컨텍스트가 취소된 뒤에도 정리가 끝나도록 취소 신호와 분리된 컨텍스트를 사용한다.
func (p *Pipeline) Discard(ctx context.Context, assets []StoredAsset) error {
	if len(assets) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()

	var errs []error
	for _, a := range assets {
		if err := p.store.Delete(ctx, a.Key); err != nil {
			logger.WarnWithFields("failed to delete orphaned asset", logger.Fields{
				"key":   a.Key,
				"error": err.Error(),
			})
			errs = append(errs, fmt.Errorf("delete %s: %w", a.Key, err))
		}
	}
	return errors.Join(errs...)
}

// Purge 는 문서 하나의 스토리지 경로 아래 에셋을 모두 삭제한다.
func (p *Pipeline) Purge(ctx context.Context, documentID string) (int, error) {
	if documentID == "" {
		return 0, fmt.Errorf("document id is required")
	}
	objs, err := p.store.List(ctx, DocumentPrefix(documentID))
	if err != nil {
		return 0, err
	}
	deleted := 0
	var errs []error
	for _, o := range objs {
		if err := p.store.Delete(ctx, o.Key); err != nil {
			errs = append(errs, fmt.Errorf("delete %s: %w", o.Key, err))
			continue
		}
		deleted++
	}
	return deleted, errors.Join(errs...)
}
