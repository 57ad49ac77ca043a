package sweeper

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"blog-ingest/ingestion"
	"blog-ingest/internal/logger"
	"blog-ingest/models"
	"blog-ingest/repositories"
)

const rootPrefix = "blogs/"

// PostLookup 은 문서 식별자로 글을 찾는다. repositories.PostRepository 가 구현한다.
type PostLookup interface {
	FindByBlogID(ctx context.Context, blogID string) (*models.Post, error)
}

type Options struct {
	// MinAge 보다 최근에 올라간 에셋은 아직 저장 중인 인제스천의 것일 수 있으므로 건너뛴다.
	MinAge time.Duration
	DryRun bool
	Now    func() time.Time
}

// Report 는 한 번의 스윕 결과이다.
type Report struct {
	Documents int
	Scanned   int
	Skipped   int
	Orphaned  []string
	Deleted   int
}

// Sweeper 는 어떤 글도 참조하지 않는 스토리지 에셋을 회수한다.
type Sweeper struct {
	store ingestion.Store
	posts PostLookup
	opts  Options
}

func New(store ingestion.Store, posts PostLookup, opts Options) *Sweeper {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Sweeper{store: store, posts: posts, opts: opts}
}

// Run 은 blogs/ 아래 전체를 한 번 훑는다.
// 글이 없는 문서의 에셋은 모두, 글이 있는 문서는 본문/커버가 참조하지 않는 에셋만 지운다.
func (s *Sweeper) Run(ctx context.Context) (Report, error) {
	var rep Report

	objs, err := s.store.List(ctx, rootPrefix)
	if err != nil {
		return rep, fmt.Errorf("list %s: %w", rootPrefix, err)
	}
	rep.Scanned = len(objs)

	groups := groupByDocument(objs)
	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	rep.Documents = len(ids)

	cutoff := s.opts.Now().Add(-s.opts.MinAge)
	var errs []error
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return rep, err
		}

		post, err := s.posts.FindByBlogID(ctx, id)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			errs = append(errs, fmt.Errorf("lookup %s: %w", id, err))
			continue
		}

		for _, o := range groups[id] {
			if !o.LastModified.IsZero() && o.LastModified.After(cutoff) {
				rep.Skipped++
				continue
			}
			if post != nil && referenced(post, o) {
				continue
			}
			rep.Orphaned = append(rep.Orphaned, o.Key)
			if s.opts.DryRun {
				continue
			}
			if err := s.store.Delete(ctx, o.Key); err != nil {
				errs = append(errs, fmt.Errorf("delete %s: %w", o.Key, err))
				continue
			}
			rep.Deleted++
		}
	}

	logger.InfoWithFields("sweep finished", logger.Fields{
		"documents": rep.Documents,
		"scanned":   rep.Scanned,
		"skipped":   rep.Skipped,
		"orphaned":  len(rep.Orphaned),
		"deleted":   rep.Deleted,
		"dry_run":   s.opts.DryRun,
	})
	return rep, errors.Join(errs...)
}

// DocumentID 는 "blogs/blog-<id>/..." 형태의 키에서 문서 식별자를 꺼낸다.
func DocumentID(key string) (string, bool) {
	rest, ok := strings.CutPrefix(key, rootPrefix+"blog-")
	if !ok {
		return "", false
	}
	id, _, ok := strings.Cut(rest, "/")
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

func groupByDocument(objs []ingestion.ObjectInfo) map[string][]ingestion.ObjectInfo {
	out := make(map[string][]ingestion.ObjectInfo)
	for _, o := range objs {
		id, ok := DocumentID(o.Key)
		if !ok {
			continue
		}
		out[id] = append(out[id], o)
	}
	return out
}

func referenced(p *models.Post, o ingestion.ObjectInfo) bool {
	if o.URL != "" && (p.CoverImage == o.URL || strings.Contains(p.Content, o.URL)) {
		return true
	}
	// URL 을 모르는 백엔드라도 키는 항상 URL 의 접미사이다.
	return strings.HasSuffix(p.CoverImage, o.Key) || strings.Contains(p.Content, o.Key)
}
