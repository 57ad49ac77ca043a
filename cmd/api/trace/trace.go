package trace

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"

	"blog-ingest/internal/logger"
)

type ctxKey string

const ctxKeyTrace ctxKey = "trace_info"

// Info 는 하나의 HTTP 요청에 대한 추적 정보이다.
// 게시글 저장 요청은 본문 인제스천을 한 번 이상 실행할 수 있으므로
// 실행 순번(1,2,3,...)을 요청 단위로 센다.
type Info struct {
	RequestID string
	runs      atomic.Int64
}

// NewRequestID 는 클라이언트가 X-Request-Id 를 보내지 않았을 때 쓸 ID 를 만든다.
func NewRequestID() string {
	return uuid.NewString()
}

// WithRequest 는 requestID 와 빈 실행 카운터를 담은 컨텍스트를 반환한다.
func WithRequest(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKeyTrace, &Info{RequestID: requestID})
}

func infoFromContext(ctx context.Context) *Info {
	if ctx == nil {
		return nil
	}
	v, _ := ctx.Value(ctxKeyTrace).(*Info)
	return v
}

func RequestIDFromContext(ctx context.Context) string {
	info := infoFromContext(ctx)
	if info == nil {
		return ""
	}
	return info.RequestID
}

// IngestionRuns 는 이 요청에서 지금까지 시작된 인제스천 실행 수이다.
func IngestionRuns(ctx context.Context) int64 {
	info := infoFromContext(ctx)
	if info == nil {
		return 0
	}
	return info.runs.Load()
}

// StartIngestion 은 실행 카운터를 올리고 (requestID, 실행 순번)을 돌려준다.
// 미들웨어를 거치지 않은 컨텍스트(시드, 배치)에서는 새 ID 와 순번 1 을 쓴다.
func StartIngestion(ctx context.Context) (string, int64) {
	info := infoFromContext(ctx)
	if info == nil {
		return NewRequestID(), 1
	}
	return info.RequestID, info.runs.Add(1)
}

// IngestionFields 는 인제스천 로그에 공통으로 붙는 필드를 만든다.
func IngestionFields(ctx context.Context, documentID string) logger.Fields {
	requestID, run := StartIngestion(ctx)
	return logger.Fields{
		"request_id":    requestID,
		"ingestion_run": run,
		"document_id":   documentID,
	}
}
