package ingestion

import (
	"fmt"
	"slices"
	"strings"
)

// Replacement 은 document[Start:End] 를 URL 로 바꾸는 지시이다.
type Replacement struct {
	Start int
	End   int
	URL   string
}

// Rewrite 는 원본 오프셋 기준으로 치환한다. 문자열 검색을 하지 않으므로
// 같은 payload 가 여러 번 나오거나 다른 payload 의 부분 문자열이어도 정확히 해당 위치만 바뀐다.
// 치환 구간은 겹치면 안 된다.
func Rewrite(document string, reps []Replacement) (string, error) {
	if len(reps) == 0 {
		return document, nil
	}
	sorted := slices.Clone(reps)
	slices.SortFunc(sorted, func(a, b Replacement) int { return b.Start - a.Start })

	limit := len(document)
	for _, r := range sorted {
		if r.Start < 0 || r.End < r.Start || r.End > limit {
			return "", fmt.Errorf("replacement [%d,%d) out of range or overlapping", r.Start, r.End)
		}
		limit = r.Start
	}

	var b strings.Builder
	b.Grow(len(document))
	prev := 0
	for i := len(sorted) - 1; i >= 0; i-- {
		r := sorted[i]
		b.WriteString(document[prev:r.Start])
		b.WriteString(r.URL)
		prev = r.End
	}
	b.WriteString(document[prev:])
	return b.String(), nil
}
