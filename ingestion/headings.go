package ingestion

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// NormalizeHeadings 는 <h1>/<h2> 시작 태그의 속성을 모두 제거한다.
// 나머지 토큰은 원본 바이트 그대로 복사하므로 data URI 등 payload 가 변형되지 않는다.
func NormalizeHeadings(content string) string {
	z := html.NewTokenizer(strings.NewReader(content))
	var b strings.Builder
	b.Grow(len(content))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if z.Err() == io.EOF {
				return b.String()
			}
			// 토크나이저가 처리하지 못하는 입력은 손대지 않는다.
			return content
		}
		// TagName 이 버퍼를 소문자로 바꾸므로 먼저 복사해 둔다.
		raw := string(z.Raw())
		if tt == html.StartTagToken || tt == html.SelfClosingTagToken {
			name, hasAttr := z.TagName()
			if hasAttr && (string(name) == "h1" || string(name) == "h2") {
				b.WriteString("<" + string(name) + ">")
				continue
			}
		}
		b.WriteString(raw)
	}
}
