package sanitizer

import (
	"github.com/microcosm-cc/bluemonday"
)

// HTMLSanitizer 는 저장 직전 본문에서 스크립트, 이벤트 핸들러, javascript: URL 등을 제거한다.
// 에디터가 만드는 이미지, 동영상, 오디오, 유튜브 임베드와 목록 스타일은 유지한다.
//
// 동시 사용에 안전하다.
type HTMLSanitizer struct {
	policy *bluemonday.Policy
}

func NewHTMLSanitizer() *HTMLSanitizer {
	policy := bluemonday.UGCPolicy()

	policy.AllowElements("video", "audio", "source")
	policy.AllowAttrs("src", "controls", "poster", "preload", "loop", "muted").OnElements("video", "audio")
	policy.AllowAttrs("src", "type").OnElements("source")

	policy.AllowElements("iframe")
	policy.AllowAttrs("src", "width", "height", "frameborder", "allow", "allowfullscreen").OnElements("iframe")

	policy.AllowAttrs("class").OnElements("img", "iframe", "video", "div")
	policy.AllowStyles("list-style-type", "padding-left", "margin", "margin-bottom", "color").OnElements("ul", "ol", "li")

	return &HTMLSanitizer{policy: policy}
}

// Sanitize 는 위험한 마크업을 제거한 본문을 반환한다.
func (s *HTMLSanitizer) Sanitize(html string) string {
	return s.policy.Sanitize(html)
}
