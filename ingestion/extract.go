package ingestion

import (
	"fmt"
	"iter"
	"regexp"
	"slices"
	"strings"
)

const (
	ExtractorDataURI = "data-uri"
	ExtractorBlobURL = "blob-url"
)

// Span 은 문서 안에서 발견된 임시(ephemeral) 미디어 참조 1건이다.
// Start/End 는 원본 문자열의 바이트 오프셋이며 Ref == document[Start:End] 이다.
type Span struct {
	Start int
	End   int
	Ref   string
	// MIME 은 참조 자체에 선언된 타입이다. blob URL 은 첨부가 해석되기 전까지 비어 있다.
	MIME string
	// Data 는 인라인 base64 payload 이다. blob URL 이면 비어 있다.
	// 줄바꿈과 URL-safe 알파벳(-, _)이 섞여 있을 수 있으며 디코딩할 때 정규화한다.
	Data string
	// Unterminated 는 payload 바로 뒤에 따옴표, 괄호, 태그 경계, 공백 같은 종결 문자가 오지 않았다는 뜻이다.
	// base64 알파벳이 아닌 문자로 payload 가 잘린 경우이므로 해석 단계에서 거부한다.
	Unterminated bool
}

// Extractor 는 하나의 에디터가 만들어내는 임시 미디어 참조 패턴을 스캔한다.
// Extract 는 원본을 변경하지 않으며 실패하지 않는다.
type Extractor interface {
	Name() string
	Extract(document string) iter.Seq[Span]
}

var (
	dataURIPattern = regexp.MustCompile(`data:((?:image|video|audio)/[A-Za-z0-9.+\-]+);base64,([A-Za-z0-9+/_\-=\r\n]*[A-Za-z0-9+/_\-=])`)
	blobURLPattern = regexp.MustCompile(`src="(blob:[^"]+)"`)
)

// DataURIExtractor 는 마크업 어디에 있든 data:<image|video|audio>/<subtype>;base64,<payload> 를 찾는다.
type DataURIExtractor struct{}

func (DataURIExtractor) Name() string { return ExtractorDataURI }

func (DataURIExtractor) Extract(document string) iter.Seq[Span] {
	return func(yield func(Span) bool) {
		rest, offset := document, 0
		for {
			m := dataURIPattern.FindStringSubmatchIndex(rest)
			if m == nil {
				return
			}
			span := Span{
				Start:        offset + m[0],
				End:          offset + m[1],
				Ref:          rest[m[0]:m[1]],
				MIME:         rest[m[2]:m[3]],
				Data:         rest[m[4]:m[5]],
				Unterminated: !terminated(rest, m[1]),
			}
			if !yield(span) {
				return
			}
			rest, offset = rest[m[1]:], offset+m[1]
		}
	}
}

// payloadTerminators 는 data URI 가 정상적으로 끝났을 때 뒤따를 수 있는 문자이다.
const payloadTerminators = "\"')<>& \t\r\n"

func terminated(s string, end int) bool {
	return end == len(s) || strings.IndexByte(payloadTerminators, s[end]) >= 0
}

// BlobURLExtractor 는 src="blob:..." 속성 값을 찾는다. span 은 따옴표 안쪽 URL 만 가리킨다.
type BlobURLExtractor struct{}

func (BlobURLExtractor) Name() string { return ExtractorBlobURL }

func (BlobURLExtractor) Extract(document string) iter.Seq[Span] {
	return func(yield func(Span) bool) {
		rest, offset := document, 0
		for {
			m := blobURLPattern.FindStringSubmatchIndex(rest)
			if m == nil {
				return
			}
			span := Span{
				Start: offset + m[2],
				End:   offset + m[3],
				Ref:   rest[m[2]:m[3]],
			}
			if !yield(span) {
				return
			}
			rest, offset = rest[m[1]:], offset+m[1]
		}
	}
}

// ExtractorByName 은 에디터 종류 이름으로 추출 전략을 고른다.
func ExtractorByName(name string) (Extractor, error) {
	switch name {
	case ExtractorDataURI:
		return DataURIExtractor{}, nil
	case ExtractorBlobURL:
		return BlobURLExtractor{}, nil
	default:
		return nil, fmt.Errorf("unknown extractor %q", name)
	}
}

// Collect 는 추출 결과를 슬라이스로 모은다.
func Collect(e Extractor, document string) []Span {
	return slices.Collect(e.Extract(document))
}

// HasEphemeral 은 문서에 두 전략 중 어느 하나라도 매칭되는 참조가 남아 있는지 확인한다.
func HasEphemeral(document string) bool {
	for _, e := range []Extractor{DataURIExtractor{}, BlobURLExtractor{}} {
		for range e.Extract(document) {
			return true
		}
	}
	return false
}
