package ingestion

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidPayload      = errors.New("invalid media payload")
	ErrUnresolvedReference = errors.New("unresolved media reference")
)

// Media 는 업로드 가능한 형태로 해석된 payload 이다.
type Media struct {
	MIME  string
	Bytes []byte
}

// Hash 는 동일 payload 중복 업로드를 막기 위한 키이다.
func (m Media) Hash() string {
	h := sha256.New()
	h.Write([]byte(m.MIME))
	h.Write([]byte{0})
	h.Write(m.Bytes)
	return hex.EncodeToString(h.Sum(nil))
}

// IsEphemeral 은 값이 저장 전에 업로드로 치환되어야 하는 참조인지 판단한다.
func IsEphemeral(ref string) bool {
	return strings.HasPrefix(ref, "data:") || strings.HasPrefix(ref, "blob:")
}

// ParseDataURI 는 data:<mime>;base64,<payload> 형식을 디코딩한다.
func ParseDataURI(uri string) (Media, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return Media{}, fmt.Errorf("%w: not a data uri", ErrInvalidPayload)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return Media{}, fmt.Errorf("%w: missing payload separator", ErrInvalidPayload)
	}
	mime, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return Media{}, fmt.Errorf("%w: only base64 data uris are supported", ErrInvalidPayload)
	}
	b, err := decodeBase64(payload)
	if err != nil {
		return Media{}, err
	}
	return Media{MIME: strings.ToLower(mime), Bytes: b}, nil
}

// base64Normalizer 는 줄바꿈을 지우고 URL-safe 알파벳을 표준 알파벳으로 바꾼다.
var base64Normalizer = strings.NewReplacer("\r", "", "\n", "", "-", "+", "_", "/")

func decodeBase64(payload string) ([]byte, error) {
	payload = base64Normalizer.Replace(payload)
	b, err := base64.StdEncoding.DecodeString(payload)
	if err == nil {
		return b, nil
	}
	// 에디터에 따라 padding 이 빠진 payload 가 넘어온다.
	if raw, rawErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "=")); rawErr == nil {
		return raw, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
}

// Resolver 는 추출된 참조를 실제 바이트로 바꾼다.
// blob URL 은 서버에서 역참조할 수 없으므로 클라이언트가 함께 보낸 첨부(blob URL -> data URI)를 사용한다.
type Resolver struct {
	Attachments map[string]string
}

func (r Resolver) Resolve(span Span) (Media, error) {
	if span.Unterminated {
		return Media{}, fmt.Errorf("%w: payload is cut off by a non-base64 character at offset %d", ErrInvalidPayload, span.End)
	}
	if span.Data != "" {
		b, err := decodeBase64(span.Data)
		if err != nil {
			return Media{}, err
		}
		return Media{MIME: strings.ToLower(span.MIME), Bytes: b}, nil
	}
	return r.ResolveRef(span.Ref)
}

// ResolveRef 는 커버 이미지처럼 span 없이 값 전체가 참조인 경우에 사용한다.
func (r Resolver) ResolveRef(ref string) (Media, error) {
	switch {
	case strings.HasPrefix(ref, "data:"):
		return ParseDataURI(ref)
	case strings.HasPrefix(ref, "blob:"):
		uri, ok := r.Attachments[ref]
		if !ok {
			return Media{}, fmt.Errorf("%w: no attachment for %s", ErrUnresolvedReference, ref)
		}
		return ParseDataURI(uri)
	default:
		return Media{}, fmt.Errorf("%w: %q is not an ephemeral reference", ErrUnresolvedReference, ref)
	}
}
