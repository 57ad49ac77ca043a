package ingestion

import (
	"fmt"
	"regexp"
	"strings"
)

const DefaultWordsPerMinute = 200

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// StripTags 는 단순 정규식으로 태그를 제거한다. HTML 파서를 쓰지 않는다.
func StripTags(content string) string {
	return tagPattern.ReplaceAllString(content, "")
}

// ReadingTime 은 "N min read" 형식의 예상 읽기 시간을 반환한다.
func ReadingTime(content string, wordsPerMinute int) string {
	if wordsPerMinute <= 0 {
		wordsPerMinute = DefaultWordsPerMinute
	}
	words := len(strings.Fields(StripTags(content)))
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	return fmt.Sprintf("%d min read", minutes)
}
