// Package llm summarizes notice bodies with hosted language models.
package llm

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrRateLimited marks quota or overload responses that are worth retrying.
	ErrRateLimited = errors.New("rate limited")
	// ErrSummarization marks a summary that could not be produced after retries.
	ErrSummarization = errors.New("summarization failed")
)

const summaryPromptFormat = `다음은 대학교 공지사항이야. 내용을 읽기 쉽게 3줄로 핵심만 요약해줘. 말투는 '~함'체로 간결하게 해줘:

%s`

// BuildPrompt wraps a notice body in the summary instruction.
func BuildPrompt(body string) string {
	return fmt.Sprintf(summaryPromptFormat, strings.TrimSpace(body))
}
