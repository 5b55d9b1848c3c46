// Package digest selects new notices and renders them into one report.
package digest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"NoticeBot/internal/domain"
	"NoticeBot/internal/ports"
)

const (
	// MaxScheduled caps a scheduled digest.
	MaxScheduled = 10
	// MaxManual caps a manual/test digest.
	MaxManual = 3

	minBodyRunes = 10
	separator    = "------------------------------"
	testMarker   = "[테스트] "

	unextractableSummary = "본문이 이미지로 되어 있거나 텍스트를 추출할 수 없어 요약하지 않았습니다."
	bodyFailedSummary    = "본문을 가져오지 못했습니다"
	summaryFailedPrefix  = "요약 실패"
)

// Membership answers whether a link was already delivered.
type Membership interface {
	Contains(link string) bool
}

// Entry is a selected notice with its rendered summary.
type Entry struct {
	Notice  domain.Notice
	Summary string
}

// Digest is the outcome of a build: the notices to mark as sent and the report body.
type Digest struct {
	Entries []Entry
	Body    string
}

// Empty reports whether nothing survived filtering.
func (d Digest) Empty() bool {
	return len(d.Entries) == 0
}

// Links returns the selected notice links in delivery order.
func (d Digest) Links() []string {
	links := make([]string, 0, len(d.Entries))
	for _, e := range d.Entries {
		links = append(links, e.Notice.Link)
	}
	return links
}

// Builder fetches bodies and summaries for selected notices.
type Builder struct {
	content    ports.ContentFetcher
	summarizer ports.Summarizer
	logger     *slog.Logger
}

// NewBuilder wires the collaborators; either may be nil to skip that step.
func NewBuilder(content ports.ContentFetcher, summarizer ports.Summarizer, log *slog.Logger) *Builder {
	return &Builder{content: content, summarizer: summarizer, logger: log}
}

// Build selects unseen notices from perBoard and renders the digest body.
// Manual runs ignore the registry. The result keeps at most maxItems notices.
func (b *Builder) Build(ctx context.Context, perBoard [][]domain.Notice, registry Membership, manual bool, maxItems int) (Digest, error) {
	if manual {
		registry = nil
	}
	selected := Select(perBoard, registry, maxItems)
	if len(selected) == 0 {
		return Digest{}, nil
	}

	entries := make([]Entry, 0, len(selected))
	for _, notice := range selected {
		if err := ctx.Err(); err != nil {
			return Digest{}, err
		}
		b.debug("processing notice", "source", notice.Source, "title", notice.Title)
		entries = append(entries, b.enrich(ctx, notice))
	}

	return Digest{Entries: entries, Body: Render(entries)}, nil
}

func (b *Builder) enrich(ctx context.Context, notice domain.Notice) Entry {
	if b.content == nil {
		return Entry{Notice: notice}
	}

	body, err := b.content.FetchBody(ctx, notice)
	if err != nil {
		b.warn("fetch body failed", "link", notice.Link, "error", err)
		if b.summarizer == nil {
			return Entry{Notice: notice}
		}
		return Entry{Notice: notice, Summary: fmt.Sprintf("%s: %v", bodyFailedSummary, err)}
	}
	notice.Body = body

	if b.summarizer == nil {
		return Entry{Notice: notice}
	}
	if !Extractable(body) {
		return Entry{Notice: notice, Summary: unextractableSummary}
	}

	summary, err := b.summarizer.Summarize(ctx, body)
	if err != nil {
		b.warn("summarize failed", "link", notice.Link, "error", err)
		return Entry{Notice: notice, Summary: SummaryFailure(err)}
	}
	return Entry{Notice: notice, Summary: strings.TrimSpace(summary)}
}

// Select concatenates board results in order, drops links the registry already
// holds or that appeared earlier in this run, and keeps the first maxItems.
func Select(perBoard [][]domain.Notice, registry Membership, maxItems int) []domain.Notice {
	var selected []domain.Notice
	seen := map[string]struct{}{}
	for _, notices := range perBoard {
		for _, n := range notices {
			if maxItems > 0 && len(selected) >= maxItems {
				return selected
			}
			if _, dup := seen[n.Link]; dup {
				continue
			}
			if registry != nil && registry.Contains(n.Link) {
				continue
			}
			seen[n.Link] = struct{}{}
			selected = append(selected, n)
		}
	}
	return selected
}

// Extractable reports whether a body holds enough text to summarize.
func Extractable(body string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(body)) >= minBodyRunes
}

// SummaryFailure renders the placeholder shown instead of a summary.
func SummaryFailure(err error) string {
	reason := "알 수 없는 오류"
	if err != nil {
		reason = err.Error()
	}
	return fmt.Sprintf("%s: %s", summaryFailedPrefix, reason)
}

// Render formats entries as plain-text blocks in order.
func Render(entries []Entry) string {
	var sb strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&sb, "[%s] %s\n", e.Notice.Source, e.Notice.Title)
		fmt.Fprintf(&sb, "날짜: %s\n", e.Notice.Date.Format("2006.01.02"))
		fmt.Fprintf(&sb, "링크: %s\n", e.Notice.Link)
		if e.Summary != "" {
			fmt.Fprintf(&sb, "요약:\n%s\n", e.Summary)
		}
		sb.WriteString(separator)
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// Subject renders the mail subject for count notices.
func Subject(org string, manual bool, count int) string {
	marker := ""
	if manual {
		marker = testMarker
	}
	return fmt.Sprintf("[%s] %s새로운 공지사항 (%d건)", org, marker, count)
}

// Cap returns the item limit for the run mode.
func Cap(manual bool) int {
	if manual {
		return MaxManual
	}
	return MaxScheduled
}

func (b *Builder) debug(msg string, args ...interface{}) {
	if b.logger != nil {
		b.logger.Debug(msg, args...)
	}
}

func (b *Builder) warn(msg string, args ...interface{}) {
	if b.logger != nil {
		b.logger.Warn(msg, args...)
	}
}
