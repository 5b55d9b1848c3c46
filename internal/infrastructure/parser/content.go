package parser

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"NoticeBot/internal/domain"
	"NoticeBot/internal/ports"
)

// MaxBodyRunes bounds the text handed to the summarizer.
const MaxBodyRunes = 5000

var defaultBodySelectors = []string{
	".view-con",
	".artclView",
	".board-view-content",
	"div.view_content",
	"article",
}

// ContentFetcher reads notice detail pages through the shared browser.
type ContentFetcher struct {
	browser   ports.Browser
	selectors []string
}

var _ ports.ContentFetcher = (*ContentFetcher)(nil)

// NewContentFetcher uses selectors in order, falling back to the built-in list.
func NewContentFetcher(b ports.Browser, selectors []string) *ContentFetcher {
	if len(selectors) == 0 {
		selectors = defaultBodySelectors
	}
	return &ContentFetcher{browser: b, selectors: selectors}
}

// FetchBody loads the notice link and returns its trimmed body text.
// A page without a known body container yields an empty body, not an error.
func (f *ContentFetcher) FetchBody(ctx context.Context, notice domain.Notice) (string, error) {
	page, err := f.browser.Load(ctx, notice.Link)
	if err != nil {
		return "", fmt.Errorf("load notice body: %w", err)
	}
	return ExtractBody(page.Document(), f.selectors), nil
}

// ExtractBody returns the text of the first non-empty selector match, truncated to MaxBodyRunes.
func ExtractBody(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		node.Find("script, style").Remove()
		text := normalizeText(node.Text())
		if text != "" {
			return truncateRunes(text, MaxBodyRunes)
		}
	}
	return ""
}

func normalizeText(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
