package ports

import (
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"

	"NoticeBot/internal/domain"
)

// Browser opens pages for one run; a single session is reused across boards.
type Browser interface {
	Load(ctx context.Context, url string) (Page, error)
	Close() error
}

// Page is a loaded document that rows and fields are selected from.
type Page interface {
	// URL is the final address after redirects, used to resolve relative links.
	URL() string
	WaitFor(ctx context.Context, selector string, timeout time.Duration) bool
	FindAll(selector string) []*goquery.Selection
	Document() *goquery.Document
}

// ContentFetcher returns the plain body text of a notice detail page.
type ContentFetcher interface {
	FetchBody(ctx context.Context, notice domain.Notice) (string, error)
}

// Summarizer condenses notice bodies.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Deliverer ships a rendered digest.
type Deliverer interface {
	Deliver(ctx context.Context, subject, body string) error
}

// SentStore persists the ordered list of delivered links.
type SentStore interface {
	Read(ctx context.Context) ([]string, error)
	Write(ctx context.Context, links []string) error
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
