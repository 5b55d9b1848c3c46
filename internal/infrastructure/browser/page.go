package browser

import (
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"

	"NoticeBot/internal/ports"
)

// staticPage is a fully loaded document; readiness is a presence check.
type staticPage struct {
	url string
	doc *goquery.Document
}

var _ ports.Page = (*staticPage)(nil)

func (p *staticPage) URL() string {
	return p.url
}

func (p *staticPage) WaitFor(_ context.Context, selector string, _ time.Duration) bool {
	return p.doc.Find(selector).Length() > 0
}

func (p *staticPage) FindAll(selector string) []*goquery.Selection {
	return selections(p.doc.Find(selector))
}

func (p *staticPage) Document() *goquery.Document {
	return p.doc
}

func selections(s *goquery.Selection) []*goquery.Selection {
	out := make([]*goquery.Selection, 0, s.Length())
	s.Each(func(_ int, item *goquery.Selection) {
		out = append(out, item)
	})
	return out
}
