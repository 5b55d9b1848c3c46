package scanner

import (
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"NoticeBot/internal/domain"
)

var dateLayouts = []string{"2006.01.02", "2006-01-02"}

// DateStrategy extracts a notice date from a row, reporting false on mismatch.
type DateStrategy func(row *goquery.Selection) (time.Time, bool)

// Anchor is the title text and raw href of a row's link.
type Anchor struct {
	Title string
	Href  string
}

// AnchorStrategy extracts a title and link from a row, reporting false on mismatch.
type AnchorStrategy func(row *goquery.Selection) (Anchor, bool)

// Extractor applies ordered fallback chains to board rows.
type Extractor struct {
	Dates   []DateStrategy
	Anchors []AnchorStrategy
	base    *url.URL
}

// NewExtractor builds selector-backed chains for the profile.
// Relative links are resolved against pageURL and dates are placed in loc.
func NewExtractor(p Profile, pageURL string, loc *time.Location) *Extractor {
	if loc == nil {
		loc = time.UTC
	}
	base, _ := url.Parse(pageURL)

	ex := &Extractor{base: base}
	for _, sel := range p.Dates {
		ex.Dates = append(ex.Dates, DateFromSelector(sel, loc))
	}
	for _, sel := range p.Titles {
		ex.Anchors = append(ex.Anchors, AnchorFromSelector(sel))
	}
	return ex
}

// Extract returns the notice a row describes, or false when any field is missing.
func (e *Extractor) Extract(row *goquery.Selection) (domain.Notice, bool) {
	date, ok := e.date(row)
	if !ok {
		return domain.Notice{}, false
	}

	title, link, ok := e.anchor(row)
	if !ok {
		return domain.Notice{}, false
	}

	return domain.Notice{Title: title, Link: link, Date: date}, true
}

func (e *Extractor) date(row *goquery.Selection) (time.Time, bool) {
	for _, strategy := range e.Dates {
		if d, ok := strategy(row); ok {
			return d, true
		}
	}
	return time.Time{}, false
}

func (e *Extractor) anchor(row *goquery.Selection) (string, string, bool) {
	for _, strategy := range e.Anchors {
		a, ok := strategy(row)
		if !ok {
			continue
		}
		link, ok := e.absolute(a.Href)
		if !ok {
			continue
		}
		return a.Title, link, true
	}
	return "", "", false
}

func (e *Extractor) absolute(href string) (string, bool) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	if e.base != nil {
		ref = e.base.ResolveReference(ref)
	}
	if (ref.Scheme != "http" && ref.Scheme != "https") || ref.Host == "" {
		return "", false
	}
	return ref.String(), true
}

// DateFromSelector reads the first match of sel and parses it as a board date.
func DateFromSelector(sel string, loc *time.Location) DateStrategy {
	return func(row *goquery.Selection) (time.Time, bool) {
		node := row.Find(sel).First()
		if node.Length() == 0 {
			return time.Time{}, false
		}
		return ParseDate(node.Text(), loc)
	}
}

// AnchorFromSelector reads the first match of sel as a link with a usable title.
func AnchorFromSelector(sel string) AnchorStrategy {
	return func(row *goquery.Selection) (Anchor, bool) {
		node := row.Find(sel).First()
		if node.Length() == 0 {
			return Anchor{}, false
		}
		href, _ := node.Attr("href")
		href = strings.TrimSpace(href)
		title := strings.TrimSpace(node.Text())
		if href == "" || utf8.RuneCountInString(title) <= 1 {
			return Anchor{}, false
		}
		return Anchor{Title: collapseSpaces(title), Href: href}, true
	}
}

// ParseDate normalizes board date text and tries the supported layouts in order.
func ParseDate(text string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, ".")
	for _, layout := range dateLayouts {
		if d, err := time.ParseInLocation(layout, text, loc); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
