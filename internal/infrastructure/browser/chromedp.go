package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	"NoticeBot/internal/ports"
)

const defaultLoadTimeout = 30 * time.Second

// ChromeBrowser drives one headless Chrome tab for the whole run.
type ChromeBrowser struct {
	ctx           context.Context
	cancelAlloc   context.CancelFunc
	cancelBrowser context.CancelFunc
	loadTimeout   time.Duration
	loginMarker   string
}

var _ ports.Browser = (*ChromeBrowser)(nil)

// NewChromeBrowser starts a headless browser bound to parent. loadTimeout bounds
// every navigation and DOM read; zero means 30s.
func NewChromeBrowser(parent context.Context, userAgent string, loadTimeout time.Duration) (*ChromeBrowser, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	)
	if userAgent == "" {
		userAgent = defaultHeaders["User-Agent"]
	}
	opts = append(opts, chromedp.UserAgent(userAgent))
	if loadTimeout <= 0 {
		loadTimeout = defaultLoadTimeout
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	// first Run starts the browser process
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("start chrome: %w", err)
	}

	return &ChromeBrowser{
		ctx:           browserCtx,
		cancelAlloc:   cancelAlloc,
		cancelBrowser: cancelBrowser,
		loadTimeout:   loadTimeout,
		loginMarker:   "ssologin",
	}, nil
}

// Load navigates the shared tab to url. The navigation gives up after the load
// timeout or when ctx ends, whichever comes first.
func (b *ChromeBrowser) Load(ctx context.Context, url string) (ports.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var location string
	if err := b.run(ctx, b.loadTimeout, chromedp.Navigate(url), chromedp.Location(&location)); err != nil {
		return nil, fmt.Errorf("navigate %s: %w", url, err)
	}
	if b.loginMarker != "" && strings.Contains(location, b.loginMarker) {
		return nil, fmt.Errorf("load %s: %w", url, ErrLoginRedirect)
	}

	page := &chromePage{browser: b, url: location}
	if err := page.snapshot(ctx); err != nil {
		return nil, err
	}
	return page, nil
}

// Close shuts the tab and the browser process.
func (b *ChromeBrowser) Close() error {
	b.cancelBrowser()
	b.cancelAlloc()
	return nil
}

// run executes actions on the tab under timeout, aborting early if ctx ends.
// Cancelling the derived context stops the actions but keeps the tab open.
func (b *ChromeBrowser) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(b.ctx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

// chromePage re-reads the DOM after each wait so script-rendered rows are visible.
type chromePage struct {
	browser *ChromeBrowser
	url     string
	doc     *goquery.Document
}

func (p *chromePage) URL() string {
	return p.url
}

func (p *chromePage) WaitFor(ctx context.Context, selector string, timeout time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if err := p.browser.run(ctx, timeout, chromedp.WaitReady(selector, chromedp.ByQuery)); err != nil {
		return false
	}
	return p.snapshot(ctx) == nil
}

func (p *chromePage) FindAll(selector string) []*goquery.Selection {
	return selections(p.doc.Find(selector))
}

func (p *chromePage) Document() *goquery.Document {
	return p.doc
}

func (p *chromePage) snapshot(ctx context.Context) error {
	var html string
	if err := p.browser.run(ctx, p.browser.loadTimeout, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("read dom: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return fmt.Errorf("parse dom: %w", err)
	}
	p.doc = doc
	return nil
}
