// Package browser provides page sessions for loading notice boards.
package browser

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"NoticeBot/internal/ports"
)

const defaultHTTPTimeout = 20 * time.Second

// ErrLoginRedirect reports that an anonymous load was bounced to a login page.
var ErrLoginRedirect = errors.New("redirected to login page")

var defaultHeaders = map[string]string{
	"User-Agent":                "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	"Accept-Language":           "ko-KR,ko;q=0.9,en-US;q=0.8,en;q=0.7",
	"Upgrade-Insecure-Requests": "1",
}

// HTTPBrowser loads pages over plain HTTP with one cookie jar and header set.
type HTTPBrowser struct {
	client      *http.Client
	headers     map[string]string
	loginMarker string
}

var _ ports.Browser = (*HTTPBrowser)(nil)

// NewHTTPBrowser wires an HTTP client; nil builds one with a cookie jar and 20s timeout.
func NewHTTPBrowser(client *http.Client) *HTTPBrowser {
	if client == nil {
		jar, _ := cookiejar.New(nil)
		client = &http.Client{Timeout: defaultHTTPTimeout, Jar: jar}
	}
	headers := make(map[string]string, len(defaultHeaders))
	for k, v := range defaultHeaders {
		headers[k] = v
	}
	return &HTTPBrowser{client: client, headers: headers, loginMarker: "ssologin"}
}

// SetHeader overrides one request header for every subsequent load.
func (b *HTTPBrowser) SetHeader(key, value string) {
	b.headers[key] = value
}

// Load fetches url and parses it into a document.
func (b *HTTPBrowser) Load(ctx context.Context, url string) (ports.Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, v := range b.headers {
		req.Header.Set(k, v)
	}
	if req.Header.Get("Referer") == "" {
		req.Header.Set("Referer", req.URL.Scheme+"://"+req.URL.Host+"/")
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	finalURL := resp.Request.URL.String()
	if b.loginMarker != "" && strings.Contains(finalURL, b.loginMarker) {
		return nil, fmt.Errorf("load %s: %w", url, ErrLoginRedirect)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("load %s: unexpected status %s", url, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return &staticPage{url: finalURL, doc: doc}, nil
}

// Close drops idle connections.
func (b *HTTPBrowser) Close() error {
	b.client.CloseIdleConnections()
	return nil
}
