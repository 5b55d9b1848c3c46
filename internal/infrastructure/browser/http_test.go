package browser

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPBrowserLoad(t *testing.T) {
	t.Parallel()

	var gotUA, gotLang, gotCookie string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/list":
			gotUA = r.Header.Get("User-Agent")
			gotLang = r.Header.Get("Accept-Language")
			http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "abc", Path: "/"})
			_, _ = w.Write([]byte(`<table class="board-table"><tbody><tr><td>1</td></tr><tr><td>2</td></tr></tbody></table>`))
		case "/view":
			if c, err := r.Cookie("JSESSIONID"); err == nil {
				gotCookie = c.Value
			}
			_, _ = w.Write([]byte(`<div class="view-con">본문</div>`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	b := NewHTTPBrowser(nil)
	defer b.Close()

	ctx := context.Background()
	page, err := b.Load(ctx, server.URL+"/list")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if page.URL() != server.URL+"/list" {
		t.Fatalf("unexpected url: %s", page.URL())
	}
	if !page.WaitFor(ctx, "table.board-table tbody tr", time.Second) {
		t.Fatalf("expected rows to be present")
	}
	if page.WaitFor(ctx, "ul.board-list li", time.Second) {
		t.Fatalf("unexpected readiness for missing selector")
	}
	if rows := page.FindAll("table.board-table tbody tr"); len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if gotUA == "" || gotUA == "Go-http-client/1.1" {
		t.Fatalf("expected browser user agent, got %q", gotUA)
	}
	if gotLang == "" {
		t.Fatalf("expected Accept-Language header")
	}

	if _, err := b.Load(ctx, server.URL+"/view"); err != nil {
		t.Fatalf("Load view error: %v", err)
	}
	if gotCookie != "abc" {
		t.Fatalf("expected session cookie to be reused, got %q", gotCookie)
	}
}

func TestHTTPBrowserLoginRedirect(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/sso/ssologin.do" {
			_, _ = w.Write([]byte(`<form>login</form>`))
			return
		}
		http.Redirect(w, r, "/sso/ssologin.do?returnUrl=/list", http.StatusFound)
	}))
	defer server.Close()

	_, err := NewHTTPBrowser(nil).Load(context.Background(), server.URL+"/list")
	if !errors.Is(err, ErrLoginRedirect) {
		t.Fatalf("expected ErrLoginRedirect, got %v", err)
	}
}

func TestHTTPBrowserStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	if _, err := NewHTTPBrowser(server.Client()).Load(context.Background(), server.URL); err == nil {
		t.Fatalf("expected error for 503")
	}
}
