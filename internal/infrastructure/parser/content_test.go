package parser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"NoticeBot/internal/domain"
	"NoticeBot/internal/infrastructure/browser"
)

func TestExtractBody(t *testing.T) {
	t.Parallel()

	html := `
	<div class="header">메뉴</div>
	<div class="view-con">
	  <script>var x = 1;</script>
	  <p>  2024학년도   2학기 </p>

	  <p>수강신청 일정을 안내합니다.</p>
	</div>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}

	got := ExtractBody(doc, defaultBodySelectors)
	if got != "2024학년도 2학기\n수강신청 일정을 안내합니다." {
		t.Fatalf("unexpected body: %q", got)
	}
}

func TestExtractBodyFallbackAndTruncate(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("가", MaxBodyRunes+50)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<div class="view-con"><img src="a.png"></div><article>` + long + `</article>`))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}

	got := ExtractBody(doc, defaultBodySelectors)
	if utf8.RuneCountInString(got) != MaxBodyRunes {
		t.Fatalf("expected %d runes, got %d", MaxBodyRunes, utf8.RuneCountInString(got))
	}
}

func TestFetchBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`<div class="artclView">장학금 신청 기간은 5월 31일까지입니다.</div>`))
	}))
	defer server.Close()

	f := NewContentFetcher(browser.NewHTTPBrowser(nil), nil)

	body, err := f.FetchBody(context.Background(), domain.Notice{Link: server.URL + "/view"})
	if err != nil {
		t.Fatalf("FetchBody error: %v", err)
	}
	if body != "장학금 신청 기간은 5월 31일까지입니다." {
		t.Fatalf("unexpected body: %q", body)
	}

	if _, err := f.FetchBody(context.Background(), domain.Notice{Link: server.URL + "/missing"}); err == nil {
		t.Fatalf("expected error for missing page")
	}
}
