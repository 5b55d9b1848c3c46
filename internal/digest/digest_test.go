package digest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NoticeBot/internal/domain"
)

type linkSet map[string]bool

func (s linkSet) Contains(link string) bool { return s[link] }

type fakeContent struct {
	bodies map[string]string
	err    error
	calls  []string
}

func (f *fakeContent) FetchBody(_ context.Context, n domain.Notice) (string, error) {
	f.calls = append(f.calls, n.Link)
	if f.err != nil {
		return "", f.err
	}
	if body, ok := f.bodies[n.Link]; ok {
		return body, nil
	}
	return "충분히 긴 공지사항 본문입니다. 신청 기간을 확인하세요.", nil
}

type fakeSummarizer struct {
	err   error
	calls int
}

func (f *fakeSummarizer) Summarize(_ context.Context, text string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "  요약: " + string([]rune(text)[:5]) + "  ", nil
}

var may20 = time.Date(2024, time.May, 20, 0, 0, 0, 0, time.UTC)

func notice(source, link string) domain.Notice {
	return domain.Notice{Source: source, Title: "제목 " + link, Link: link, Date: may20}
}

func boardNotices(source string, n int) []domain.Notice {
	out := make([]domain.Notice, n)
	for i := range out {
		out[i] = notice(source, fmt.Sprintf("https://%s/%d", source, i))
	}
	return out
}

func linksOf(ns []domain.Notice) []string {
	out := make([]string, 0, len(ns))
	for _, n := range ns {
		out = append(out, n.Link)
	}
	return out
}

func TestSelectPreservesBoardThenRowOrder(t *testing.T) {
	t.Parallel()

	perBoard := [][]domain.Notice{
		{notice("A", "https://x/1")},
		{notice("B", "https://y/2")},
	}

	got := Select(perBoard, linkSet{}, MaxScheduled)
	assert.Equal(t, []string{"https://x/1", "https://y/2"}, linksOf(got))
}

func TestSelectFiltersRegistry(t *testing.T) {
	t.Parallel()

	perBoard := [][]domain.Notice{
		{notice("A", "https://x/1")},
		{notice("B", "https://y/2")},
	}

	got := Select(perBoard, linkSet{"https://x/1": true}, MaxScheduled)
	assert.Equal(t, []string{"https://y/2"}, linksOf(got))
}

func TestSelectTreatsSameLinkAsSameNotice(t *testing.T) {
	t.Parallel()

	first := notice("A", "https://x/1")
	again := notice("B", "https://x/1")
	again.Title = "다시 렌더링된 제목"

	got := Select([][]domain.Notice{{first}, {again}}, nil, MaxScheduled)
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].Source)

	got = Select([][]domain.Notice{{again}}, linkSet{"https://x/1": true}, MaxScheduled)
	assert.Empty(t, got)
}

func TestSelectCapKeepsPrefix(t *testing.T) {
	t.Parallel()

	perBoard := [][]domain.Notice{
		boardNotices("a", 6),
		boardNotices("b", 5),
		boardNotices("c", 4),
	}

	got := Select(perBoard, linkSet{}, MaxScheduled)

	var want []string
	want = append(want, linksOf(perBoard[0])...)
	want = append(want, linksOf(perBoard[1])[:4]...)
	if diff := cmp.Diff(want, linksOf(got)); diff != "" {
		t.Fatalf("selection mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildManualIgnoresRegistryAndCaps(t *testing.T) {
	t.Parallel()

	perBoard := [][]domain.Notice{boardNotices("a", 5)}
	registry := linkSet{"https://a/0": true, "https://a/1": true}

	d, err := NewBuilder(nil, nil, nil).Build(context.Background(), perBoard, registry, true, MaxManual)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a/0", "https://a/1", "https://a/2"}, d.Links())
}

func TestBuildEmpty(t *testing.T) {
	t.Parallel()

	content := &fakeContent{}
	perBoard := [][]domain.Notice{{notice("A", "https://x/1")}}

	d, err := NewBuilder(content, nil, nil).Build(context.Background(), perBoard, linkSet{"https://x/1": true}, false, MaxScheduled)
	require.NoError(t, err)
	assert.True(t, d.Empty())
	assert.Empty(t, d.Body)
	assert.Empty(t, content.calls, "no bodies fetched when nothing is selected")
}

func TestBuildRendersSummaries(t *testing.T) {
	t.Parallel()

	content := &fakeContent{bodies: map[string]string{"https://y/2": "   "}}
	summarizer := &fakeSummarizer{}
	perBoard := [][]domain.Notice{
		{notice("A", "https://x/1")},
		{notice("B", "https://y/2")},
	}

	d, err := NewBuilder(content, summarizer, nil).Build(context.Background(), perBoard, linkSet{}, false, MaxScheduled)
	require.NoError(t, err)

	assert.Equal(t, 1, summarizer.calls, "image-only body must not reach the summarizer")
	require.Len(t, d.Entries, 2)
	assert.Equal(t, "요약: 충분히 긴", d.Entries[0].Summary)
	assert.Equal(t, unextractableSummary, d.Entries[1].Summary)

	want := "[A] 제목 https://x/1\n" +
		"날짜: 2024.05.20\n" +
		"링크: https://x/1\n" +
		"요약:\n요약: 충분히 긴\n" +
		separator + "\n\n" +
		"[B] 제목 https://y/2\n" +
		"날짜: 2024.05.20\n" +
		"링크: https://y/2\n" +
		"요약:\n" + unextractableSummary + "\n" +
		separator + "\n\n"
	assert.Equal(t, want, d.Body)
}

func TestBuildSummaryFailureBecomesPlaceholder(t *testing.T) {
	t.Parallel()

	summarizer := &fakeSummarizer{err: errors.New("quota exceeded")}
	perBoard := [][]domain.Notice{{notice("A", "https://x/1")}}

	d, err := NewBuilder(&fakeContent{}, summarizer, nil).Build(context.Background(), perBoard, nil, false, MaxScheduled)
	require.NoError(t, err)
	require.Len(t, d.Entries, 1)
	assert.Equal(t, "요약 실패: quota exceeded", d.Entries[0].Summary)
	assert.Contains(t, d.Body, "요약 실패: quota exceeded")
}

func TestBuildBodyFailureStillRenders(t *testing.T) {
	t.Parallel()

	content := &fakeContent{err: errors.New("404 Not Found")}
	perBoard := [][]domain.Notice{{notice("A", "https://x/1")}}

	d, err := NewBuilder(content, &fakeSummarizer{}, nil).Build(context.Background(), perBoard, nil, false, MaxScheduled)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://x/1"}, d.Links())
	assert.True(t, strings.HasPrefix(d.Entries[0].Summary, bodyFailedSummary))
}

func TestBuildWithoutSummarizerOmitsSummary(t *testing.T) {
	t.Parallel()

	perBoard := [][]domain.Notice{{notice("A", "https://x/1")}}

	d, err := NewBuilder(&fakeContent{}, nil, nil).Build(context.Background(), perBoard, nil, false, MaxScheduled)
	require.NoError(t, err)
	assert.NotContains(t, d.Body, "요약:")
	assert.NotEmpty(t, d.Entries[0].Notice.Body)
}

func TestSubject(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "[인하대 공지봇] 새로운 공지사항 (2건)", Subject("인하대 공지봇", false, 2))
	assert.Equal(t, "[인하대 공지봇] [테스트] 새로운 공지사항 (1건)", Subject("인하대 공지봇", true, 1))
}

func TestCap(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 10, Cap(false))
	assert.Equal(t, 3, Cap(true))
}
