package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeliver(t *testing.T) {
	t.Parallel()

	var texts []string
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_ = r.ParseForm()
		assert.Equal(t, "42", r.PostForm.Get("chat_id"))
		texts = append(texts, r.PostForm.Get("text"))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	n := NewNotifier("token", "42")
	n.apiBase = server.URL

	require.NoError(t, n.Deliver(context.Background(), "[봇] 새로운 공지사항 (1건)", "본문"))
	assert.Equal(t, "/bottoken/sendMessage", path)
	assert.Equal(t, []string{"[봇] 새로운 공지사항 (1건)\n\n본문"}, texts)
}

func TestDeliverError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	n := NewNotifier("token", "42")
	n.apiBase = server.URL

	assert.Error(t, n.Deliver(context.Background(), "s", "b"))
	assert.Error(t, NewNotifier("", "").Deliver(context.Background(), "s", "b"))
}

func TestDeliverReportsDescription(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`))
	}))
	defer server.Close()

	n := NewNotifier("secret-token", "42")
	n.apiBase = server.URL

	err := n.Deliver(context.Background(), "s", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}

func TestDeliverHidesTokenOnTransportError(t *testing.T) {
	t.Parallel()

	n := NewNotifier("secret-token", "42")
	n.apiBase = "http://127.0.0.1:1"

	err := n.Deliver(context.Background(), "s", "b")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret-token")
}

func TestSplit(t *testing.T) {
	t.Parallel()

	line := strings.Repeat("가", 9) + "\n"
	text := strings.Repeat(line, 5) // 50 runes

	chunks := split(text, 25)

	assert.Equal(t, text, strings.Join(chunks, ""))
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 25)
	}
	assert.Equal(t, strings.Repeat(line, 2), chunks[0])

	assert.Equal(t, []string{"짧음"}, split("짧음", 25))
}
