package sent

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	links    []string
	readErr  error
	writeErr error
	writes   int
}

func (m *memoryStore) Read(context.Context) ([]string, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	return append([]string(nil), m.links...), nil
}

func (m *memoryStore) Write(_ context.Context, links []string) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.writes++
	m.links = append([]string(nil), links...)
	return nil
}

func links(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("https://%s/%d", prefix, i)
	}
	return out
}

func TestLoadCorruptStateIsEmpty(t *testing.T) {
	t.Parallel()

	reg := Load(context.Background(), &memoryStore{readErr: errors.New("bad json")}, nil)

	assert.Equal(t, 0, reg.Len())
	assert.False(t, reg.Contains("https://x/1"))
}

func TestContains(t *testing.T) {
	t.Parallel()

	reg := Load(context.Background(), &memoryStore{links: []string{"https://x/1"}}, nil)

	assert.True(t, reg.Contains("https://x/1"))
	assert.False(t, reg.Contains("https://x/2"))
}

func TestCommitAppendsInOrder(t *testing.T) {
	t.Parallel()

	store := &memoryStore{links: []string{"https://x/1"}}
	reg := Load(context.Background(), store, nil)

	got, err := reg.Commit(context.Background(), store, []string{"https://y/2", "https://z/3"})
	require.NoError(t, err)

	want := []string{"https://x/1", "https://y/2", "https://z/3"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("commit mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, want, store.links)
	assert.True(t, reg.Contains("https://z/3"))
}

func TestCommitKeepsMostRecent(t *testing.T) {
	t.Parallel()

	store := &memoryStore{links: links("old", 495)}
	reg := Load(context.Background(), store, nil)

	fresh := links("new", 10)
	got, err := reg.Commit(context.Background(), store, fresh)
	require.NoError(t, err)

	require.Len(t, got, MaxEntries)
	assert.Equal(t, "https://old/5", got[0])
	assert.Equal(t, fresh, got[len(got)-10:])
	assert.False(t, reg.Contains("https://old/4"))
}

func TestRepeatedCommitsStayBounded(t *testing.T) {
	t.Parallel()

	store := &memoryStore{}
	reg := Load(context.Background(), store, nil)
	for i := 0; i < 60; i++ {
		_, err := reg.Commit(context.Background(), store, links(fmt.Sprintf("run%d", i), 10))
		require.NoError(t, err)
		assert.LessOrEqual(t, len(store.links), MaxEntries)
	}
	assert.Equal(t, "https://run59/9", store.links[len(store.links)-1])
	assert.Equal(t, "https://run10/0", store.links[0])
}

func TestCommitFailureLeavesRegistry(t *testing.T) {
	t.Parallel()

	store := &memoryStore{links: []string{"https://x/1"}}
	reg := Load(context.Background(), store, nil)
	store.writeErr = errors.New("disk full")

	_, err := reg.Commit(context.Background(), store, []string{"https://y/2"})

	require.Error(t, err)
	assert.Equal(t, []string{"https://x/1"}, reg.Links())
	assert.Equal(t, []string{"https://x/1"}, store.links)
}

func TestMergeDoesNotAliasInputs(t *testing.T) {
	t.Parallel()

	prev := make([]string, 1, 4)
	prev[0] = "a"
	merged := Merge(prev, []string{"b"})
	merged[0] = "changed"

	assert.Equal(t, "a", prev[0])
}
