package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedSummarizer struct {
	errs  []error
	calls int
}

func (s *scriptedSummarizer) Summarize(_ context.Context, text string) (string, error) {
	s.calls++
	if s.calls <= len(s.errs) && s.errs[s.calls-1] != nil {
		return "", s.errs[s.calls-1]
	}
	return "요약됨", nil
}

func newTestResilient(next *scriptedSummarizer, attempts int) (*Resilient, *[]time.Duration) {
	var slept []time.Duration
	r := NewResilient(next, RetryPolicy{Attempts: attempts, Pace: time.Second, Backoff: 30 * time.Second}, nil)
	r.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return r, &slept
}

func TestResilientRetriesRateLimit(t *testing.T) {
	t.Parallel()

	limited := fmt.Errorf("gemini: %w: 429", ErrRateLimited)
	next := &scriptedSummarizer{errs: []error{limited, limited}}
	r, slept := newTestResilient(next, 3)

	got, err := r.Summarize(context.Background(), "본문")

	require.NoError(t, err)
	assert.Equal(t, "요약됨", got)
	assert.Equal(t, 3, next.calls)
	assert.Equal(t, []time.Duration{time.Second, 30 * time.Second, time.Second, 30 * time.Second, time.Second}, *slept)
}

func TestResilientGivesUp(t *testing.T) {
	t.Parallel()

	limited := fmt.Errorf("gemini: %w: 429", ErrRateLimited)
	next := &scriptedSummarizer{errs: []error{limited, limited, limited}}
	r, _ := newTestResilient(next, 3)

	_, err := r.Summarize(context.Background(), "본문")

	assert.True(t, errors.Is(err, ErrSummarization))
	assert.True(t, errors.Is(err, ErrRateLimited))
	assert.Equal(t, 3, next.calls)
}

func TestResilientDoesNotRetryOtherErrors(t *testing.T) {
	t.Parallel()

	next := &scriptedSummarizer{errs: []error{errors.New("invalid api key")}}
	r, _ := newTestResilient(next, 3)

	_, err := r.Summarize(context.Background(), "본문")

	assert.True(t, errors.Is(err, ErrSummarization))
	assert.Equal(t, 1, next.calls)
}

func TestSleepContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
}
