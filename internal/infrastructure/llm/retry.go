package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"NoticeBot/internal/ports"
)

// RetryPolicy paces calls and bounds retries on rate limits.
type RetryPolicy struct {
	Attempts int
	Pace     time.Duration
	Backoff  time.Duration
}

// Resilient wraps a summarizer with pacing and bounded retries.
type Resilient struct {
	next   ports.Summarizer
	policy RetryPolicy
	sleep  func(ctx context.Context, d time.Duration) error
	logger *slog.Logger
}

var _ ports.Summarizer = (*Resilient)(nil)

// NewResilient wraps next; Attempts below 1 is treated as 1.
func NewResilient(next ports.Summarizer, policy RetryPolicy, log *slog.Logger) *Resilient {
	if policy.Attempts < 1 {
		policy.Attempts = 1
	}
	return &Resilient{next: next, policy: policy, sleep: sleepContext, logger: log}
}

// Summarize waits the pacing delay before each call and retries rate-limited
// calls after the backoff. Failures come back wrapped in ErrSummarization.
func (r *Resilient) Summarize(ctx context.Context, text string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= r.policy.Attempts; attempt++ {
		if err := r.sleep(ctx, r.policy.Pace); err != nil {
			return "", fmt.Errorf("%w: %w", ErrSummarization, err)
		}

		summary, err := r.next.Summarize(ctx, text)
		if err == nil {
			return summary, nil
		}
		lastErr = err

		if !errors.Is(err, ErrRateLimited) || attempt == r.policy.Attempts {
			break
		}
		if r.logger != nil {
			r.logger.Warn("summarizer rate limited, backing off", "attempt", attempt, "backoff", r.policy.Backoff)
		}
		if err := r.sleep(ctx, r.policy.Backoff); err != nil {
			return "", fmt.Errorf("%w: %w", ErrSummarization, err)
		}
	}
	return "", fmt.Errorf("%w: %w", ErrSummarization, lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
