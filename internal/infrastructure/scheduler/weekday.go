package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"NoticeBot/internal/ports"
)

// WeekdayScheduler fires once per weekday at a fixed wall-clock time.
type WeekdayScheduler struct {
	hour, minute int
	loc          *time.Location

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

var _ ports.Scheduler = (*WeekdayScheduler)(nil)

// NewWeekdayScheduler parses at as "HH:MM" in loc.
func NewWeekdayScheduler(at string, loc *time.Location) (*WeekdayScheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	clock, err := time.Parse("15:04", at)
	if err != nil {
		return nil, fmt.Errorf("invalid run time %q: %w", at, err)
	}
	return &WeekdayScheduler{hour: clock.Hour(), minute: clock.Minute(), loc: loc}, nil
}

// Next returns the first weekday run time strictly after now.
func (w *WeekdayScheduler) Next(now time.Time) time.Time {
	now = now.In(w.loc)
	candidate := time.Date(now.Year(), now.Month(), now.Day(), w.hour, w.minute, 0, 0, w.loc)
	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	for candidate.Weekday() == time.Saturday || candidate.Weekday() == time.Sunday {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate
}

// Start runs job at each scheduled time until ctx ends or Stop is called.
func (w *WeekdayScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stop != nil {
		return nil
	}
	w.stop = make(chan struct{})
	w.done = make(chan struct{})

	go w.loop(ctx, job, w.stop, w.done)
	return nil
}

func (w *WeekdayScheduler) loop(ctx context.Context, job func(time.Time), stop, done chan struct{}) {
	defer close(done)
	for {
		timer := time.NewTimer(time.Until(w.Next(time.Now())))
		select {
		case t := <-timer.C:
			job(t.In(w.loc))
		case <-ctx.Done():
			timer.Stop()
			return
		case <-stop:
			timer.Stop()
			return
		}
	}
}

// Stop halts the loop and waits for a running job to finish.
func (w *WeekdayScheduler) Stop(ctx context.Context) error {
	w.mu.Lock()
	stop, done := w.stop, w.done
	w.stop, w.done = nil, nil
	w.mu.Unlock()

	if stop == nil {
		return nil
	}
	close(stop)

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
