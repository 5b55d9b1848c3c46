// Package recency decides how far back a run looks for new notices.
package recency

import "time"

// Cutoff returns the earliest notice date still considered new.
//
// Runs are expected once per weekday. Monday only needs Monday's posts;
// every other day also covers posts made after the previous day's run.
func Cutoff(today time.Time, weekday time.Weekday) time.Time {
	day := Day(today)
	if weekday == time.Monday {
		return day
	}
	return day.AddDate(0, 0, -1)
}

// Day truncates t to midnight in its own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
