package domain

import "time"

// Notice is one announcement scraped from a board.
type Notice struct {
	Source string
	Title  string
	// Link is absolute and identifies the notice across boards and runs.
	Link string
	Date time.Time
	Body string
}

// Board is a configured notice-listing page.
type Board struct {
	Name   string
	URL    string
	Layout string
}

// Mode distinguishes manual test runs from scheduled deliveries.
type Mode string

const (
	ModeScheduled Mode = "scheduled"
	ModeManual    Mode = "manual"
)

// Manual reports whether the mode is a manual/test invocation.
func (m Mode) Manual() bool {
	return m == ModeManual
}

// RunStatus enumerates pipeline exits.
type RunStatus string

const (
	StatusEmpty          RunStatus = "empty"
	StatusDelivered      RunStatus = "delivered"
	StatusDeliveryFailed RunStatus = "delivery_failed"
)

// BoardReport is the outcome of scanning a single board.
type BoardReport struct {
	Board    string
	Rows     int
	Accepted int
	Err      error
}

// RunReport summarizes one pipeline execution for callers and tests.
type RunReport struct {
	RunID     string
	Mode      Mode
	Boards    []BoardReport
	Selected  int
	Subject   string
	Status    RunStatus
	Delivered bool
	Committed bool
}

// Found returns the total number of accepted notices across boards.
func (r RunReport) Found() int {
	total := 0
	for _, b := range r.Boards {
		total += b.Accepted
	}
	return total
}
