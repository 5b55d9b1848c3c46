package scanner

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/PuerkitoBio/goquery"

	"NoticeBot/internal/domain"
	"NoticeBot/internal/ports"
	"NoticeBot/internal/recency"
)

const defaultWaitTimeout = 10 * time.Second

// ErrRowsNotReady reports that a board's row container never appeared.
var ErrRowsNotReady = errors.New("board rows not ready")

// BoardScanner turns one loaded board page into date-filtered notices.
type BoardScanner struct {
	registry    *Registry
	waitTimeout time.Duration
	logger      *slog.Logger
}

// NewBoardScanner wires the layout registry; waitTimeout defaults to 10s.
func NewBoardScanner(reg *Registry, waitTimeout time.Duration, log *slog.Logger) *BoardScanner {
	if reg == nil {
		reg = NewRegistry()
	}
	if waitTimeout <= 0 {
		waitTimeout = defaultWaitTimeout
	}
	return &BoardScanner{registry: reg, waitTimeout: waitTimeout, logger: log}
}

// Scan returns the board's notices dated on or after the recency cutoff, in document order.
// A missing row container yields no notices and a report carrying ErrRowsNotReady.
func (s *BoardScanner) Scan(ctx context.Context, board domain.Board, page ports.Page, today time.Time) ([]domain.Notice, domain.BoardReport) {
	report := domain.BoardReport{Board: board.Name}

	profile, err := s.registry.Resolve(board.Layout)
	if err != nil {
		report.Err = err
		return nil, report
	}

	if !page.WaitFor(ctx, profile.RowGroup(), s.waitTimeout) {
		report.Err = ErrRowsNotReady
		return nil, report
	}

	rows := firstRows(page, profile.Rows)
	report.Rows = len(rows)

	cutoff := recency.Cutoff(today, today.Weekday())
	extractor := NewExtractor(profile, page.URL(), today.Location())

	var notices []domain.Notice
	for _, row := range rows {
		notice, ok := extractor.Extract(row)
		if !ok {
			continue
		}
		if notice.Date.Before(cutoff) {
			continue
		}
		notice.Source = board.Name
		notices = append(notices, notice)
	}
	report.Accepted = len(notices)

	s.debug("board scanned", "board", board.Name, "rows", report.Rows, "accepted", report.Accepted,
		"cutoff", cutoff.Format("2006-01-02"))
	return notices, report
}

// firstRows returns the rows of the first selector that matches anything.
func firstRows(page ports.Page, selectors []string) []*goquery.Selection {
	for _, sel := range selectors {
		if rows := page.FindAll(sel); len(rows) > 0 {
			return rows
		}
	}
	return nil
}

func (s *BoardScanner) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
