package parser

import (
	"context"
	"log/slog"
	"time"

	"NoticeBot/internal/domain"
	"NoticeBot/internal/ports"
	"NoticeBot/internal/scanner"
)

// BoardSource loads every configured board through one browser session and scans it.
type BoardSource struct {
	browser ports.Browser
	scanner *scanner.BoardScanner
	boards  []domain.Board
	logger  *slog.Logger
}

// NewBoardSource wires the shared browser with config-defined boards.
func NewBoardSource(b ports.Browser, sc *scanner.BoardScanner, boards []domain.Board, log *slog.Logger) *BoardSource {
	return &BoardSource{
		browser: b,
		scanner: sc,
		boards:  boards,
		logger:  log,
	}
}

// Boards returns the configured boards in declaration order.
func (s *BoardSource) Boards() []domain.Board {
	return s.boards
}

// Collect scans boards one at a time in declared order. A board that fails to
// load or never becomes ready contributes an empty slice; the others proceed.
// The result has one slice per board, aligned with the reports.
func (s *BoardSource) Collect(ctx context.Context, today time.Time) ([][]domain.Notice, []domain.BoardReport) {
	perBoard := make([][]domain.Notice, 0, len(s.boards))
	reports := make([]domain.BoardReport, 0, len(s.boards))

	for _, board := range s.boards {
		if ctx.Err() != nil {
			perBoard = append(perBoard, nil)
			reports = append(reports, domain.BoardReport{Board: board.Name, Err: ctx.Err()})
			continue
		}

		s.debug("load board", "board", board.Name, "url", board.URL)
		page, err := s.browser.Load(ctx, board.URL)
		if err != nil {
			s.warn("board load failed", "board", board.Name, "error", err)
			perBoard = append(perBoard, nil)
			reports = append(reports, domain.BoardReport{Board: board.Name, Err: err})
			continue
		}

		notices, report := s.scanner.Scan(ctx, board, page, today)
		if report.Err != nil {
			s.warn("board scan failed", "board", board.Name, "error", report.Err)
		} else {
			s.info("board produced notices", "board", board.Name, "count", len(notices))
		}
		perBoard = append(perBoard, notices)
		reports = append(reports, report)
	}

	return perBoard, reports
}

func (s *BoardSource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *BoardSource) info(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s *BoardSource) warn(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
