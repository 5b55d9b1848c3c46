package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"NoticeBot/internal/digest"
	"NoticeBot/internal/domain"
	"NoticeBot/internal/ports"
	"NoticeBot/internal/sent"
)

// ErrDeliveryFailed marks a run whose digest did not ship; history is untouched.
var ErrDeliveryFailed = errors.New("digest delivery failed")

// NoticeSource scans all configured boards for one run.
type NoticeSource interface {
	Collect(ctx context.Context, today time.Time) ([][]domain.Notice, []domain.BoardReport)
}

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source       NoticeSource
	Builder      *digest.Builder
	Deliverer    ports.Deliverer
	Store        ports.SentStore
	Mode         domain.Mode
	Organization string
	MaxItems     int
	Logger       *slog.Logger
}

// Pipeline implements the notice-digest workflow.
type Pipeline struct {
	source       NoticeSource
	builder      *digest.Builder
	deliverer    ports.Deliverer
	store        ports.SentStore
	mode         domain.Mode
	organization string
	maxItems     int
	logger       *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	mode := deps.Mode
	if mode == "" {
		mode = domain.ModeScheduled
	}
	maxItems := deps.MaxItems
	if maxItems <= 0 {
		maxItems = digest.Cap(mode.Manual())
	}
	builder := deps.Builder
	if builder == nil {
		builder = digest.NewBuilder(nil, nil, deps.Logger)
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{
		source:       deps.Source,
		builder:      builder,
		deliverer:    deps.Deliverer,
		store:        deps.Store,
		mode:         mode,
		organization: deps.Organization,
		maxItems:     maxItems,
		logger:       logger,
	}
}

// Mode returns the run mode fixed at construction.
func (p *Pipeline) Mode() domain.Mode {
	return p.mode
}

// Run scans every board, builds the digest of unseen notices, delivers it and,
// for scheduled runs, records the delivered links. Only a delivery or commit
// failure is returned as an error; board and summary failures degrade.
func (p *Pipeline) Run(ctx context.Context, now time.Time) (domain.RunReport, error) {
	report := domain.RunReport{RunID: uuid.NewString(), Mode: p.mode}
	log := p.logger.With("run_id", report.RunID, "mode", string(p.mode))

	if p.source == nil {
		report.Status = domain.StatusEmpty
		return report, nil
	}

	registry := sent.Empty()
	if !p.mode.Manual() {
		registry = sent.Load(ctx, p.store, log)
	}
	log.Info("checking notices", "known", registry.Len(), "date", now.Format("2006-01-02"))

	perBoard, boards := p.source.Collect(ctx, now)
	report.Boards = boards

	d, err := p.builder.Build(ctx, perBoard, registry, p.mode.Manual(), p.maxItems)
	if err != nil {
		return report, fmt.Errorf("build digest: %w", err)
	}
	report.Selected = len(d.Entries)

	if d.Empty() {
		report.Status = domain.StatusEmpty
		log.Info("no new notices", "found", report.Found())
		return report, nil
	}

	report.Subject = digest.Subject(p.organization, p.mode.Manual(), len(d.Entries))
	if p.deliverer == nil {
		report.Status = domain.StatusDeliveryFailed
		return report, fmt.Errorf("%w: no deliverer configured", ErrDeliveryFailed)
	}
	if err := p.deliverer.Deliver(ctx, report.Subject, d.Body); err != nil {
		report.Status = domain.StatusDeliveryFailed
		log.Error("delivery failed", "error", err)
		return report, fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}
	report.Status = domain.StatusDelivered
	report.Delivered = true
	log.Info("digest delivered", "subject", report.Subject, "count", report.Selected)

	if p.mode.Manual() || p.store == nil {
		return report, nil
	}

	total, err := registry.Commit(ctx, p.store, d.Links())
	if err != nil {
		log.Error("sent history not saved; notices may be sent again", "error", err)
		return report, fmt.Errorf("commit sent history: %w", err)
	}
	report.Committed = true
	log.Info("sent history saved", "entries", len(total))

	return report, nil
}
