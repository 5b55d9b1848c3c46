package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"NoticeBot/internal/config"
	"NoticeBot/internal/digest"
	"NoticeBot/internal/domain"
	"NoticeBot/internal/infrastructure/browser"
	"NoticeBot/internal/infrastructure/llm"
	"NoticeBot/internal/infrastructure/mail"
	"NoticeBot/internal/infrastructure/parser"
	"NoticeBot/internal/infrastructure/scheduler"
	"NoticeBot/internal/infrastructure/storage"
	"NoticeBot/internal/infrastructure/telegram"
	"NoticeBot/internal/logging"
	"NoticeBot/internal/ports"
	"NoticeBot/internal/scanner"
	"NoticeBot/internal/sent"
	"NoticeBot/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	browser  ports.Browser
	source   *parser.BoardSource
	store    ports.SentStore
	pipeline *usecase.Pipeline
	closers  []func() error
}

// New builds the adapters named in cfg. The caller must Close the result.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}
	a := &Application{cfg: cfg, logger: baseLogger}

	registry := scanner.NewRegistry()
	for _, l := range cfg.Layouts {
		registry.Register(scanner.Profile{Name: l.Name, Rows: l.Rows, Dates: l.Dates, Titles: l.Titles})
	}

	b, err := newBrowser(ctx, cfg.Browser)
	if err != nil {
		return nil, err
	}
	a.browser = b
	a.closers = append(a.closers, b.Close)

	store, err := a.newStore(cfg.Storage)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.store = store

	deliverer, err := newDeliverer(cfg.Delivery)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	summarizer, err := newSummarizer(ctx, cfg, baseLogger.With("component", "summarizer"))
	if err != nil {
		baseLogger.Warn("summaries disabled", "error", err)
		summarizer = nil
	}

	boardScanner := scanner.NewBoardScanner(registry, cfg.Browser.WaitTimeout(), baseLogger.With("component", "scanner"))
	a.source = parser.NewBoardSource(b, boardScanner, cfg.DomainBoards(), baseLogger.With("component", "source"))

	content := parser.NewContentFetcher(b, cfg.Browser.BodySelectors)
	builder := digest.NewBuilder(content, summarizer, baseLogger.With("component", "digest"))

	mode := cfg.Mode
	if mode == "" {
		mode = domain.ModeScheduled
	}
	a.cfg.Mode = mode
	a.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Source:       a.source,
		Builder:      builder,
		Deliverer:    deliverer,
		Store:        store,
		Mode:         mode,
		Organization: cfg.Organization,
		MaxItems:     cfg.Digest.Cap(mode),
		Logger:       baseLogger.With("component", "pipeline"),
	})

	return a, nil
}

// Run performs a single pipeline execution for the current day.
func (a *Application) Run(ctx context.Context) (domain.RunReport, error) {
	now := time.Now().In(a.cfg.Scheduler.Location())
	a.logger.Info("run started", "config", a.cfg.String())
	return a.pipeline.Run(ctx, now)
}

// Serve runs the pipeline every weekday at the configured time until ctx ends.
func (a *Application) Serve(ctx context.Context) error {
	driver, err := scheduler.NewWeekdayScheduler(a.cfg.Scheduler.RunAt, a.cfg.Scheduler.Location())
	if err != nil {
		return err
	}
	sched := usecase.NewScheduler(driver, a.pipeline, a.logger.With("component", "scheduler"))
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("scheduler started", "next", driver.Next(time.Now()).Format(time.RFC3339))

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return sched.Stop(stopCtx)
}

// Preview is what a run would send right now.
type Preview struct {
	PerBoard [][]domain.Notice
	Reports  []domain.BoardReport
	Selected []domain.Notice
}

// Preview scans every board and applies the digest selection without fetching
// bodies, delivering or touching the sent history.
func (a *Application) Preview(ctx context.Context) Preview {
	now := time.Now().In(a.cfg.Scheduler.Location())
	perBoard, reports := a.source.Collect(ctx, now)

	var registry digest.Membership
	if !a.cfg.Mode.Manual() {
		registry = sent.Load(ctx, a.store, a.logger.With("component", "preview"))
	}
	return Preview{
		PerBoard: perBoard,
		Reports:  reports,
		Selected: digest.Select(perBoard, registry, a.cfg.Digest.Cap(a.cfg.Mode)),
	}
}

// Close releases the browser and store.
func (a *Application) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func newBrowser(ctx context.Context, cfg config.BrowserConfig) (ports.Browser, error) {
	switch strings.ToLower(cfg.Engine) {
	case "", "http":
		b := browser.NewHTTPBrowser(nil)
		if cfg.UserAgent != "" {
			b.SetHeader("User-Agent", cfg.UserAgent)
		}
		return b, nil
	case "chrome", "chromedp":
		b, err := browser.NewChromeBrowser(ctx, cfg.UserAgent, cfg.LoadTimeout())
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unknown browser engine %q", cfg.Engine)
	}
}

func (a *Application) newStore(cfg config.StorageConfig) (ports.SentStore, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", "json":
		return storage.NewJSONStore(cfg.Path), nil
	case "sqlite":
		s, err := storage.OpenSQLiteStore(cfg.Path)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s.Close)
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func newDeliverer(cfg config.DeliveryConfig) (ports.Deliverer, error) {
	switch strings.ToLower(cfg.Transport) {
	case "", "mail", "smtp":
		return mail.NewSender(cfg.Mail), nil
	case "telegram":
		return telegram.NewNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID), nil
	default:
		return nil, fmt.Errorf("unknown delivery transport %q", cfg.Transport)
	}
}

// newSummarizer returns nil without error when summaries are switched off.
func newSummarizer(ctx context.Context, cfg config.Config, log *slog.Logger) (ports.Summarizer, error) {
	var backend ports.Summarizer
	switch strings.ToLower(cfg.Summary.Provider) {
	case "", "none", "off":
		return nil, nil
	case "gemini":
		if cfg.Gemini.APIKey == "" {
			return nil, nil
		}
		g, err := llm.NewGeminiClient(ctx, cfg.Gemini)
		if err != nil {
			return nil, err
		}
		backend = g
	case "openai", "chatgpt":
		if cfg.ChatGPT.APIKey == "" {
			return nil, nil
		}
		backend = llm.NewChatGPTClient(cfg.ChatGPT)
	case "service":
		if cfg.Service.Endpoint == "" {
			return nil, nil
		}
		backend = llm.NewServiceClient(cfg.Service)
	default:
		return nil, fmt.Errorf("unknown summary provider %q", cfg.Summary.Provider)
	}

	return llm.NewResilient(backend, llm.RetryPolicy{
		Attempts: cfg.Summary.Attempts,
		Pace:     time.Duration(cfg.Summary.PaceSec) * time.Second,
		Backoff:  time.Duration(cfg.Summary.BackoffSec) * time.Second,
	}, log), nil
}
