package main

import (
	"context"
	"log/slog"

	"NoticeBot/internal/app"
	"NoticeBot/internal/config"
	"NoticeBot/internal/domain"
	"NoticeBot/internal/logging"
)

// openApp loads configuration, forcing mode when non-empty, and builds the application.
func openApp(ctx context.Context, mode domain.Mode) (*app.Application, *slog.Logger, error) {
	cfg := config.Load(rootFlags.config)
	if mode != "" {
		cfg.Mode = mode
	}
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return application, logger, nil
}
