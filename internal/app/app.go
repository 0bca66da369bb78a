package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"CampusEvents/internal/config"
	"CampusEvents/internal/extract"
	"CampusEvents/internal/infrastructure/images"
	"CampusEvents/internal/infrastructure/scheduler"
	"CampusEvents/internal/infrastructure/scraper"
	"CampusEvents/internal/infrastructure/storage"
	"CampusEvents/internal/infrastructure/telegram"
	"CampusEvents/internal/infrastructure/vision"
	"CampusEvents/internal/logging"
	"CampusEvents/internal/ports"
	"CampusEvents/internal/server"
	"CampusEvents/internal/usecase"
)

const shutdownTimeout = 15 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	db        *sql.DB
	pipeline  *usecase.Pipeline
	scheduler *usecase.Scheduler
	server    *server.Server
}

// New builds a runnable application instance. It connects to the
// database and ensures the schema exists before returning.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	db, err := storage.Open(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	repo := storage.NewPostgresRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	source := scraper.NewClient(cfg.Scraper)
	model := vision.NewClient(cfg.Vision)
	fetcher := images.NewFetcher(cfg.Images)
	deduper := extract.NewDeduper(repo)

	sync := usecase.NewSourceSync(source, repo, repo, baseLogger.With("component", "sync"))
	extractor := usecase.NewExtractionWorker(repo, repo, deduper, fetcher, model,
		baseLogger.With("component", "extractor"))

	var notifier ports.Notifier
	if tg := cfg.Notifications.Telegram; tg.BotToken != "" && tg.ChatID != "" {
		notifier = telegram.NewNotifier(tg.BotToken, tg.ChatID)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Sync:      sync,
		Extractor: extractor,
		Posts:     repo,
		Notifier:  notifier,
		Logger:    baseLogger.With("component", "pipeline"),
	})

	driver := scheduler.NewCronScheduler(cfg.Scheduler.CronExpression, cfg.Scheduler.Location())
	sched := usecase.NewScheduler(driver, pipeline, baseLogger.With("component", "scheduler"))

	srv := server.New(cfg.Server.Addr, pipeline, repo, repo, baseLogger.With("component", "server"))

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		db:        db,
		pipeline:  pipeline,
		scheduler: sched,
		server:    srv,
	}, nil
}

// RunOnce performs a single pipeline pass and exits.
func (a *Application) RunOnce(ctx context.Context) error {
	defer a.db.Close()
	return a.pipeline.Run(ctx)
}

// Run starts the scheduler and the HTTP server and blocks until the
// context is canceled or the server fails.
func (a *Application) Run(ctx context.Context) error {
	if err := a.scheduler.Start(ctx); err != nil {
		a.db.Close()
		return fmt.Errorf("start scheduler: %w", err)
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- a.server.Start()
	}()

	a.logger.Info("application started",
		"addr", a.cfg.Server.Addr,
		"cron", a.cfg.Scheduler.CronExpression)

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		runErr = err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.scheduler.Stop(shutdownCtx); err != nil {
		a.logger.Warn("scheduler shutdown", "error", err)
	}
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("server shutdown", "error", err)
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("database close", "error", err)
	}

	return runErr
}
