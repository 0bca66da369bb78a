package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"CampusEvents/internal/app"
	"CampusEvents/internal/config"
	"CampusEvents/internal/logging"
)

func main() {
	once := flag.Bool("once", false, "run a single scrape and extraction pass, then exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("application init failed", "error", err)
		os.Exit(1)
	}

	run := application.Run
	if *once {
		run = application.RunOnce
	}

	if err := run(ctx); err != nil {
		logger.Error("application stopped", "error", err)
		os.Exit(1)
	}
}
