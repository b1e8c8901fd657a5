package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"caption/internal/config"
	"caption/internal/daemon"
	"caption/internal/logging"
	"caption/internal/queue"
	"caption/internal/sweeper"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// .env is optional; the API key can also live in the config file.
	_ = godotenv.Load()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	logger, err := logging.NewForDaemon(cfg.Logging.Level, cfg.Logging.Format, cfg.Paths.LogDir)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, err := queue.Open()
	if err != nil {
		logger.Error("open job registry", logging.Error(err))
		os.Exit(1)
	}

	workflowManager, err := buildWorkflow(cfg, store, logger)
	if err != nil {
		logger.Error("configure workflow", logging.Error(err))
		os.Exit(1)
	}
	retentionSweeper := sweeper.New(cfg, store, logger)

	d, err := daemon.New(cfg, store, logger, workflowManager, retentionSweeper)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		os.Exit(1)
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("captiond shutting down")
}
