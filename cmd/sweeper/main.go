package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blog-ingest/config"
	"blog-ingest/db"
	"blog-ingest/internal/logger"
	"blog-ingest/repositories"
	"blog-ingest/storage"
	"blog-ingest/sweeper"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "Report orphaned assets without deleting them")
	minAge := flag.Duration("min-age", 0, "Skip assets newer than this (overrides sweeper.min_age_minutes)")
	flag.Parse()

	config.InitApp()
	cfg := config.GetConfig()
	logger.InitFromEnv("LOG_LEVEL", cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := db.Init(ctx); err != nil {
		logger.Log.Errorf("failed to initialize MongoDB: %v", err)
		os.Exit(1)
	}
	defer db.Disconnect(context.Background())

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		logger.Log.Errorf("failed to initialize media storage: %v", err)
		os.Exit(1)
	}

	age := time.Duration(cfg.Sweeper.MinAgeMinutes) * time.Minute
	if *minAge > 0 {
		age = *minAge
	}

	s := sweeper.New(store, repositories.NewPostRepository(db.Database()), sweeper.Options{
		MinAge: age,
		DryRun: *dryRun,
	})
	rep, err := s.Run(ctx)
	for _, key := range rep.Orphaned {
		logger.DebugWithFields("orphaned asset", logger.Fields{"key": key, "dry_run": *dryRun})
	}
	if err != nil {
		logger.Log.Errorf("sweep finished with errors: %v", err)
		os.Exit(1)
	}
}
