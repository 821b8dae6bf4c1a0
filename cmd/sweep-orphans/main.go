// Command-line tool deleting stored reference files no article reference points to.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"article-admin-backend/internal/config"
	"article-admin-backend/internal/database"
	"article-admin-backend/internal/logging"
	"article-admin-backend/internal/repository"
	"article-admin-backend/internal/storage"
)

func main() {
	grace := flag.Duration("grace", 0, "only delete orphans older than this (default ORPHAN_GRACE_PERIOD)")
	timeout := flag.Duration("timeout", 30*time.Minute, "abort the sweep after this long")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *grace > 0 {
		cfg.OrphanGracePeriod = *grace
	}

	logger := logging.New(os.Stdout, cfg.LogFormat, cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db, err := database.NewDBInstance(cfg.DB, logger)
	if err != nil {
		log.Fatalf("Database failed to initialize: %v", err)
	}
	defer func() { _ = db.Close() }()

	client, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("Storage failed to initialize: %v", err)
	}

	sweeper := storage.NewSweeper(client, repository.FilenameSource{DB: db.DB}, cfg.OrphanGracePeriod, nil, logger)
	report, err := sweeper.Sweep(ctx)
	if err != nil {
		log.Fatalf("Sweep failed: %v", err)
	}

	fmt.Printf("Scanned %d objects, deleted %d orphans, %d failed.\n", report.Scanned, report.Deleted, report.Failed)
	if report.Failed > 0 {
		os.Exit(1)
	}
}
