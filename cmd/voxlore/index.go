package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/voxlore/voxlore/internal/app"
)

// runIndex builds the embedding index and publishes the snapshot
func runIndex(args []string) {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	var files configPaths
	fs.Var(&files, "config", "Configuration file path (can be specified multiple times)")
	fs.Var(&files, "c", "Configuration file path (shorthand)")
	fs.Parse(args)

	config, logger := loadConfig(files, 0, "")

	application, err := app.New(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
		os.Exit(1)
	}
	defer application.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	report, err := application.RebuildIndex(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("Index build failed")
		os.Exit(1)
	}

	logger.Info().
		Str("model", config.Indexing.EmbedModel).
		Int("total_chunks", report.TotalChunks).
		Int("embedded_new", report.EmbeddedNew).
		Int("reused", report.ReusedExisting).
		Int("removed", report.Removed).
		Int("failed", report.Failed).
		Int64("duration_ms", report.DurationMs).
		Msg("Index build finished")
}
