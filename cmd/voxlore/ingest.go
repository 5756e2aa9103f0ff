package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/voxlore/voxlore/internal/app"
)

// runIngest imports a creator profile export into record storage
func runIngest(args []string) {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	var files configPaths
	fs.Var(&files, "config", "Configuration file path (can be specified multiple times)")
	fs.Var(&files, "c", "Configuration file path (shorthand)")
	exportPath := fs.String("file", "", "Path to the profile export (defaults to corpus.export_path)")
	fs.Parse(args)

	config, logger := loadConfig(files, 0, "")

	if *exportPath == "" {
		*exportPath = config.Corpus.ExportPath
	}

	application, err := app.New(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
		os.Exit(1)
	}
	defer application.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	report, err := application.IngestService.ImportFile(ctx, *exportPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", *exportPath).Msg("Corpus import failed")
		os.Exit(1)
	}

	logger.Info().
		Int("total", report.Total).
		Int("ingested", report.Ingested).
		Int("skipped", report.Skipped).
		Int("total_tokens", report.TotalTokens).
		Msg("Corpus import finished")
}
