package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/voxlore/voxlore/internal/app"
	"github.com/voxlore/voxlore/internal/common"
	"github.com/voxlore/voxlore/internal/server"
)

// runServe starts the HTTP server and blocks until shutdown
func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	var files configPaths
	fs.Var(&files, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	fs.Var(&files, "c", "Configuration file path (shorthand)")
	port := fs.Int("port", 0, "Server port (overrides config)")
	portP := fs.Int("p", 0, "Server port (shorthand, overrides config)")
	host := fs.String("host", "", "Server host (overrides config)")
	showVersion := fs.Bool("version", false, "Print version information")
	fs.Parse(args)

	if *showVersion {
		runVersion()
		return
	}

	finalPort := *port
	if *portP != 0 {
		finalPort = *portP
	}

	config, logger := loadConfig(files, finalPort, *host)

	common.PrintBanner(common.GetVersion())

	application, err := app.New(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
		os.Exit(1)
	}
	defer application.Close()

	srv := server.New(application)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal().Err(err).Msg("Server failed to start")
			os.Exit(1)
		}
	}()

	logger.Info().
		Str("url", fmt.Sprintf("http://%s:%d", config.Server.Host, config.Server.Port)).
		Msg("Server ready - Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info().Msg("Interrupt signal received, shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown failed")
	}

	logger.Info().Msg("Server stopped")
}
