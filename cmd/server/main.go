// Package main is the entry point for the prep tracker server.
//
// The main package stays minimal — its job is to:
//  1. Read configuration (config.Load handles env vars and .env)
//  2. Create the process-wide dependencies (logger, optional sandbox)
//  3. Start the application and exit non-zero on failure
//
// All actual logic lives in imported packages (internal/server and below).
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/prep-tracker/internal/config"
	"github.com/sakif/prep-tracker/internal/sandbox"
	"github.com/sakif/prep-tracker/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Make sure the database directory exists before sqlite tries to
	// create the file in it.
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", filepath.Dir(cfg.DBPath)),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// The Docker sandbox is optional — the server runs without it and the
	// practice-run endpoint answers 503.
	var runner sandbox.Runner
	if cfg.SandboxEnabled {
		dockerRunner, err := sandbox.NewDockerRunner(sandbox.DefaultConfig(), logger)
		if err != nil {
			logger.Warn("sandbox unavailable — /api/practice/run will return 503",
				slog.String("error", err.Error()),
			)
		} else {
			runner = dockerRunner
			defer dockerRunner.Close()
		}
	}

	srv, err := server.New(cfg, logger, runner)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until shutdown (Ctrl+C or SIGTERM).
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
