package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pyrus-tasks/backend/internal/config"
	"github.com/pyrus-tasks/backend/internal/server"
	"github.com/pyrus-tasks/backend/internal/server/storage"
	"github.com/pyrus-tasks/backend/internal/server/storage/postgres"
	"github.com/pyrus-tasks/backend/internal/server/storage/sqlite"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := newLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	userStorage, err := newUserStorage(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open user storage: %w", err)
	}
	defer func() {
		if err := userStorage.Close(); err != nil {
			logger.Error("failed to close user storage", "error", err)
		}
	}()

	logger.Info("starting server",
		"version", Version,
		"address", cfg.Address,
		"pyrus_api", cfg.Pyrus.APIURL,
	)

	app := server.New(cfg, logger, userStorage)

	return app.Run(ctx)
}

// newUserStorage выбирает бэкенд по DSN: postgres:// подключает
// PostgreSQL, любое другое значение трактуется как путь к файлу SQLite.
func newUserStorage(ctx context.Context, databaseURL string) (storage.UserStorage, error) {
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		return postgres.New(ctx, databaseURL)
	}
	return sqlite.New(ctx, databaseURL)
}

func newLogger(level string) *slog.Logger {
	var slogLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slogLevel,
	}))
}

func printVersion() {
	fmt.Printf("Pyrus Tasks Backend\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
