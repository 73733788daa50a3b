package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"nextstop/internal/alerts"
	"nextstop/internal/analytics"
	"nextstop/internal/config"
	"nextstop/internal/intents"
	"nextstop/internal/server"
	"nextstop/internal/storage"
	"nextstop/internal/transloc"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	godotenv.Load()

	cfg := config.Load()

	flag.IntVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the SQLite database")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))

	// Context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := storage.Open(cfg.DBPath, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	transit := transloc.NewClient(cfg.TranslocURL, logger)

	// Service alerts are optional; without a feed URL the summaries simply
	// carry no alert sentence.
	var alertStore *alerts.Store
	if cfg.AlertsURL != "" {
		alertStore = alerts.NewStore()
		fetcher := alerts.NewFetcher(cfg.AlertsURL, alertStore, logger)
		go fetcher.Start(ctx)
	}

	reporter := analytics.NewReporter(cfg.ChatbaseKey, logger)
	if !reporter.Enabled() {
		logger.Info("analytics reporting disabled")
	}

	service := intents.NewService(transit, alertStore, logger)
	srv := server.New(cfg, service, db, reporter, logger)

	// Graceful shutdown on SIGINT/SIGTERM
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down")
		cancel()
		os.Exit(0)
	}()

	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func logLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
