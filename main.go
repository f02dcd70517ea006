// Copyright (c) 2025 Louis Bertrand.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/louisbertrand/map-louis/alerts"
	"github.com/louisbertrand/map-louis/config"
	"github.com/louisbertrand/map-louis/db"
	"github.com/louisbertrand/map-louis/fetcher"
	"github.com/louisbertrand/map-louis/metrics"
	"github.com/louisbertrand/map-louis/middleware"
	"github.com/louisbertrand/map-louis/notify"
	"github.com/louisbertrand/map-louis/router"
	"github.com/louisbertrand/map-louis/safecast"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		slog.Error("Error loading configuration", "error", err)
		os.Exit(1)
	}

	setupLogging(cfg.Logging)

	// Open the local store
	dbConn, err := db.Open(cfg.Database.Path)
	if err != nil {
		slog.Error("database open failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	if err := dbConn.Ping(); err != nil {
		slog.Error("database ping failed", "error", err)
		os.Exit(1)
	}

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "path", cfg.Database.Path)

	m := metrics.New()

	// Background pipeline: poller + retention janitor
	var notifiers []notify.Notifier
	if cfg.Alerts.Email.Enabled {
		notifiers = append(notifiers, notify.NewEmailNotifier(cfg.Alerts.Email))
	}
	if cfg.Alerts.SMS.Enabled {
		notifiers = append(notifiers, notify.NewSMSNotifier(cfg.Alerts.SMS))
	}
	evaluator := alerts.NewEvaluator(dbConn, cfg.Alerts, notifiers, m)

	client := safecast.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.RequestTimeout)
	poller := fetcher.New(dbConn, client, cfg.Upstream, evaluator, m)
	if err := poller.SeedTracked(); err != nil {
		slog.Error("failed to seed tracked devices", "error", err)
		os.Exit(1)
	}
	janitor := fetcher.NewJanitor(dbConn, cfg.Retention, m)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go poller.Run(ctx)
	go janitor.Run(ctx)

	// Create router
	mux := router.NewRouter(dbConn, cfg, m)

	server := http.Server{
		Handler: middleware.CORS(mux),
		Addr:    ":" + strconv.Itoa(cfg.Server.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctrlc
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		server.Shutdown(shutdownCtx)
	}()

	slog.Info("Listening", "port", cfg.Server.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed")
	}
}

// setupLogging configures the default slog logger: JSON to a rotating file
// when one is configured, text to stderr otherwise.
func setupLogging(cfg config.LoggingConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	if cfg.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		}
		handler = slog.NewJSONHandler(rotator, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}

	slog.SetDefault(slog.New(handler))
}
