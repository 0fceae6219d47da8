// Package main is the entry point for the Meeting Guide API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/robfig/cron/v3"
	"github.com/sethvargo/go-retry"

	"github.com/meetingguide/backend/internal/config"
	"github.com/meetingguide/backend/internal/handler"
	"github.com/meetingguide/backend/internal/middleware"
	"github.com/meetingguide/backend/internal/service"
	"github.com/meetingguide/backend/internal/source"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	settings, err := config.LoadSettings(cfg.SettingsFile)
	if err != nil {
		slog.Error("settings error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	// log/slog is the stdlib structured logger introduced in Go 1.21.
	// JSON handler writes machine-readable output suitable for log aggregators.
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Data set ---------------------------------------------------------
	// One-shot load at startup. The core models no retries (fetch resolved
	// or fetch failed are its only terminal states), so transient network
	// failures are retried out here at the boundary. If the load still
	// fails, the server starts anyway and every data endpoint reports the
	// load error until a scheduled reload succeeds.
	directory := service.NewDirectoryService(source.NewFetcher(), cfg.SourceURL, cfg.SourceTimezone, settings)

	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 2*time.Minute)
	backoff := retry.WithMaxRetries(3, retry.NewExponential(2*time.Second))
	err = retry.Do(loadCtx, backoff, func(ctx context.Context) error {
		if err := directory.Load(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	cancelLoad()
	if err != nil {
		slog.Error("initial data load failed", "error", err, "source", cfg.SourceURL)
	} else {
		slog.Info("data set loaded", "source", cfg.SourceURL)
	}

	// Optional scheduled full re-load. The data set only ever changes by a
	// complete reload, never incrementally.
	if cfg.RefreshCron != "" {
		c := cron.New()
		if _, err := c.AddFunc(cfg.RefreshCron, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			if err := directory.Load(ctx); err != nil {
				slog.Error("scheduled reload failed", "error", err)
				return
			}
			slog.Info("data set reloaded")
		}); err != nil {
			slog.Error("invalid SOURCE_REFRESH_CRON", "error", err, "cron", cfg.RefreshCron)
			os.Exit(1)
		}
		c.Start()
		defer c.Stop()
	}

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer → CORS.
	// RequestID generates a unique trace ID per request.
	// RealIP sets r.RemoteAddr from X-Forwarded-For / X-Real-IP (safe behind a proxy).
	// SlogLogger writes one structured JSON log line per request.
	// Recoverer catches panics and returns HTTP 500 instead of crashing.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))

	calendar := service.NewCalendarService(directory)
	r.Mount("/", handler.NewServer(directory, calendar).Routes())

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
