// Package main is the entry point for the Waypost API server.
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
	"github.com/joho/godotenv"

	"github.com/waypost/waypost/backend/internal/assistant"
	"github.com/waypost/waypost/backend/internal/config"
	"github.com/waypost/waypost/backend/internal/handler"
	"github.com/waypost/waypost/backend/internal/middleware"
	"github.com/waypost/waypost/backend/internal/repo"
	"github.com/waypost/waypost/backend/internal/service"
	"github.com/waypost/waypost/backend/internal/storage"
)

func main() {
	// --- Config -----------------------------------------------------------
	// .env is a development convenience; a missing file is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
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

	// --- Database ---------------------------------------------------------
	// DATABASE_URL selects the networked Postgres backend; without it the
	// server runs self-contained on an embedded SQLite file.
	var db storage.Adapter
	if cfg.DatabaseURL != "" {
		db, err = storage.OpenPostgres(context.Background(), cfg.DatabaseURL)
	} else {
		db, err = storage.OpenSQLite(cfg.SQLitePath)
	}
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database ready", "dialect", db.Dialect())

	// --- Services ---------------------------------------------------------
	tripRepo := repo.NewTripRepo(db)
	stopRepo := repo.NewStopRepo(db)
	convoRepo := repo.NewConversationRepo(db)
	settingRepo := repo.NewSettingRepo(db)

	tripSvc := service.NewTripService(tripRepo)
	stopSvc := service.NewStopService(tripRepo, stopRepo)
	convoSvc := service.NewConversationService(tripRepo, convoRepo)
	settingSvc := service.NewSettingService(settingRepo, cfg.OpenAIAPIKey)
	transferSvc := service.NewTransferService(tripRepo, stopRepo, convoRepo)
	assistantSvc := service.NewAssistantService(tripRepo, convoRepo, stopSvc, settingSvc,
		func(apiKey string) assistant.Model {
			return assistant.NewOpenAIModel(apiKey, assistant.WithModel(cfg.OpenAIModel))
		})

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer
	// → CORS → body size cap.
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
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	server := handler.NewServer(tripSvc, stopSvc, convoSvc, settingSvc, transferSvc, assistantSvc)
	r.Mount("/", server.Routes())

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	// The write timeout leaves headroom for an assistant turn, which can make
	// several upstream model calls.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 5 * time.Minute,
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
