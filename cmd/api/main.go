package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nikhilbhutani/docchat/internal/api"
	"github.com/nikhilbhutani/docchat/internal/cache"
	"github.com/nikhilbhutani/docchat/internal/config"
	"github.com/nikhilbhutani/docchat/internal/database"
	"github.com/nikhilbhutani/docchat/internal/queue"
	"github.com/nikhilbhutani/docchat/internal/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		slog.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	applied, err := database.RunMigrations(ctx, db, cfg.Database.MigrationsPath)
	if err != nil {
		slog.Error("migrations failed", "error", err)
		os.Exit(1)
	}
	slog.Info("migrations applied", "count", applied)

	rdb := cache.NewRedisClient(cfg.Redis)
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unavailable, async rebuilds and status will fail", "error", err)
	}
	defer rdb.Close()

	blobs, err := storage.New(cfg.Storage)
	if err != nil {
		slog.Error("failed to open blob store", "error", err)
		os.Exit(1)
	}

	queueClient := queue.NewClient(cfg.Redis)
	defer queueClient.Close()

	router := api.NewRouter(db, rdb, cfg, blobs, queueClient)
	defer router.Close()
	handler := router.Setup()

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 10 * time.Minute, // synchronous rebuilds can be slow
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("starting API server", "addr", cfg.Addr(), "blob_backend", cfg.Storage.Backend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}
	slog.Info("server stopped")
}
