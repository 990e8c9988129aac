package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/nikhilbhutani/docchat/internal/api"
	"github.com/nikhilbhutani/docchat/internal/cache"
	"github.com/nikhilbhutani/docchat/internal/config"
	"github.com/nikhilbhutani/docchat/internal/database"
	"github.com/nikhilbhutani/docchat/internal/llm"
	"github.com/nikhilbhutani/docchat/internal/queue"
	"github.com/nikhilbhutani/docchat/internal/queue/workers"
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

	rdb := cache.NewRedisClient(cfg.Redis)
	defer rdb.Close()

	blobs, err := storage.New(cfg.Storage)
	if err != nil {
		slog.Error("failed to open blob store", "error", err)
		os.Exit(1)
	}

	_, controller, _, _ := api.BuildServices(db, rdb, cfg, llm.NewGateway(cfg.LLM), blobs)

	srv := asynq.NewServer(queue.RedisOpt(cfg.Redis), queue.ServerConfig(cfg.Worker.Concurrency))

	registry := queue.NewHandlersRegistry()
	rebuildWorker := workers.NewRebuildWorker(controller)
	registry.Register(queue.TypeContextRebuild, asynq.HandlerFunc(rebuildWorker.ProcessTask))

	slog.Info("starting worker", "concurrency", cfg.Worker.Concurrency)
	if err := srv.Run(registry.Mux()); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}
