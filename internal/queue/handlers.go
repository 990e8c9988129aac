package queue

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// QueueRebuild holds context rebuild tasks.
const QueueRebuild = "rebuild"

type HandlersRegistry struct {
	mux *asynq.ServeMux
}

func NewHandlersRegistry() *HandlersRegistry {
	mux := asynq.NewServeMux()
	mux.Use(logTask)
	return &HandlersRegistry{mux: mux}
}

func (r *HandlersRegistry) Register(taskType string, handler asynq.Handler) {
	r.mux.Handle(taskType, handler)
}

func (r *HandlersRegistry) Mux() *asynq.ServeMux {
	return r.mux
}

// ServerConfig returns the asynq settings for the worker process.
func ServerConfig(concurrency int) asynq.Config {
	if concurrency < 1 {
		concurrency = 1
	}
	return asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			QueueRebuild: 1,
		},
		StrictPriority: true,
	}
}

func logTask(next asynq.Handler) asynq.Handler {
	return asynq.HandlerFunc(func(ctx context.Context, t *asynq.Task) error {
		id, _ := asynq.GetTaskID(ctx)
		start := time.Now()
		err := next.ProcessTask(ctx, t)
		attrs := []any{"task_id", id, "type", t.Type(), "duration_ms", time.Since(start).Milliseconds()}
		if err != nil {
			slog.Error("task failed", append(attrs, "error", err)...)
			return err
		}
		slog.Info("task done", attrs...)
		return nil
	})
}
