package workers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/nikhilbhutani/docchat/internal/activation"
	"github.com/nikhilbhutani/docchat/internal/queue"
)

type ContextBuilder interface {
	BuildContext(ctx context.Context, req activation.Request) (*activation.Result, error)
}

// RebuildWorker runs the activation and rebuild protocol for queued requests.
type RebuildWorker struct {
	builder ContextBuilder
}

func NewRebuildWorker(builder ContextBuilder) *RebuildWorker {
	return &RebuildWorker{builder: builder}
}

func (w *RebuildWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	payload, err := queue.ParseContextRebuildPayload(t)
	if err != nil {
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}

	slog.Info("processing context rebuild", "ids", payload.IDs)

	res, err := w.builder.BuildContext(ctx, activation.Request{
		IDs:            payload.IDs,
		EmbeddingModel: payload.EmbeddingModel,
	})
	if err != nil {
		return fmt.Errorf("build context: %w", err)
	}

	// Partial failures are part of the recorded status, not task errors.
	slog.Info("context rebuild task done", "success", res.Success, "message", res.Message)
	return nil
}
