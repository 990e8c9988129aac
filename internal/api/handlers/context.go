package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/nikhilbhutani/docchat/internal/activation"
	"github.com/nikhilbhutani/docchat/internal/cache"
	"github.com/nikhilbhutani/docchat/internal/models"
	"github.com/nikhilbhutani/docchat/internal/queue"
)

type ContextBuilder interface {
	BuildContext(ctx context.Context, req activation.Request) (*activation.Result, error)
}

type RebuildEnqueuer interface {
	EnqueueContextRebuild(ctx context.Context, payload queue.ContextRebuildPayload) (string, error)
}

type RebuildStatusReader interface {
	Last(ctx context.Context) (*models.RebuildStatus, error)
}

type ContextHandler struct {
	builder  ContextBuilder
	enqueuer RebuildEnqueuer
	status   RebuildStatusReader
}

func NewContextHandler(builder ContextBuilder, enqueuer RebuildEnqueuer, status RebuildStatusReader) *ContextHandler {
	return &ContextHandler{builder: builder, enqueuer: enqueuer, status: status}
}

func (h *ContextHandler) Build(w http.ResponseWriter, r *http.Request) {
	var req activation.Request
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.builder.BuildContext(r.Context(), req)
	if errors.Is(err, activation.ErrUnknownEmbeddingModel) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		slog.Error("build context failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, activation.Result{Message: "failed to activate documents"})
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *ContextHandler) BuildAsync(w http.ResponseWriter, r *http.Request) {
	var req activation.Request
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.EmbeddingModel != "" && !models.IsEmbeddingModel(req.EmbeddingModel) {
		writeError(w, http.StatusBadRequest, activation.ErrUnknownEmbeddingModel.Error()+": "+req.EmbeddingModel)
		return
	}

	taskID, err := h.enqueuer.EnqueueContextRebuild(r.Context(), queue.ContextRebuildPayload{
		IDs:            req.IDs,
		EmbeddingModel: req.EmbeddingModel,
	})
	if err != nil {
		slog.Error("enqueue context rebuild failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to schedule rebuild")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"task_id": taskID})
}

func (h *ContextHandler) Status(w http.ResponseWriter, r *http.Request) {
	st, err := h.status.Last(r.Context())
	if errors.Is(err, cache.ErrMiss) {
		writeError(w, http.StatusNotFound, "no rebuild recorded")
		return
	}
	if err != nil {
		slog.Error("read rebuild status failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read rebuild status")
		return
	}
	writeJSON(w, http.StatusOK, st)
}
