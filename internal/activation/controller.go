package activation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nikhilbhutani/docchat/internal/models"
	"github.com/nikhilbhutani/docchat/internal/rag"
	"github.com/nikhilbhutani/docchat/internal/vectorstore"
)

var ErrUnknownEmbeddingModel = errors.New("unknown embedding model")

const (
	msgRebuilt       = "Documents embedded and uploaded in vector store successfully"
	msgRegistryError = "database communication error"
)

type Registry interface {
	List(ctx context.Context) ([]models.Document, error)
	SetActive(ctx context.Context, ids []int64) error
	ListActive(ctx context.Context) ([]models.Document, error)
}

type BlobReader interface {
	Read(ctx context.Context, name string) ([]byte, error)
	Exists(ctx context.Context, name string) (bool, error)
}

type Pipeline interface {
	Split(ctx context.Context, name string, data []byte) ([]rag.ChunkResult, error)
	Embed(ctx context.Context, doc models.Document, chunks []rag.ChunkResult, model string) rag.Result
}

// StatusStore records the last rebuild outcome. Optional.
type StatusStore interface {
	Save(ctx context.Context, status models.RebuildStatus) error
}

type Request struct {
	IDs            []int64 `json:"ids"`
	EmbeddingModel string  `json:"embedding_model,omitempty"`
}

type Result struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Embedded int    `json:"embedded"`
	Total    int    `json:"total"`

	// Skipped lists requested documents left inactive because their file is missing.
	Skipped []int64 `json:"skipped,omitempty"`
}

// Controller flips the active document set and rebuilds the vector index
// from whatever is active afterwards. The truncate-and-refill window is not
// isolated from readers.
type Controller struct {
	registry Registry
	blobs    BlobReader
	index    vectorstore.Index
	pipeline Pipeline
	status   StatusStore
	now      func() time.Time
}

func NewController(registry Registry, blobs BlobReader, index vectorstore.Index, pipeline Pipeline, status StatusStore) *Controller {
	return &Controller{
		registry: registry,
		blobs:    blobs,
		index:    index,
		pipeline: pipeline,
		status:   status,
		now:      time.Now,
	}
}

// BuildContext returns an error only when the request is invalid or the
// activation flip fails. Embedding problems are reported in the Result.
func (c *Controller) BuildContext(ctx context.Context, req Request) (*Result, error) {
	if req.EmbeddingModel != "" && !models.IsEmbeddingModel(req.EmbeddingModel) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEmbeddingModel, req.EmbeddingModel)
	}

	ids, skipped, err := c.withBlobs(ctx, req.IDs)
	if err != nil {
		return nil, err
	}

	if err := c.registry.SetActive(ctx, ids); err != nil {
		return nil, fmt.Errorf("activate documents: %w", err)
	}
	slog.Info("documents activated", "ids", ids, "skipped", skipped)

	// Rebuild from durable state, not from the request.
	active, err := c.registry.ListActive(ctx)
	if err != nil {
		slog.Error("failed to list active documents", "error", err)
		return c.finish(ctx, &Result{Message: msgRegistryError}), nil
	}

	if !c.index.Truncate(ctx) {
		slog.Warn("vector index truncate failed, rebuilding on top of existing vectors")
	}

	embedded := 0
	for _, doc := range active {
		if c.embedDocument(ctx, doc, req.EmbeddingModel) {
			embedded++
		}
	}

	total := len(active) + len(skipped)
	res := &Result{Embedded: embedded, Total: total, Skipped: skipped}
	if embedded == total {
		res.Success = true
		res.Message = msgRebuilt
	} else {
		res.Message = fmt.Sprintf("%d of %d documents embedded", embedded, total)
	}
	return c.finish(ctx, res), nil
}

// withBlobs splits the requested ids into those whose file is stored and
// those whose file is missing. A document is only activated with its file
// present. Ids unknown to the registry are passed through; the flip ignores them.
func (c *Controller) withBlobs(ctx context.Context, ids []int64) ([]int64, []int64, error) {
	if len(ids) == 0 {
		return ids, nil, nil
	}

	docs, err := c.registry.List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list documents: %w", err)
	}
	names := make(map[int64]string, len(docs))
	for _, d := range docs {
		names[d.ID] = d.Name
	}

	keep := make([]int64, 0, len(ids))
	var skipped []int64
	for _, id := range ids {
		name, ok := names[id]
		if !ok {
			keep = append(keep, id)
			continue
		}
		exists, err := c.blobs.Exists(ctx, name)
		if err != nil {
			return nil, nil, fmt.Errorf("check blob %q: %w", name, err)
		}
		if !exists {
			slog.Warn("document file missing, not activating", "document_id", id, "name", name)
			skipped = append(skipped, id)
			continue
		}
		keep = append(keep, id)
	}
	return keep, skipped, nil
}

func (c *Controller) embedDocument(ctx context.Context, doc models.Document, model string) bool {
	log := slog.With("document_id", doc.ID, "name", doc.Name)

	data, err := c.blobs.Read(ctx, doc.Name)
	if err != nil {
		log.Error("failed to read document blob", "error", err)
		return false
	}

	chunks, err := c.pipeline.Split(ctx, doc.Name, data)
	if err != nil {
		log.Error("failed to split document", "error", err)
		return false
	}

	res := c.pipeline.Embed(ctx, doc, chunks, model)
	if !res.Success {
		log.Error("failed to embed document", "message", res.Message)
		return false
	}

	log.Info("document embedded", "chunks", res.Chunks)
	return true
}

func (c *Controller) finish(ctx context.Context, res *Result) *Result {
	slog.Info("context rebuild finished", "success", res.Success, "embedded", res.Embedded, "total", res.Total)

	if c.status == nil {
		return res
	}
	err := c.status.Save(ctx, models.RebuildStatus{
		Success:    res.Success,
		Message:    res.Message,
		Embedded:   res.Embedded,
		Total:      res.Total,
		FinishedAt: c.now().UTC(),
	})
	if err != nil {
		slog.Warn("failed to record rebuild status", "error", err)
	}
	return res
}
