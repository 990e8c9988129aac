package vectorstore

import (
	"context"

	"github.com/google/uuid"
)

type Chunk struct {
	ID         uuid.UUID
	Collection string
	DocumentID int64
	ChunkIndex int
	Content    string
	Embedding  []float32
	TokenCount int
}

type SearchOptions struct {
	Collection string
	TopK       int
	MinScore   float64
}

type SearchResult struct {
	ChunkID    uuid.UUID `json:"chunk_id"`
	DocumentID int64     `json:"document_id"`
	Content    string    `json:"content"`
	Score      float64   `json:"score"`
	ChunkIndex int       `json:"chunk_index"`
}

// Index is the rebuildable nearest-neighbour store of chunk embeddings.
// There is no per-document delete; stale vectors are removed only by Truncate.
type Index interface {
	// Truncate empties the index. It reports false only when the store
	// could not be reached, never because it was already empty.
	Truncate(ctx context.Context) bool
	AddDocuments(ctx context.Context, chunks []Chunk) error
	SimilaritySearch(ctx context.Context, query []float32, opts SearchOptions) ([]SearchResult, error)
	HybridSearch(ctx context.Context, query string, queryVec []float32, opts SearchOptions) ([]SearchResult, error)
}
