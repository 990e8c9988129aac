package rag

import (
	"context"
	"fmt"

	"github.com/nikhilbhutani/docchat/internal/vectorstore"
)

type QueryEmbedder interface {
	EmbedSingle(ctx context.Context, text string) ([]float32, error)
}

// RetrieverOptions selects the collection and ranking. Results scoring
// below MinScore are dropped.
type RetrieverOptions struct {
	Collection string
	Hybrid     bool
	MinScore   float64
}

type Retriever struct {
	index    vectorstore.Index
	embedder QueryEmbedder
	opts     RetrieverOptions
}

func NewRetriever(index vectorstore.Index, embedder QueryEmbedder, opts RetrieverOptions) *Retriever {
	return &Retriever{index: index, embedder: embedder, opts: opts}
}

// Retrieve returns the k chunks nearest to query, best first.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]vectorstore.SearchResult, error) {
	queryVec, err := r.embedder.EmbedSingle(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	opts := vectorstore.SearchOptions{Collection: r.opts.Collection, TopK: k, MinScore: r.opts.MinScore}
	if r.opts.Hybrid {
		return r.index.HybridSearch(ctx, query, queryVec, opts)
	}
	return r.index.SimilaritySearch(ctx, queryVec, opts)
}
