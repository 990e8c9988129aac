package rag

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/nikhilbhutani/docchat/internal/document"
	"github.com/nikhilbhutani/docchat/internal/embedding"
	"github.com/nikhilbhutani/docchat/internal/models"
	"github.com/nikhilbhutani/docchat/internal/vectorstore"
	"github.com/nikhilbhutani/docchat/pkg/chunker"
	"github.com/nikhilbhutani/docchat/pkg/tokenizer"
)

type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

type ChunkResult struct {
	Content    string
	Index      int
	TokenCount int
}

// Result reports one document's embed outcome. Failures are carried in the
// result, never returned as errors.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Chunks  int    `json:"chunks"`
}

type IndexerOptions struct {
	Collection string
	Chunking   chunker.ChunkOptions
}

// Indexer is the chunking and embedding pipeline that fills the vector index.
type Indexer struct {
	extractor   document.TextExtractor
	chunker     chunker.Chunker
	embedderFor func(model string) Embedder
	index       vectorstore.Index
	opts        IndexerOptions
}

func NewIndexer(ext document.TextExtractor, emb *embedding.Service, index vectorstore.Index, opts IndexerOptions) *Indexer {
	return newIndexer(ext, func(model string) Embedder { return emb.WithModel(model) }, index, opts)
}

func newIndexer(ext document.TextExtractor, embedderFor func(string) Embedder, index vectorstore.Index, opts IndexerOptions) *Indexer {
	if opts.Chunking.ChunkSize <= 0 {
		opts.Chunking = chunker.DefaultOptions()
	}
	return &Indexer{
		extractor:   ext,
		chunker:     chunker.New(),
		embedderFor: embedderFor,
		index:       index,
		opts:        opts,
	}
}

// Split extracts the text of a stored file and cuts it into overlapping
// chunks. File kinds the extractor does not know yield no chunks.
func (ix *Indexer) Split(ctx context.Context, name string, data []byte) ([]ChunkResult, error) {
	text, err := ix.extractor.Extract(ctx, name, data)
	if err != nil {
		return nil, err
	}

	chunks := ix.chunker.Chunk(text, ix.opts.Chunking)
	results := make([]ChunkResult, len(chunks))
	for i, ch := range chunks {
		results[i] = ChunkResult{
			Content:    ch.Content,
			Index:      ch.Index,
			TokenCount: tokenizer.CountTokens(ch.Content),
		}
	}
	return results, nil
}

// Embed computes a vector per chunk with the given embedding model (empty
// means the configured one) and adds them all to the index in one call.
func (ix *Indexer) Embed(ctx context.Context, doc models.Document, chunks []ChunkResult, model string) Result {
	if len(chunks) == 0 {
		return Result{Success: true, Message: "No text to embed"}
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	vectors, err := ix.embedderFor(model).Embed(ctx, texts)
	if err != nil {
		slog.Error("embedding failed", "document_id", doc.ID, "error", err)
		return Result{Message: fmt.Sprintf("Exception : %v", err)}
	}
	if len(vectors) != len(chunks) {
		return Result{Message: fmt.Sprintf("Exception : got %d vectors for %d chunks", len(vectors), len(chunks))}
	}

	records := make([]vectorstore.Chunk, len(chunks))
	for i, c := range chunks {
		records[i] = vectorstore.Chunk{
			ID:         uuid.New(),
			Collection: ix.opts.Collection,
			DocumentID: doc.ID,
			ChunkIndex: c.Index,
			Content:    c.Content,
			Embedding:  vectors[i],
			TokenCount: c.TokenCount,
		}
	}

	if err := ix.index.AddDocuments(ctx, records); err != nil {
		slog.Error("vector upload failed", "document_id", doc.ID, "error", err)
		return Result{Message: fmt.Sprintf("Exception : %v", err)}
	}

	return Result{
		Success: true,
		Message: "Document Vectors uploaded in vector store successfully",
		Chunks:  len(records),
	}
}
