package rag

import (
	"context"
	"errors"

	"github.com/nikhilbhutani/docchat/internal/llm"
	"github.com/nikhilbhutani/docchat/internal/vectorstore"
)

type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) Extract(_ context.Context, _ string, _ []byte) (string, error) {
	return f.text, f.err
}

type fakeEmbedder struct {
	err    error
	models []string
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t))}
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	v, err := f.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return v[0], nil
}

func (f *fakeEmbedder) forModel(model string) Embedder {
	f.models = append(f.models, model)
	return f
}

type fakeIndex struct {
	chunks    []vectorstore.Chunk
	addErr    error
	hybrid    bool
	lastOpts  vectorstore.SearchOptions
	lastQuery string
}

func (f *fakeIndex) Truncate(context.Context) bool {
	f.chunks = nil
	return true
}

func (f *fakeIndex) AddDocuments(_ context.Context, chunks []vectorstore.Chunk) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.chunks = append(f.chunks, chunks...)
	return nil
}

func (f *fakeIndex) SimilaritySearch(_ context.Context, _ []float32, opts vectorstore.SearchOptions) ([]vectorstore.SearchResult, error) {
	f.lastOpts = opts
	var out []vectorstore.SearchResult
	for _, c := range f.chunks {
		if len(out) == opts.TopK {
			break
		}
		out = append(out, vectorstore.SearchResult{ChunkID: c.ID, DocumentID: c.DocumentID, Content: c.Content})
	}
	return out, nil
}

func (f *fakeIndex) HybridSearch(ctx context.Context, query string, vec []float32, opts vectorstore.SearchOptions) ([]vectorstore.SearchResult, error) {
	f.hybrid = true
	f.lastQuery = query
	return f.SimilaritySearch(ctx, vec, opts)
}

type fakeGateway struct {
	llm.Gateway
	reply    string
	err      error
	requests []llm.ChatRequest
}

func (f *fakeGateway) Chat(_ context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &llm.ChatResponse{Content: f.reply, Model: req.Model}, nil
}

var errBoom = errors.New("boom")
