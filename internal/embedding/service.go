package embedding

import (
	"context"
	"errors"
	"fmt"

	"github.com/nikhilbhutani/docchat/internal/llm"
)

var ErrEmptyEmbedding = errors.New("no embedding returned")

// Service is a long-lived handle on the embedding model, shared by the
// rebuild pipeline and the retriever.
type Service struct {
	gateway  llm.Gateway
	provider string
	model    string
}

func NewService(gw llm.Gateway, provider, model string) *Service {
	if model == "" {
		model = "text-embedding-3-small"
	}
	return &Service{gateway: gw, provider: provider, model: model}
}

func (s *Service) Model() string { return s.model }

// WithModel returns a copy of the service bound to another model.
func (s *Service) WithModel(model string) *Service {
	if model == "" || model == s.model {
		return s
	}
	cp := *s
	cp.model = model
	return &cp
}

func (s *Service) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	// Batch in groups of 100 for API limits
	const batchSize = 100
	all := make([][]float32, 0, len(texts))

	for i := 0; i < len(texts); i += batchSize {
		batch := texts[i:min(i+batchSize, len(texts))]

		resp, err := s.gateway.Embed(ctx, llm.EmbeddingRequest{
			Provider: s.provider,
			Model:    s.model,
			Input:    batch,
		})
		if err != nil {
			return nil, fmt.Errorf("embed batch %d: %w", i/batchSize, err)
		}
		if len(resp.Embeddings) != len(batch) {
			return nil, fmt.Errorf("embed batch %d: got %d vectors for %d inputs", i/batchSize, len(resp.Embeddings), len(batch))
		}

		all = append(all, resp.Embeddings...)
	}

	return all, nil
}

func (s *Service) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := s.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 || len(embeddings[0]) == 0 {
		return nil, ErrEmptyEmbedding
	}
	return embeddings[0], nil
}
