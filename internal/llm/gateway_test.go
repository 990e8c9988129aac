package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/nikhilbhutani/docchat/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	name   string
	models []string
	err    error
	calls  int
	last   ChatRequest
}

func (f *fakeProvider) Name() string     { return f.name }
func (f *fakeProvider) Models() []string { return f.models }

func (f *fakeProvider) ChatCompletion(_ context.Context, req ChatRequest) (*ChatResponse, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return &ChatResponse{Provider: f.name, Model: req.Model, Content: "from " + f.name}, nil
}

func (f *fakeProvider) GenerateEmbedding(_ context.Context, req EmbeddingRequest) (*EmbeddingResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(req.Input))
	for i := range out {
		out[i] = []float32{float32(i)}
	}
	return &EmbeddingResponse{Provider: f.name, Embeddings: out}, nil
}

func TestGateway_RoutesByModel(t *testing.T) {
	oa := &fakeProvider{name: "openai", models: []string{"gpt-4.1-nano"}}
	an := &fakeProvider{name: "anthropic", models: []string{"claude-3-5-haiku-latest"}}
	g := newGateway(config.LLMConfig{DefaultProvider: "openai"}, oa, an)

	resp, err := g.Chat(context.Background(), ChatRequest{Model: "claude-3-5-haiku-latest"})
	require.NoError(t, err)
	assert.Equal(t, "anthropic", resp.Provider)
	assert.Equal(t, 0, oa.calls)

	resp, err = g.Chat(context.Background(), ChatRequest{Model: "unknown"})
	require.NoError(t, err)
	assert.Equal(t, "openai", resp.Provider)
}

func TestGateway_NoRetriesByDefault(t *testing.T) {
	boom := errors.New("boom")
	oa := &fakeProvider{name: "openai", models: []string{"gpt-4.1-nano"}, err: boom}
	g := newGateway(config.LLMConfig{DefaultProvider: "openai"}, oa)

	_, err := g.Chat(context.Background(), ChatRequest{Model: "gpt-4.1-nano"})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, oa.calls)
}

func TestGateway_Fallback(t *testing.T) {
	oa := &fakeProvider{name: "openai", models: []string{"gpt-4.1-nano"}, err: errors.New("down")}
	ol := &fakeProvider{name: "ollama", models: []string{"llama3"}}
	g := newGateway(config.LLMConfig{DefaultProvider: "openai", FallbackProvider: "ollama"}, oa, ol)

	resp, err := g.Chat(context.Background(), ChatRequest{Model: "gpt-4.1-nano"})
	require.NoError(t, err)
	assert.Equal(t, "ollama", resp.Provider)
}

func TestGateway_ListModelsDefaultFirst(t *testing.T) {
	an := &fakeProvider{name: "anthropic", models: []string{"claude-3-5-haiku-latest"}}
	oa := &fakeProvider{name: "openai", models: []string{"gpt-4.1-nano", "gpt-4o-mini"}}
	g := newGateway(config.LLMConfig{DefaultProvider: "openai"}, an, oa)

	models := g.ListModels()
	require.Len(t, models, 3)
	assert.Equal(t, "gpt-4.1-nano", models[0].Model)
	assert.Equal(t, "gpt-4o-mini", models[1].Model)
	assert.Equal(t, "claude-3-5-haiku-latest", models[2].Model)

	assert.True(t, g.SupportsModel("gpt-4o-mini"))
	assert.False(t, g.SupportsModel("gpt-2"))
}

func TestGateway_EmbedUnknownProvider(t *testing.T) {
	g := newGateway(config.LLMConfig{DefaultProvider: "openai"})
	_, err := g.Embed(context.Background(), EmbeddingRequest{Input: []string{"x"}})
	assert.Error(t, err)
}

func TestCalculateCost(t *testing.T) {
	assert.InDelta(t, 0.0005, CalculateCost("gpt-4.1-nano", 1000, 1000), 1e-9)
	assert.Zero(t, CalculateCost("unknown", 1000, 1000))
}
