package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/nikhilbhutani/docchat/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	llm.Gateway
	requests []llm.EmbeddingRequest
	short    bool
	err      error
}

func (f *fakeGateway) Embed(_ context.Context, req llm.EmbeddingRequest) (*llm.EmbeddingResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	n := len(req.Input)
	if f.short {
		n--
	}
	out := make([][]float32, n)
	for i := range out {
		out[i] = []float32{float32(len(req.Input[i]))}
	}
	return &llm.EmbeddingResponse{Embeddings: out}, nil
}

func TestEmbed_Batches(t *testing.T) {
	gw := &fakeGateway{}
	svc := NewService(gw, "openai", "")

	texts := make([]string, 250)
	for i := range texts {
		texts[i] = "x"
	}
	vecs, err := svc.Embed(context.Background(), texts)
	require.NoError(t, err)
	assert.Len(t, vecs, 250)
	require.Len(t, gw.requests, 3)
	assert.Len(t, gw.requests[2].Input, 50)
	assert.Equal(t, "text-embedding-3-small", gw.requests[0].Model)
	assert.Equal(t, "openai", gw.requests[0].Provider)
}

func TestEmbed_CountMismatch(t *testing.T) {
	svc := NewService(&fakeGateway{short: true}, "openai", "m")
	_, err := svc.Embed(context.Background(), []string{"a", "b"})
	assert.Error(t, err)
}

func TestEmbed_Error(t *testing.T) {
	boom := errors.New("quota")
	svc := NewService(&fakeGateway{err: boom}, "openai", "m")
	_, err := svc.EmbedSingle(context.Background(), "a")
	assert.ErrorIs(t, err, boom)
}

func TestWithModel(t *testing.T) {
	gw := &fakeGateway{}
	base := NewService(gw, "openai", "a")
	other := base.WithModel("b")

	assert.Equal(t, "a", base.Model())
	assert.Equal(t, "b", other.Model())
	assert.Same(t, base, base.WithModel(""))

	_, err := other.EmbedSingle(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "b", gw.requests[0].Model)
}
