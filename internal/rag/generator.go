package rag

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nikhilbhutani/docchat/internal/llm"
	"github.com/nikhilbhutani/docchat/internal/memory"
	"github.com/nikhilbhutani/docchat/internal/vectorstore"
)

type Generator struct {
	gateway llm.Gateway
	engine  *memory.ContextEngine
}

func NewGenerator(gw llm.Gateway) *Generator {
	return &Generator{gateway: gw, engine: memory.NewContextEngine()}
}

type GenerateRequest struct {
	Model    string
	Persona  string
	Question string
	History  []memory.Entry
	Context  []vectorstore.SearchResult
}

// Generate composes the grounded prompt and calls the model once.
func (g *Generator) Generate(ctx context.Context, req GenerateRequest) (*llm.ChatResponse, error) {
	chunks := make([]string, len(req.Context))
	for i, c := range req.Context {
		chunks[i] = c.Content
	}

	assembled := g.engine.Assemble(memory.ContextParts{
		SystemPrompt:        PersonaPrompt(req.Persona),
		RetrievedContext:    chunks,
		ConversationHistory: req.History,
		UserMessage:         req.Question,
	})
	slog.Debug("prompt assembled", "messages", len(assembled.Messages), "estimated_tokens", assembled.EstimatedTokens)

	resp, err := g.gateway.Chat(ctx, llm.ChatRequest{
		Model:    req.Model,
		Messages: assembled.Messages,
	})
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}
	return resp, nil
}
