package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/nikhilbhutani/docchat/internal/llm"
	"github.com/nikhilbhutani/docchat/internal/memory"
)

const contextualizePrompt = "Given a chat history and the latest user question " +
	"which might reference context in the chat history, " +
	"formulate a standalone question which can be understood " +
	"without the chat history. Do NOT answer the question, " +
	"just reformulate it if needed and otherwise return it as is."

// Contextualizer rewrites a follow-up question into a standalone query.
// The rewrite is used for retrieval only.
type Contextualizer struct {
	gateway llm.Gateway
}

func NewContextualizer(gw llm.Gateway) *Contextualizer {
	return &Contextualizer{gateway: gw}
}

func (c *Contextualizer) Contextualize(ctx context.Context, model string, history []memory.Entry, question string) (string, error) {
	if len(history) == 0 {
		return question, nil
	}

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: contextualizePrompt})
	messages = append(messages, memory.ToMessages(history)...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: question})

	resp, err := c.gateway.Chat(ctx, llm.ChatRequest{Model: model, Messages: messages})
	if err != nil {
		return "", fmt.Errorf("contextualize question: %w", err)
	}

	rewritten := strings.TrimSpace(resp.Content)
	if rewritten == "" {
		return question, nil
	}
	return rewritten, nil
}
