package memory

import (
	"strings"

	"github.com/nikhilbhutani/docchat/internal/llm"
	"github.com/nikhilbhutani/docchat/pkg/tokenizer"
)

// ContextEngine assembles what goes into the model's context window:
// persona instruction, grounding context, prior history and the question.
type ContextEngine struct{}

func NewContextEngine() *ContextEngine {
	return &ContextEngine{}
}

// ContextParts holds the components that will be assembled into the final prompt.
type ContextParts struct {
	SystemPrompt        string
	RetrievedContext    []string
	ConversationHistory []Entry
	UserMessage         string
}

// AssembledContext is the final prompt ready for the LLM.
type AssembledContext struct {
	Messages        []llm.Message `json:"messages"`
	EstimatedTokens int           `json:"estimated_tokens"`
}

// Assemble keeps the whole history; nothing is dropped to fit a budget.
func (ce *ContextEngine) Assemble(parts ContextParts) AssembledContext {
	messages := make([]llm.Message, 0, len(parts.ConversationHistory)+3)

	messages = append(messages,
		llm.Message{Role: llm.RoleSystem, Content: parts.SystemPrompt},
		llm.Message{Role: llm.RoleSystem, Content: "Context: " + strings.Join(parts.RetrievedContext, "\n\n")},
	)
	messages = append(messages, ToMessages(parts.ConversationHistory)...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: parts.UserMessage})

	total := 0
	for _, m := range messages {
		total += tokenizer.CountTokens(m.Content)
	}

	return AssembledContext{Messages: messages, EstimatedTokens: total}
}
