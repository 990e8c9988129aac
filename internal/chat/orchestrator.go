package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/nikhilbhutani/docchat/internal/llm"
	"github.com/nikhilbhutani/docchat/internal/memory"
	"github.com/nikhilbhutani/docchat/internal/models"
	"github.com/nikhilbhutani/docchat/internal/rag"
	"github.com/nikhilbhutani/docchat/internal/vectorstore"
)

var (
	// ErrConversationFailed wraps history read/write failures.
	ErrConversationFailed = errors.New("conversation failed")
	ErrEmptyQuestion      = errors.New("question must not be empty")
	ErrUnknownModel       = errors.New("unknown model")
	ErrUnknownPersona     = errors.New("unknown persona")
)

type Contextualizer interface {
	Contextualize(ctx context.Context, model string, history []memory.Entry, question string) (string, error)
}

type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]vectorstore.SearchResult, error)
}

type Generator interface {
	Generate(ctx context.Context, req rag.GenerateRequest) (*llm.ChatResponse, error)
}

type ModelCatalog interface {
	SupportsModel(model string) bool
}

type Request struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id,omitempty"`
	Model     string `json:"model,omitempty"`
	Persona   string `json:"persona,omitempty"`
}

type Response struct {
	Answer    string `json:"answer"`
	SessionID string `json:"session_id"`
}

type OrchestratorConfig struct {
	DefaultModel string
	TopK         int
}

// Orchestrator runs one conversation turn. It keeps no state between
// requests; history is re-read from the store on every turn.
type Orchestrator struct {
	history        HistoryStore
	contextualizer Contextualizer
	retriever      Retriever
	generator      Generator
	catalog        ModelCatalog
	cfg            OrchestratorConfig
}

func NewOrchestrator(history HistoryStore, c Contextualizer, r Retriever, g Generator, catalog ModelCatalog, cfg OrchestratorConfig) *Orchestrator {
	if cfg.TopK <= 0 {
		cfg.TopK = 2
	}
	return &Orchestrator{
		history:        history,
		contextualizer: c,
		retriever:      r,
		generator:      g,
		catalog:        catalog,
		cfg:            cfg,
	}
}

// Validate fills defaults and rejects unknown models or personas.
func (o *Orchestrator) Validate(req *Request) error {
	if strings.TrimSpace(req.Question) == "" {
		return ErrEmptyQuestion
	}
	if req.Model == "" {
		req.Model = o.cfg.DefaultModel
	}
	if req.Persona == "" {
		req.Persona = models.PersonaDefault
	}
	if !o.catalog.SupportsModel(req.Model) {
		return fmt.Errorf("%w: %s", ErrUnknownModel, req.Model)
	}
	if !models.IsPersona(req.Persona) {
		return fmt.Errorf("%w: %s", ErrUnknownPersona, req.Persona)
	}
	return nil
}

func (o *Orchestrator) Converse(ctx context.Context, req Request) (*Response, error) {
	if err := o.Validate(&req); err != nil {
		return nil, err
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	log := slog.With("session_id", sessionID, "model", req.Model, "persona", req.Persona)

	turns, err := o.history.Fetch(ctx, sessionID)
	if err != nil {
		log.Error("failed to fetch chat history", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrConversationFailed, err)
	}
	history := memory.FromTurns(turns)

	query, err := o.contextualizer.Contextualize(ctx, req.Model, history, req.Question)
	if err != nil {
		return nil, err
	}

	chunks, err := o.retriever.Retrieve(ctx, query, o.cfg.TopK)
	if err != nil {
		return nil, fmt.Errorf("retrieve context: %w", err)
	}

	resp, err := o.generator.Generate(ctx, rag.GenerateRequest{
		Model:    req.Model,
		Persona:  req.Persona,
		Question: req.Question,
		History:  history,
		Context:  chunks,
	})
	if err != nil {
		return nil, err
	}

	log.Info("answer generated",
		"history_turns", len(turns),
		"retrieved_chunks", len(chunks),
		"input_tokens", resp.InputTokens,
		"output_tokens", resp.OutputTokens,
		"cost_usd", resp.CostUSD,
		"latency_ms", resp.LatencyMs,
	)

	if _, err := o.history.Append(ctx, models.ChatTurn{
		SessionID: sessionID,
		Question:  req.Question,
		Answer:    resp.Content,
		Model:     req.Model,
		Persona:   req.Persona,
	}); err != nil {
		log.Error("failed to persist chat turn", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrConversationFailed, err)
	}

	return &Response{Answer: resp.Content, SessionID: sessionID}, nil
}
