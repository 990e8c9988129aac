package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nikhilbhutani/docchat/internal/llm"
	"github.com/nikhilbhutani/docchat/internal/memory"
	"github.com/nikhilbhutani/docchat/internal/models"
	"github.com/nikhilbhutani/docchat/internal/rag"
	"github.com/nikhilbhutani/docchat/internal/vectorstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memHistory struct {
	turns     []models.ChatTurn
	fetchErr  error
	appendErr error
	fetched   []string
}

func (m *memHistory) Fetch(_ context.Context, sessionID string) ([]models.ChatTurn, error) {
	m.fetched = append(m.fetched, sessionID)
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	var out []models.ChatTurn
	for _, t := range m.turns {
		if t.SessionID == sessionID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memHistory) Append(_ context.Context, t models.ChatTurn) (*models.ChatTurn, error) {
	if m.appendErr != nil {
		return nil, m.appendErr
	}
	t.ID = int64(len(m.turns) + 1)
	t.CreatedAt = time.Now()
	m.turns = append(m.turns, t)
	return &t, nil
}

type stubContextualizer struct {
	history [][]memory.Entry
}

func (s *stubContextualizer) Contextualize(_ context.Context, _ string, history []memory.Entry, q string) (string, error) {
	s.history = append(s.history, history)
	if len(history) == 0 {
		return q, nil
	}
	return "standalone: " + q, nil
}

type stubRetriever struct {
	queries []string
	k       int
	err     error
}

func (s *stubRetriever) Retrieve(_ context.Context, q string, k int) ([]vectorstore.SearchResult, error) {
	s.queries = append(s.queries, q)
	s.k = k
	return []vectorstore.SearchResult{{Content: "chunk"}}, s.err
}

type stubGenerator struct {
	reqs []rag.GenerateRequest
	err  error
}

func (s *stubGenerator) Generate(_ context.Context, req rag.GenerateRequest) (*llm.ChatResponse, error) {
	s.reqs = append(s.reqs, req)
	if s.err != nil {
		return nil, s.err
	}
	return &llm.ChatResponse{Content: "answer to " + req.Question}, nil
}

type catalog []string

func (c catalog) SupportsModel(m string) bool {
	for _, x := range c {
		if x == m {
			return true
		}
	}
	return false
}

type fixture struct {
	history *memHistory
	ctx     *stubContextualizer
	ret     *stubRetriever
	gen     *stubGenerator
	orch    *Orchestrator
}

func newFixture() *fixture {
	f := &fixture{
		history: &memHistory{},
		ctx:     &stubContextualizer{},
		ret:     &stubRetriever{},
		gen:     &stubGenerator{},
	}
	f.orch = NewOrchestrator(f.history, f.ctx, f.ret, f.gen,
		catalog{"gpt-4.1-nano", "gpt-4o-mini"},
		OrchestratorConfig{DefaultModel: "gpt-4.1-nano", TopK: 2})
	return f
}

func TestConverse_MintsSessionAndReusesHistory(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first, err := f.orch.Converse(ctx, Request{Question: "What is in the report?"})
	require.NoError(t, err)
	require.NotEmpty(t, first.SessionID)
	assert.Equal(t, "answer to What is in the report?", first.Answer)
	assert.Empty(t, f.ctx.history[0])
	assert.Equal(t, "What is in the report?", f.ret.queries[0])
	assert.Equal(t, 2, f.ret.k)

	second, err := f.orch.Converse(ctx, Request{Question: "And the totals?", SessionID: first.SessionID})
	require.NoError(t, err)
	assert.Equal(t, first.SessionID, second.SessionID)

	require.Len(t, f.ctx.history[1], 2)
	assert.Equal(t, "What is in the report?", f.ctx.history[1][0].Content)
	assert.Equal(t, "standalone: And the totals?", f.ret.queries[1])

	// The user's original question, not the rewrite, goes to the generator.
	assert.Equal(t, "And the totals?", f.gen.reqs[1].Question)
	assert.Len(t, f.gen.reqs[1].History, 2)

	require.Len(t, f.history.turns, 2)
	assert.Equal(t, "gpt-4.1-nano", f.history.turns[1].Model)
	assert.Equal(t, models.PersonaDefault, f.history.turns[1].Persona)
}

func TestConverse_OpaqueSessionIDKeptVerbatim(t *testing.T) {
	f := newFixture()
	sid := strings.Repeat("session-", 40) + "ü"

	resp, err := f.orch.Converse(context.Background(), Request{Question: "hi", SessionID: sid})
	require.NoError(t, err)
	assert.Equal(t, sid, resp.SessionID)
	assert.Equal(t, []string{sid}, f.history.fetched)
	require.Len(t, f.history.turns, 1)
	assert.Equal(t, sid, f.history.turns[0].SessionID)
}

func TestConverse_PersonaAndModelPassedThrough(t *testing.T) {
	f := newFixture()
	_, err := f.orch.Converse(context.Background(), Request{
		Question: "q", Model: "gpt-4o-mini", Persona: models.PersonaFinancial,
	})
	require.NoError(t, err)
	assert.Equal(t, models.PersonaFinancial, f.gen.reqs[0].Persona)
	assert.Equal(t, "gpt-4o-mini", f.history.turns[0].Model)
}

func TestConverse_Validation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.orch.Converse(ctx, Request{Question: "  "})
	assert.ErrorIs(t, err, ErrEmptyQuestion)

	_, err = f.orch.Converse(ctx, Request{Question: "q", Model: "gpt-2"})
	assert.ErrorIs(t, err, ErrUnknownModel)

	_, err = f.orch.Converse(ctx, Request{Question: "q", Persona: "Pirate"})
	assert.ErrorIs(t, err, ErrUnknownPersona)

	assert.Empty(t, f.history.fetched)
}

func TestConverse_HistoryFetchFailure(t *testing.T) {
	f := newFixture()
	f.history.fetchErr = errors.New("connection refused")

	_, err := f.orch.Converse(context.Background(), Request{Question: "q"})
	assert.ErrorIs(t, err, ErrConversationFailed)
	assert.Empty(t, f.gen.reqs)
}

func TestConverse_PersistFailure(t *testing.T) {
	f := newFixture()
	f.history.appendErr = errors.New("disk full")

	_, err := f.orch.Converse(context.Background(), Request{Question: "q"})
	assert.ErrorIs(t, err, ErrConversationFailed)
	assert.Empty(t, f.history.turns)
}

func TestConverse_ModelFailureIsNotPersisted(t *testing.T) {
	f := newFixture()
	f.gen.err = errors.New("rate limited")

	_, err := f.orch.Converse(context.Background(), Request{Question: "q"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrConversationFailed)
	assert.Empty(t, f.history.turns)
}
