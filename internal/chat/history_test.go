package chat

import (
	"context"
	"strings"
	"testing"

	"github.com/nikhilbhutani/docchat/internal/database/dbtest"
	"github.com/nikhilbhutani/docchat/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPgHistoryStore_FetchOrdersByCreation(t *testing.T) {
	store := NewPgHistoryStore(dbtest.Open(t, "chat_history"))
	ctx := context.Background()

	for _, q := range []string{"first", "second", "third"} {
		_, err := store.Append(ctx, models.ChatTurn{SessionID: "s1", Question: q, Answer: "a " + q, Model: "gpt-4.1-nano", Persona: models.PersonaDefault})
		require.NoError(t, err)
	}
	_, err := store.Append(ctx, models.ChatTurn{SessionID: "s2", Question: "other", Answer: "x", Model: "gpt-4.1-nano", Persona: models.PersonaDefault})
	require.NoError(t, err)

	turns, err := store.Fetch(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, turns, 3)
	assert.Equal(t, "first", turns[0].Question)
	assert.Equal(t, "a first", turns[0].Answer)
	assert.Equal(t, "third", turns[2].Question)
	assert.False(t, turns[1].CreatedAt.Before(turns[0].CreatedAt))

	empty, err := store.Fetch(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestPgHistoryStore_LongSessionID(t *testing.T) {
	store := NewPgHistoryStore(dbtest.Open(t, "chat_history"))
	ctx := context.Background()
	sid := strings.Repeat("s", 500)

	saved, err := store.Append(ctx, models.ChatTurn{SessionID: sid, Question: "q", Answer: "a", Model: "gpt-4.1-nano", Persona: models.PersonaDefault})
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)

	turns, err := store.Fetch(ctx, sid)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, sid, turns[0].SessionID)
}
