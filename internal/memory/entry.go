package memory

import (
	"time"

	"github.com/nikhilbhutani/docchat/internal/llm"
	"github.com/nikhilbhutani/docchat/internal/models"
)

// Entry is a single message of a reconstructed conversation.
type Entry struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// FromTurns replays persisted turns as alternating user and assistant
// entries. Turns must already be in creation order.
func FromTurns(turns []models.ChatTurn) []Entry {
	entries := make([]Entry, 0, len(turns)*2)
	for _, t := range turns {
		entries = append(entries,
			Entry{Role: llm.RoleUser, Content: t.Question, Timestamp: t.CreatedAt},
			Entry{Role: llm.RoleAssistant, Content: t.Answer, Timestamp: t.CreatedAt},
		)
	}
	return entries
}

func ToMessages(entries []Entry) []llm.Message {
	msgs := make([]llm.Message, len(entries))
	for i, e := range entries {
		msgs[i] = llm.Message{Role: e.Role, Content: e.Content}
	}
	return msgs
}
