package chat

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikhilbhutani/docchat/internal/models"
)

// HistoryStore is the append-only log of chat turns keyed by session.
type HistoryStore interface {
	// Fetch returns every turn of the session in creation order.
	Fetch(ctx context.Context, sessionID string) ([]models.ChatTurn, error)
	Append(ctx context.Context, turn models.ChatTurn) (*models.ChatTurn, error)
}

type PgHistoryStore struct {
	db *pgxpool.Pool
}

func NewPgHistoryStore(db *pgxpool.Pool) *PgHistoryStore {
	return &PgHistoryStore{db: db}
}

func (s *PgHistoryStore) Fetch(ctx context.Context, sessionID string) ([]models.ChatTurn, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, session_id, question, answer, model, persona, created_at
		 FROM chat_history
		 WHERE session_id = $1
		 ORDER BY created_at, id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch chat history: %w", err)
	}
	defer rows.Close()

	turns := []models.ChatTurn{}
	for rows.Next() {
		var t models.ChatTurn
		if err := rows.Scan(&t.ID, &t.SessionID, &t.Question, &t.Answer, &t.Model, &t.Persona, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chat turn: %w", err)
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chat history: %w", err)
	}
	return turns, nil
}

// Append records question and answer as one row inside a transaction, so a
// failed write leaves nothing behind.
func (s *PgHistoryStore) Append(ctx context.Context, turn models.ChatTurn) (*models.ChatTurn, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO chat_history (session_id, question, answer, model, persona)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		turn.SessionID, turn.Question, turn.Answer, turn.Model, turn.Persona,
	).Scan(&turn.ID, &turn.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert chat turn: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit chat turn: %w", err)
	}
	return &turn, nil
}
