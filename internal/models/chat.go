package models

import "time"

// ChatTurn is one persisted question/answer exchange of a session.
type ChatTurn struct {
	ID        int64     `json:"id" db:"id"`
	SessionID string    `json:"session_id" db:"session_id"`
	Question  string    `json:"question" db:"question"`
	Answer    string    `json:"answer" db:"answer"`
	Model     string    `json:"model" db:"model"`
	Persona   string    `json:"persona" db:"persona"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
