package models

import "time"

// RebuildStatus is the outcome of the last vector index rebuild.
type RebuildStatus struct {
	Success    bool      `json:"success"`
	Message    string    `json:"message"`
	Embedded   int       `json:"embedded"`
	Total      int       `json:"total"`
	FinishedAt time.Time `json:"finished_at"`
}
