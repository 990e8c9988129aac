package queue

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const TypeContextRebuild = "context:rebuild"

type ContextRebuildPayload struct {
	IDs            []int64 `json:"ids"`
	EmbeddingModel string  `json:"embedding_model,omitempty"`
}

func NewContextRebuildTask(payload ContextRebuildPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return asynq.NewTask(TypeContextRebuild, data), nil
}

func ParseContextRebuildPayload(t *asynq.Task) (ContextRebuildPayload, error) {
	var p ContextRebuildPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return p, fmt.Errorf("unmarshal payload: %w", err)
	}
	return p, nil
}
