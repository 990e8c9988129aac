package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlersRegistry_RoutesByType(t *testing.T) {
	reg := NewHandlersRegistry()

	var got ContextRebuildPayload
	reg.Register(TypeContextRebuild, asynq.HandlerFunc(func(_ context.Context, task *asynq.Task) error {
		p, err := ParseContextRebuildPayload(task)
		got = p
		return err
	}))

	task, err := NewContextRebuildTask(ContextRebuildPayload{IDs: []int64{1, 3}})
	require.NoError(t, err)
	require.NoError(t, reg.Mux().ProcessTask(context.Background(), task))
	assert.Equal(t, []int64{1, 3}, got.IDs)
}

func TestHandlersRegistry_PropagatesErrors(t *testing.T) {
	reg := NewHandlersRegistry()
	boom := errors.New("boom")
	reg.Register(TypeContextRebuild, asynq.HandlerFunc(func(context.Context, *asynq.Task) error {
		return boom
	}))

	err := reg.Mux().ProcessTask(context.Background(), asynq.NewTask(TypeContextRebuild, nil))
	assert.ErrorIs(t, err, boom)
}

func TestServerConfig(t *testing.T) {
	cfg := ServerConfig(0)
	assert.Equal(t, 1, cfg.Concurrency)
	assert.Contains(t, cfg.Queues, QueueRebuild)

	assert.Equal(t, 4, ServerConfig(4).Concurrency)
}
