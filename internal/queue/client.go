package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/nikhilbhutani/docchat/internal/config"
)

type Client struct {
	client *asynq.Client
}

func RedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

func NewClient(cfg config.RedisConfig) *Client {
	return &Client{client: asynq.NewClient(RedisOpt(cfg))}
}

func (c *Client) Close() error {
	return c.client.Close()
}

// EnqueueContextRebuild schedules a rebuild and returns the task id.
// Rebuilds are never retried automatically.
func (c *Client) EnqueueContextRebuild(ctx context.Context, payload ContextRebuildPayload) (string, error) {
	task, err := NewContextRebuildTask(payload)
	if err != nil {
		return "", err
	}
	info, err := c.client.EnqueueContext(ctx, task, asynq.Queue(QueueRebuild), asynq.MaxRetry(0), asynq.Timeout(30*time.Minute))
	if err != nil {
		return "", fmt.Errorf("enqueue %s: %w", TypeContextRebuild, err)
	}
	return info.ID, nil
}
