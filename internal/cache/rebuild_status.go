package cache

import (
	"context"
	"time"

	"github.com/nikhilbhutani/docchat/internal/models"
)

const rebuildStatusKey = "rebuild:last"

type kv interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// RebuildStatusStore keeps the outcome of the most recent index rebuild so
// both the API and the worker process can report it.
type RebuildStatusStore struct {
	cache kv
}

func NewRebuildStatusStore(c *Cache) *RebuildStatusStore {
	return &RebuildStatusStore{cache: c}
}

func (s *RebuildStatusStore) Save(ctx context.Context, status models.RebuildStatus) error {
	return s.cache.Set(ctx, rebuildStatusKey, status, 0)
}

// Last returns ErrMiss when no rebuild has been recorded.
func (s *RebuildStatusStore) Last(ctx context.Context) (*models.RebuildStatus, error) {
	var st models.RebuildStatus
	if err := s.cache.Get(ctx, rebuildStatusKey, &st); err != nil {
		return nil, err
	}
	return &st, nil
}
