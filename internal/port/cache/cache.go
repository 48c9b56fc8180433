package cache

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// TaskKey is the cache key for a single-task read.
func TaskKey(id uuid.UUID) string { return "task:" + id.String() }
