// Package sessions keeps per-client authentication records with a TTL.
package sessions

import (
	"context"
	"time"
)

// Store is a small JSON record store. Get returns domain.ErrSessionNotFound
// for missing or expired keys.
type Store interface {
	Put(ctx context.Context, key string, v interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string, out interface{}) error
	Delete(ctx context.Context, keys ...string) error
}
