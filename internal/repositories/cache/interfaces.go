package cacherepo

import (
	"context"
	"time"
)

// Cache is the key/value surface the session, document and upload repositories
// share. Reads of a missing key return the zero value and a nil error.
type Cache interface {
	Get(ctx context.Context, key string) CacheResponse[string]
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) CacheResponse[string]
	Del(ctx context.Context, keys ...string) CacheResponse[int64]
	// Expire resets the TTL of key. The result is false when the key is gone.
	Expire(ctx context.Context, key string, expiration time.Duration) CacheResponse[bool]
}

type CacheResponse[T any] interface {
	Err() error
	Result() (T, error)
}
