package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Store is a string key/value cache with per-entry expiry.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, expiration time.Duration) error
	Close() error
}

// GetJSONWithFallback reads key as JSON. On a miss it calls fallback and
// stores the result. hit reports whether the value came from the cache.
// A failed write only loses the cache entry.
func GetJSONWithFallback[T any](ctx context.Context, store Store, key string, expiration time.Duration, fallback func(ctx context.Context) (*T, error)) (value *T, hit bool, err error) {
	raw, err := store.Get(ctx, key)
	if err == nil {
		var obj T
		if jsonErr := json.Unmarshal([]byte(raw), &obj); jsonErr == nil {
			return &obj, true, nil
		}
	}

	value, err = fallback(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("fallback function failed: %w", err)
	}

	data, err := json.Marshal(value)
	if err != nil {
		return value, false, nil
	}
	_ = store.Set(ctx, key, string(data), expiration)
	return value, false, nil
}
