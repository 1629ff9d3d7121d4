// Package cache stores short-lived JSON documents fetched from the backend,
// in redis when configured and in process memory otherwise.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const keyNamespace = "vitrine"

type Cache interface {
	// Get returns the stored bytes and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// Key builds a namespaced key, skipping empty parts.
func Key(parts ...string) string {
	clean := []string{keyNamespace}
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		clean = append(clean, p)
	}
	return strings.Join(clean, ":")
}

// GetOrLoad returns the cached value at key or calls load and caches its
// result for ttl. Cache read and write failures fall through to load.
func GetOrLoad[T any](ctx context.Context, c Cache, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	var zero T
	if c != nil {
		if raw, ok, err := c.Get(ctx, key); err == nil && ok {
			var v T
			if err := json.Unmarshal(raw, &v); err == nil {
				return v, nil
			}
		}
	}
	v, err := load(ctx)
	if err != nil {
		return zero, err
	}
	if c != nil && ttl > 0 {
		if raw, err := json.Marshal(v); err == nil {
			_ = c.Set(ctx, key, raw, ttl)
		}
	}
	return v, nil
}

// Invalidate removes key, wrapping the error with the key name.
func Invalidate(ctx context.Context, c Cache, keys ...string) error {
	if c == nil || len(keys) == 0 {
		return nil
	}
	if err := c.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("invalidate %v: %w", keys, err)
	}
	return nil
}
