// Package cache provides a small key/value cache with per-entry expiry,
// backed either by Redis or by an in-process LRU.
package cache

import (
	"context"
	"time"
)

type Cache interface {
	// Get returns the value for key. ok is false when the key is absent
	// or expired.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set stores value under key. A zero ttl never expires.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
