package cache

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

type entry struct {
	value     string
	expiresAt time.Time
}

// LRU is an in-process cache used when no Redis address is configured.
type LRU struct {
	cache *lru.Cache
	now   func() time.Time
}

var _ Cache = (*LRU)(nil)

func NewLRU(size int) (*LRU, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("creating lru cache: %w", err)
	}
	return &LRU{cache: c, now: time.Now}, nil
}

func (l *LRU) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := l.cache.Get(key)
	if !ok {
		return "", false, nil
	}
	e := v.(entry)
	if !e.expiresAt.IsZero() && !l.now().Before(e.expiresAt) {
		l.cache.Remove(key)
		return "", false, nil
	}
	return e.value, true, nil
}

func (l *LRU) Set(_ context.Context, key, value string, ttl time.Duration) error {
	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = l.now().Add(ttl)
	}
	l.cache.Add(key, e)
	return nil
}

func (l *LRU) Delete(_ context.Context, key string) error {
	l.cache.Remove(key)
	return nil
}
