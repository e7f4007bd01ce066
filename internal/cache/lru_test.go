package cache

import (
	"context"
	"testing"
	"time"
)

func TestLRU(t *testing.T) {
	ctx := context.Background()
	c, err := NewLRU(2)
	if err != nil {
		t.Fatalf("NewLRU() error = %v", err)
	}

	t.Run("miss", func(t *testing.T) {
		if _, ok, err := c.Get(ctx, "absent"); ok || err != nil {
			t.Errorf("Get() = ok %v, err %v; want miss", ok, err)
		}
	})

	t.Run("hit", func(t *testing.T) {
		_ = c.Set(ctx, "a", "1", 0)
		v, ok, err := c.Get(ctx, "a")
		if !ok || err != nil || v != "1" {
			t.Errorf("Get() = %q, %v, %v; want \"1\", true, nil", v, ok, err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		_ = c.Set(ctx, "d", "x", 0)
		_ = c.Delete(ctx, "d")
		if _, ok, _ := c.Get(ctx, "d"); ok {
			t.Error("expected key to be deleted")
		}
	})

	t.Run("eviction", func(t *testing.T) {
		_ = c.Set(ctx, "k1", "1", 0)
		_ = c.Set(ctx, "k2", "2", 0)
		_ = c.Set(ctx, "k3", "3", 0)
		if _, ok, _ := c.Get(ctx, "k1"); ok {
			t.Error("expected oldest key to be evicted")
		}
	})
}

func TestLRUExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewLRU(8)
	if err != nil {
		t.Fatalf("NewLRU() error = %v", err)
	}
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_ = c.Set(ctx, "token", "revoked", time.Minute)
	if _, ok, _ := c.Get(ctx, "token"); !ok {
		t.Fatal("expected entry before expiry")
	}

	now = now.Add(time.Minute)
	if _, ok, _ := c.Get(ctx, "token"); ok {
		t.Error("expected entry to expire")
	}
}
