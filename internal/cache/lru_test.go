// CineMatch - Content-Based Movie Similarity Index
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package cache

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"
)

func TestLRUCache_BasicOperations(t *testing.T) {
	ctx := context.Background()
	c := NewLRUCache(3, time.Minute)

	c.Set(ctx, "a", []byte("1"))
	c.Set(ctx, "b", []byte("2"))
	c.Set(ctx, "c", []byte("3"))

	for key, want := range map[string]string{"a": "1", "b": "2", "c": "3"} {
		got, found := c.Get(ctx, key)
		if !found || string(got) != want {
			t.Errorf("Get(%q) = %q, %v; want %q, true", key, got, found, want)
		}
	}
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}
}

func TestLRUCache_Eviction(t *testing.T) {
	ctx := context.Background()
	c := NewLRUCache(3, time.Minute)

	c.Add("a", []byte("a"))
	c.Add("b", []byte("b"))
	c.Add("c", []byte("c"))

	// a becomes most recently used, so b is evicted next.
	c.Get(ctx, "a")
	c.Add("d", []byte("d"))

	if _, found := c.Get(ctx, "b"); found {
		t.Error("expected b to be evicted")
	}
	for _, key := range []string{"a", "c", "d"} {
		if _, found := c.Get(ctx, key); !found {
			t.Errorf("expected %s to be present", key)
		}
	}
}

func TestLRUCache_UpdateExisting(t *testing.T) {
	ctx := context.Background()
	c := NewLRUCache(2, time.Minute)

	c.Add("a", []byte("old"))
	c.Add("a", []byte("new"))

	if got, _ := c.Get(ctx, "a"); string(got) != "new" {
		t.Errorf("Get(a) = %q, want new", got)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestLRUCache_TTLExpiration(t *testing.T) {
	ctx := context.Background()
	c := NewLRUCache(10, 50*time.Millisecond)

	c.Add("a", []byte("x"))
	if _, found := c.Get(ctx, "a"); !found {
		t.Error("expected a immediately after Add")
	}

	time.Sleep(60 * time.Millisecond)

	if _, found := c.Get(ctx, "a"); found {
		t.Error("expected a to be expired")
	}
}

func TestLRUCache_Remove(t *testing.T) {
	ctx := context.Background()
	c := NewLRUCache(10, time.Minute)

	c.Add("a", nil)
	c.Add("b", nil)

	if !c.Remove("a") {
		t.Error("Remove(a) = false, want true")
	}
	if c.Remove("a") {
		t.Error("second Remove(a) = true, want false")
	}
	if _, found := c.Get(ctx, "b"); !found {
		t.Error("expected b to remain")
	}
}

func TestLRUCache_Clear(t *testing.T) {
	ctx := context.Background()
	c := NewLRUCache(10, time.Minute)

	c.Add("a", nil)
	c.Add("b", nil)
	c.Clear()

	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d", c.Len())
	}
	if _, found := c.Get(ctx, "a"); found {
		t.Error("expected no entries after Clear")
	}
}

func TestLRUCache_CleanupExpired(t *testing.T) {
	ctx := context.Background()
	c := NewLRUCache(10, 50*time.Millisecond)

	c.Add("a", nil)
	c.Add("b", nil)
	c.Add("c", nil)
	time.Sleep(60 * time.Millisecond)
	c.Add("d", nil)

	if removed := c.CleanupExpired(); removed != 3 {
		t.Errorf("CleanupExpired() = %d, want 3", removed)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
	if _, found := c.Get(ctx, "d"); !found {
		t.Error("expected d to remain")
	}
}

func TestLRUCache_Stats(t *testing.T) {
	ctx := context.Background()
	c := NewLRUCache(10, time.Minute)

	c.Add("a", nil)
	c.Get(ctx, "a")
	c.Get(ctx, "a")
	c.Get(ctx, "missing")

	hits, misses, size := c.Stats()
	if hits != 2 || misses != 1 || size != 1 {
		t.Errorf("Stats() = %d, %d, %d; want 2, 1, 1", hits, misses, size)
	}
}

func TestLRUCache_Defaults(t *testing.T) {
	c := NewLRUCache(0, 0)
	if c.capacity != DefaultCapacity || c.ttl != DefaultTTL {
		t.Errorf("defaults = %d, %v", c.capacity, c.ttl)
	}
}

func TestLRUCache_Concurrent(t *testing.T) {
	ctx := context.Background()
	c := NewLRUCache(50, time.Minute)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := strconv.Itoa((g*500 + i) % 100)
				c.Set(ctx, key, []byte(key))
				c.Get(ctx, key)
			}
		}(g)
	}
	wg.Wait()

	if c.Len() > 50 {
		t.Errorf("Len() = %d exceeds capacity 50", c.Len())
	}
}
