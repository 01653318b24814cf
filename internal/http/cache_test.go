package http

import (
	"strconv"
	"testing"
	"time"
)

func TestLRUCacheEvictsOldest(t *testing.T) {
	c := newLRUCache[int](3, time.Minute)
	for i := 0; i < 4; i++ {
		c.Set("k"+strconv.Itoa(i), i)
	}
	if c.Len() != 3 {
		t.Fatalf("len=%d, want 3", c.Len())
	}
	if _, found := c.Get("k0"); found {
		t.Fatalf("oldest entry survived eviction")
	}
	if v, found := c.Get("k3"); !found || v != 3 {
		t.Fatalf("k3=%d found=%v", v, found)
	}
}

func TestLRUCacheGetRefreshesRecency(t *testing.T) {
	c := newLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("c", 3) // should evict b, not a

	if _, found := c.Get("b"); found {
		t.Fatalf("b survived, recency not updated on Get")
	}
	if _, found := c.Get("a"); !found {
		t.Fatalf("a evicted despite recent Get")
	}
}

func TestLRUCacheExpiry(t *testing.T) {
	c := newLRUCache[string](4, 10*time.Millisecond)
	c.Set("k", "v")
	if _, found := c.Get("k"); !found {
		t.Fatalf("fresh entry missing")
	}
	time.Sleep(20 * time.Millisecond)
	if _, found := c.Get("k"); found {
		t.Fatalf("expired entry served")
	}
}

func TestLRUCachePurge(t *testing.T) {
	c := newLRUCache[int](8, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Purge()
	if c.Len() != 0 {
		t.Fatalf("len=%d after purge", c.Len())
	}
	if _, found := c.Get("a"); found {
		t.Fatalf("entry survived purge")
	}
	c.Set("a", 3)
	if v, _ := c.Get("a"); v != 3 {
		t.Fatalf("cache unusable after purge")
	}
}
