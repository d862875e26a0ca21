package store

import (
	"testing"
	"time"
)

func newTestCaches(t *testing.T) map[string]*QueryCache {
	t.Helper()

	mem, err := NewQueryCache("")
	if err != nil {
		t.Fatalf("NewQueryCache(memory) failed: %v", err)
	}
	disk, err := NewQueryCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewQueryCache(disk) failed: %v", err)
	}
	t.Cleanup(func() { disk.Close() })

	return map[string]*QueryCache{"memory": mem, "bolt": disk}
}

func TestQueryCache_SetGet(t *testing.T) {
	for name, c := range newTestCaches(t) {
		t.Run(name, func(t *testing.T) {
			if err := c.Set(BucketUser, "watchlist:u1:list", []string{"a", "b"}); err != nil {
				t.Fatalf("Set failed: %v", err)
			}

			var got []string
			if !c.Get(BucketUser, "watchlist:u1:list", time.Minute, &got) {
				t.Fatal("expected cache hit")
			}
			if len(got) != 2 || got[0] != "a" || got[1] != "b" {
				t.Fatalf("unexpected value: %v", got)
			}

			// Buckets are independent
			if c.Get(BucketCatalog, "watchlist:u1:list", time.Minute, &got) {
				t.Fatal("expected miss in other bucket")
			}
		})
	}
}

func TestQueryCache_TTL(t *testing.T) {
	c, err := NewQueryCache("")
	if err != nil {
		t.Fatal(err)
	}

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if err := c.Set(BucketCatalog, "k", 42); err != nil {
		t.Fatal(err)
	}

	now = now.Add(30 * time.Second)
	var v int
	if !c.Get(BucketCatalog, "k", time.Minute, &v) || v != 42 {
		t.Fatalf("expected fresh hit, got %v", v)
	}

	now = now.Add(2 * time.Minute)
	if c.Get(BucketCatalog, "k", time.Minute, &v) {
		t.Fatal("expected expired entry to miss")
	}
	if c.Has(BucketCatalog, "k") {
		t.Fatal("expected expired entry to be evicted")
	}
}

func TestQueryCache_DeletePrefix(t *testing.T) {
	for name, c := range newTestCaches(t) {
		t.Run(name, func(t *testing.T) {
			keys := []string{
				"watchlist:u1:list",
				"watchlist:u1:member:movie:550",
				"watchlist:u2:list",
				"reviews:u1:list",
			}
			for _, k := range keys {
				if err := c.Set(BucketUser, k, true); err != nil {
					t.Fatal(err)
				}
			}

			c.DeletePrefix(BucketUser, "watchlist:u1:")

			if c.Has(BucketUser, "watchlist:u1:list") || c.Has(BucketUser, "watchlist:u1:member:movie:550") {
				t.Fatal("expected u1 watchlist keys to be removed")
			}
			if !c.Has(BucketUser, "watchlist:u2:list") || !c.Has(BucketUser, "reviews:u1:list") {
				t.Fatal("expected unrelated keys to survive")
			}
		})
	}
}

func TestQueryCache_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	c, err := NewQueryCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set(BucketCatalog, "catalog:tmdb:popular:movie:1", "cached"); err != nil {
		t.Fatal(err)
	}
	c.Close()

	reopened, err := NewQueryCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	var v string
	if !reopened.Get(BucketCatalog, "catalog:tmdb:popular:movie:1", 0, &v) || v != "cached" {
		t.Fatalf("expected persisted value, got %q", v)
	}

	reopened.InvalidateAll()
	if reopened.Has(BucketCatalog, "catalog:tmdb:popular:movie:1") {
		t.Fatal("expected InvalidateAll to clear disk entries")
	}
}
