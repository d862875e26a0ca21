package service

import (
	"context"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/mmcdole/mediadeck/internal/adapter"
	"github.com/mmcdole/mediadeck/internal/store"
)

// invalidatingValue invalidates its own key while the cache serializes it
type invalidatingValue struct {
	q   *Queries
	key string
}

func (v invalidatingValue) MarshalJSON() ([]byte, error) {
	v.q.Invalidate(store.BucketUser, v.key)
	return json.Marshal(true)
}

func newQueries(t *testing.T) (*Queries, *store.QueryCache) {
	t.Helper()
	cache, err := store.NewQueryCache("")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { cache.Close() })
	return NewQueries(cache, time.Minute, time.Minute, adapter.NullLogger()), cache
}

func TestQueries_InvalidationDuringFillWins(t *testing.T) {
	q, cache := newQueries(t)
	key := "watchlist:u1:movie:550"

	_, err := cached(context.Background(), q, store.BucketUser, key, func(context.Context) (invalidatingValue, error) {
		return invalidatingValue{q: q, key: key}, nil
	})
	if err != nil {
		t.Fatalf("cached failed: %v", err)
	}
	if cache.Has(store.BucketUser, key) {
		t.Fatal("value written across an invalidation must not stay cached")
	}
}

func TestQueries_InvalidationDuringFetchSkipsFill(t *testing.T) {
	q, cache := newQueries(t)
	key := "watchlist:u1:movie:550"

	_, err := cached(context.Background(), q, store.BucketUser, key, func(context.Context) (bool, error) {
		q.Invalidate(store.BucketUser, key)
		return true, nil
	})
	if err != nil {
		t.Fatalf("cached failed: %v", err)
	}
	if cache.Has(store.BucketUser, key) {
		t.Fatal("fetch that raced an invalidation must not fill the cache")
	}
}

func TestQueries_FillsAndServesHits(t *testing.T) {
	q, _ := newQueries(t)
	calls := 0
	fetch := func(context.Context) (int, error) {
		calls++
		return 42, nil
	}

	for range 2 {
		v, err := cached(context.Background(), q, store.BucketUser, "k", fetch)
		if err != nil || v != 42 {
			t.Fatalf("cached = %d, %v", v, err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected one fetch, got %d", calls)
	}
}
