package service

import (
	"context"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/mmcdole/mediadeck/internal/store"
	"golang.org/x/sync/singleflight"
)

// Queries is the read-through query layer shared by every service. Reads go
// to the cache first; misses for the same key share one fetch. The cache is
// only ever filled from a fetch result, never written directly.
type Queries struct {
	cache      *store.QueryCache
	group      singleflight.Group
	catalogTTL time.Duration
	userTTL    time.Duration
	logger     *slog.Logger

	// epoch advances on every invalidation. A fetch that started before an
	// invalidation does not leave its result in the cache.
	epoch atomic.Uint64
}

// NewQueries creates the query layer over cache
func NewQueries(cache *store.QueryCache, catalogTTL, userTTL time.Duration, logger *slog.Logger) *Queries {
	if logger == nil {
		logger = slog.Default()
	}
	return &Queries{
		cache:      cache,
		catalogTTL: catalogTTL,
		userTTL:    userTTL,
		logger:     logger,
	}
}

func (q *Queries) ttl(bucket store.Bucket) time.Duration {
	if bucket == store.BucketCatalog {
		return q.catalogTTL
	}
	return q.userTTL
}

// cached returns the value under key, calling fetch on a miss. Errors are
// never cached.
func cached[T any](ctx context.Context, q *Queries, bucket store.Bucket, key string, fetch func(context.Context) (T, error)) (T, error) {
	var hit T
	if q.cache.Get(bucket, key, q.ttl(bucket), &hit) {
		q.logger.Debug("cache hit", "bucket", bucket, "key", key)
		return hit, nil
	}

	epoch := q.epoch.Load()
	flight := string(bucket) + "/" + key + "@" + strconv.FormatUint(epoch, 10)

	v, err, _ := q.group.Do(flight, func() (any, error) {
		val, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		if q.epoch.Load() == epoch {
			if err := q.cache.Set(bucket, key, val); err != nil {
				q.logger.Warn("failed to cache query", "key", key, "error", err)
			}
			// An invalidation that raced the Set may have deleted before we wrote
			if q.epoch.Load() != epoch {
				q.cache.Delete(bucket, key)
			}
		}
		return val, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Invalidate drops keys from bucket
func (q *Queries) Invalidate(bucket store.Bucket, keys ...string) {
	q.epoch.Add(1)
	for _, k := range keys {
		q.cache.Delete(bucket, k)
	}
}

// InvalidatePrefix drops every key in bucket starting with one of prefixes
func (q *Queries) InvalidatePrefix(bucket store.Bucket, prefixes ...string) {
	q.epoch.Add(1)
	for _, p := range prefixes {
		q.cache.DeletePrefix(bucket, p)
	}
}

// InvalidateAll empties the cache
func (q *Queries) InvalidateAll() {
	q.epoch.Add(1)
	q.cache.InvalidateAll()
}
