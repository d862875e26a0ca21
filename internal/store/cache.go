// Package store provides the read-through query cache shared by services.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/mmcdole/mediadeck/internal/metrics"
	bolt "go.etcd.io/bbolt"
)

// Bucket partitions the cache by data origin
type Bucket string

const (
	// BucketCatalog holds catalog responses (shared across users)
	BucketCatalog Bucket = "catalog"
	// BucketUser holds per-owner user data (watchlist, collections, reviews)
	BucketUser Bucket = "user"
)

var buckets = []Bucket{BucketCatalog, BucketUser}

// entry wraps a cached value with its write time for TTL checks
type entry struct {
	StoredAt time.Time       `json:"stored_at"`
	Data     json.RawMessage `json:"data"`
}

// QueryCache is a keyed cache with an in-memory layer and optional BoltDB persistence.
// Values are stored as JSON; invalidation works by exact key or key prefix.
type QueryCache struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string][]byte

	now func() time.Time
}

// NewQueryCache opens the cache. An empty dir gives a memory-only cache.
func NewQueryCache(dir string) (*QueryCache, error) {
	c := &QueryCache{cache: make(map[string][]byte), now: time.Now}
	if dir == "" {
		return c, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "cache.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range buckets {
			if _, err := tx.CreateBucketIfNotExists([]byte(b)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	c.db = db
	return c, nil
}

// Close releases the BoltDB handle, if any
func (c *QueryCache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Get decodes the value at key into dest. Entries older than ttl count as a miss
// and are evicted; ttl <= 0 disables expiry.
func (c *QueryCache) Get(bucket Bucket, key string, ttl time.Duration, dest any) bool {
	data, ok := c.load(bucket, key)
	if !ok {
		metrics.RecordCacheLookup(string(bucket), false)
		return false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		c.Delete(bucket, key)
		metrics.RecordCacheLookup(string(bucket), false)
		return false
	}
	if ttl > 0 && c.now().Sub(e.StoredAt) > ttl {
		c.Delete(bucket, key)
		metrics.RecordCacheLookup(string(bucket), false)
		return false
	}
	if err := json.Unmarshal(e.Data, dest); err != nil {
		metrics.RecordCacheLookup(string(bucket), false)
		return false
	}

	metrics.RecordCacheLookup(string(bucket), true)
	return true
}

// Set stores value at key
func (c *QueryCache) Set(bucket Bucket, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	data, err := json.Marshal(entry{StoredAt: c.now(), Data: payload})
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.cache[memKey(bucket, key)] = data
	c.mu.Unlock()

	if c.db == nil {
		return nil // Memory-only mode
	}

	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucket)).Put([]byte(key), data)
	})
}

// Has reports whether key is present, ignoring expiry
func (c *QueryCache) Has(bucket Bucket, key string) bool {
	_, ok := c.load(bucket, key)
	return ok
}

// Delete removes a single key
func (c *QueryCache) Delete(bucket Bucket, key string) {
	c.mu.Lock()
	delete(c.cache, memKey(bucket, key))
	c.mu.Unlock()

	metrics.RecordCacheInvalidation(string(bucket))

	if c.db == nil {
		return
	}

	c.db.Update(func(tx *bolt.Tx) error {
		if b := tx.Bucket([]byte(bucket)); b != nil {
			b.Delete([]byte(key))
		}
		return nil
	})
}

// DeletePrefix removes every key starting with prefix
func (c *QueryCache) DeletePrefix(bucket Bucket, prefix string) {
	c.mu.Lock()
	memPrefix := memKey(bucket, prefix)
	for k := range c.cache {
		if strings.HasPrefix(k, memPrefix) {
			delete(c.cache, k)
		}
	}
	c.mu.Unlock()

	metrics.RecordCacheInvalidation(string(bucket))

	if c.db == nil {
		return
	}

	// Collect first: deleting while iterating a bbolt cursor skips keys
	c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return nil
		}
		var keys [][]byte
		cur := b.Cursor()
		p := []byte(prefix)
		for k, _ := cur.Seek(p); k != nil && strings.HasPrefix(string(k), prefix); k, _ = cur.Next() {
			keys = append(keys, append([]byte(nil), k...))
		}
		for _, k := range keys {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

// InvalidateAll clears every bucket
func (c *QueryCache) InvalidateAll() {
	c.mu.Lock()
	c.cache = make(map[string][]byte)
	c.mu.Unlock()

	if c.db == nil {
		return
	}

	c.db.Update(func(tx *bolt.Tx) error {
		for _, name := range buckets {
			if tx.Bucket([]byte(name)) != nil {
				if err := tx.DeleteBucket([]byte(name)); err != nil {
					return err
				}
			}
			if _, err := tx.CreateBucket([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
}

// load returns the raw entry, promoting disk hits to memory
func (c *QueryCache) load(bucket Bucket, key string) ([]byte, bool) {
	mk := memKey(bucket, key)

	c.mu.RLock()
	if data, ok := c.cache[mk]; ok {
		c.mu.RUnlock()
		return data, true
	}
	c.mu.RUnlock()

	if c.db == nil {
		return nil, false
	}

	var data []byte
	c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if data == nil {
		return nil, false
	}

	c.mu.Lock()
	c.cache[mk] = data
	c.mu.Unlock()

	return data, true
}

func memKey(bucket Bucket, key string) string {
	return string(bucket) + ":" + key
}
