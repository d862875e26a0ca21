// Package local is an embedded single-user persistence backend. Tables are
// bbolt buckets of JSON rows keyed by id, with the unique keys, defaults and
// checks of the hosted schema enforced on write.
package local

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mmcdole/mediadeck/internal/persistence"
	bolt "go.etcd.io/bbolt"
)

var metaBucket = []byte("_meta")

// DB is an open local database
type DB struct {
	db      *bolt.DB
	changes *Broadcaster
	logger  *slog.Logger
	now     func() time.Time
}

// OpenDB opens (or creates) the database file at path
func OpenDB(path string, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open local database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(metaBucket); err != nil {
			return err
		}
		for name := range schema {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &DB{
		db:      db,
		changes: NewBroadcaster(),
		logger:  logger,
		now:     time.Now,
	}, nil
}

// Close closes the database file
func (d *DB) Close() error {
	return d.db.Close()
}

// Open opens the database at path and wraps it in a persistence client
// whose auth always resolves to the same local user.
func Open(path string, logger *slog.Logger) (*persistence.Client, error) {
	d, err := OpenDB(path, logger)
	if err != nil {
		return nil, err
	}
	auth, err := NewAuth(d)
	if err != nil {
		d.Close()
		return nil, err
	}
	return persistence.New(d, auth, d.changes, d.Close), nil
}
