package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/goccy/go-json"
	"github.com/mmcdole/mediadeck/internal/domain"
	"github.com/mmcdole/mediadeck/internal/persistence"
	"github.com/mmcdole/mediadeck/internal/store"
)

// ChangeFeed keeps the user cache in step with changes made elsewhere (another
// device or session) by invalidating keys when the owner's rows change
type ChangeFeed struct {
	db      *persistence.Client
	queries *Queries
	logger  *slog.Logger

	mu      sync.Mutex
	channel persistence.Channel
	owner   string
	onEvent func(table string)
}

// NewChangeFeed creates a change feed. onEvent, if set, is called after each
// invalidation so views can refetch.
func NewChangeFeed(db *persistence.Client, queries *Queries, onEvent func(table string), logger *slog.Logger) *ChangeFeed {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChangeFeed{db: db, queries: queries, onEvent: onEvent, logger: logger}
}

// Start subscribes to the owner's rows, replacing any earlier subscription
func (f *ChangeFeed) Start(ctx context.Context, owner string) error {
	f.Stop()

	filter := "user_id=eq." + owner
	ch := f.db.Channel("user:"+owner).
		On(persistence.ChangeAll, domain.TableWatchlist, filter, func(c persistence.Change) {
			f.invalidate(owner, c, PrefixWatchlist+owner+":")
		}).
		On(persistence.ChangeAll, domain.TableCollections, filter, func(c persistence.Change) {
			f.invalidate(owner, c, CollectionsListKey(owner))
		}).
		On(persistence.ChangeAll, domain.TableCollectionItems, "", func(c persistence.Change) {
			f.invalidate(owner, c, collectionItemsPrefix(owner, c))
		}).
		On(persistence.ChangeAll, domain.TableReviews, filter, func(c persistence.Change) {
			f.invalidate(owner, c, PrefixReviews+owner+":")
		})

	if err := ch.Subscribe(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to changes: %w", err)
	}

	f.mu.Lock()
	f.channel = ch
	f.owner = owner
	f.mu.Unlock()
	f.logger.Info("change feed started", "owner", owner)
	return nil
}

// Stop ends the subscription, if any
func (f *ChangeFeed) Stop() {
	f.mu.Lock()
	ch := f.channel
	f.channel = nil
	f.owner = ""
	f.mu.Unlock()

	if ch == nil {
		return
	}
	if err := ch.Unsubscribe(); err != nil {
		f.logger.Warn("failed to unsubscribe from changes", "error", err)
	}
}

func (f *ChangeFeed) invalidate(owner string, c persistence.Change, prefix string) {
	f.queries.InvalidatePrefix(store.BucketUser, prefix)
	f.logger.Debug("change received", "table", c.Table, "type", c.Type, "owner", owner)
	if f.onEvent != nil {
		f.onEvent(c.Table)
	}
}

// collectionItemsPrefix narrows an item change to its collection when the
// record says which one it belongs to. Item rows carry no owner column, so a
// change for a foreign collection only costs a refetch.
func collectionItemsPrefix(owner string, c persistence.Change) string {
	record := c.Record
	if c.Type == persistence.ChangeDelete {
		record = c.OldRecord
	}
	var row struct {
		CollectionID string `json:"collection_id"`
	}
	if err := json.Unmarshal(record, &row); err == nil && row.CollectionID != "" {
		return CollectionItemsKey(owner, row.CollectionID)
	}
	return PrefixCollections + owner + ":items:"
}
