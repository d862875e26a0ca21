package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/mmcdole/mediadeck/internal/adapter"
	"github.com/mmcdole/mediadeck/internal/domain"
	"github.com/mmcdole/mediadeck/internal/persistence"
	"github.com/mmcdole/mediadeck/internal/persistence/local"
	"github.com/mmcdole/mediadeck/internal/store"
)

type testEnv struct {
	db          *persistence.Client
	identity    domain.Identity
	owner       string
	cache       *store.QueryCache
	queries     *Queries
	watchlist   *WatchlistService
	collections *CollectionService
	reviews     *ReviewService
}

// newLocalEnv wires the services over a fresh local database
func newLocalEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := local.Open(filepath.Join(t.TempDir(), "local.db"), adapter.NullLogger())
	if err != nil {
		t.Fatalf("failed to open local store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	identity := NewAuthIdentity(db.Auth())
	user, err := identity.CurrentUser(context.Background())
	if err != nil {
		t.Fatalf("local store has no user: %v", err)
	}
	return newEnv(t, db, identity, user.ID)
}

// newDemoEnv wires the services over the demo mock
func newDemoEnv(t *testing.T) *testEnv {
	t.Helper()
	identity := DemoIdentity()
	return newEnv(t, persistence.NewMock(), identity, identity.User.ID)
}

func newEnv(t *testing.T, db *persistence.Client, identity domain.Identity, owner string) *testEnv {
	t.Helper()
	cache, err := store.NewQueryCache("")
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	t.Cleanup(func() { cache.Close() })

	logger := adapter.NullLogger()
	queries := NewQueries(cache, time.Minute, time.Minute, logger)
	return &testEnv{
		db:          db,
		identity:    identity,
		owner:       owner,
		cache:       cache,
		queries:     queries,
		watchlist:   NewWatchlistService(db, identity, queries, logger),
		collections: NewCollectionService(db, identity, queries, logger),
		reviews:     NewReviewService(db, identity, queries, logger),
	}
}

var fightClub = domain.MediaRef{Kind: domain.KindMovie, ID: 550}

func fightClubInput() AddToWatchlist {
	return AddToWatchlist{Ref: fightClub, Title: "Fight Club", Rating: 8.4}
}
