package service

import (
	"context"
	"testing"

	"github.com/mmcdole/mediadeck/internal/adapter"
	"github.com/mmcdole/mediadeck/internal/domain"
	"github.com/mmcdole/mediadeck/internal/store"
)

func TestChangeFeed_InvalidatesOnExternalWrites(t *testing.T) {
	env := newLocalEnv(t)
	ctx := context.Background()

	var tables []string
	feed := NewChangeFeed(env.db, env.queries, func(table string) { tables = append(tables, table) }, adapter.NullLogger())
	if err := feed.Start(ctx, env.owner); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer feed.Stop()

	mustMember(t, env, fightClub, false)

	// Another session adds the row directly
	row := watchlistRow{UserID: env.owner, Kind: domain.KindMovie, ExternalID: 550, Title: "Fight Club"}
	if err := env.db.From(domain.TableWatchlist).Insert(ctx, row, nil); err != nil {
		t.Fatal(err)
	}
	mustMember(t, env, fightClub, true)

	// Rows of other owners are filtered out
	other := watchlistRow{UserID: "other", Kind: domain.KindMovie, ExternalID: 603, Title: "The Matrix"}
	if err := env.db.From(domain.TableWatchlist).Insert(ctx, other, nil); err != nil {
		t.Fatal(err)
	}
	if len(tables) != 1 || tables[0] != domain.TableWatchlist {
		t.Fatalf("unexpected change events %v", tables)
	}

	feed.Stop()
	if err := env.db.From(domain.TableWatchlist).Eq("user_id", env.owner).Delete(ctx); err != nil {
		t.Fatal(err)
	}
	mustMember(t, env, fightClub, true)
}

func TestAccount_SignOutDropsOwnerKeys(t *testing.T) {
	env := newLocalEnv(t)
	ctx := context.Background()

	if err := env.watchlist.Add(ctx, fightClubInput()); err != nil {
		t.Fatal(err)
	}
	mustMember(t, env, fightClub, true)
	if !env.cache.Has(store.BucketUser, WatchlistMemberKey(env.owner, fightClub)) {
		t.Fatal("expected membership to be cached")
	}
	if err := env.cache.Set(store.BucketCatalog, "tmdb:movie:550", map[string]int{"id": 550}); err != nil {
		t.Fatal(err)
	}

	feed := NewChangeFeed(env.db, env.queries, nil, adapter.NullLogger())
	account := NewAccountService(env.db.Auth(), env.identity, env.queries, feed, adapter.NullLogger())
	account.StartSync(ctx)

	if err := account.SignOut(ctx); err != nil {
		t.Fatalf("SignOut failed: %v", err)
	}
	if env.cache.Has(store.BucketUser, WatchlistMemberKey(env.owner, fightClub)) {
		t.Fatal("owner keys should be dropped on sign-out")
	}
	if !env.cache.Has(store.BucketCatalog, "tmdb:movie:550") {
		t.Fatal("catalog entries should survive sign-out")
	}
	if _, err := account.CurrentUser(ctx); err == nil {
		t.Fatal("expected no current user after sign-out")
	}

	user, err := account.SignIn(ctx, "me@example.com", "pw")
	if err != nil || user.ID != env.owner {
		t.Fatalf("SignIn: %+v %v", user, err)
	}
	mustMember(t, env, fightClub, true)
}
