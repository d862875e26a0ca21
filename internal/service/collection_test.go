package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/mmcdole/mediadeck/internal/adapter"
	"github.com/mmcdole/mediadeck/internal/domain"
	"github.com/mmcdole/mediadeck/internal/persistence"
	"github.com/mmcdole/mediadeck/internal/persistence/local"
)

func TestCollections_CreateAndAddItem(t *testing.T) {
	env := newLocalEnv(t)
	ctx := context.Background()

	c, err := env.collections.Create(ctx, CreateCollection{Name: "Mind benders"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if c.ID == "" || c.UserID != env.owner {
		t.Fatalf("unexpected collection %+v", c)
	}

	// Prime the caches so the add has something to invalidate
	if _, err := env.collections.List(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := env.collections.Items(ctx, c.ID); err != nil {
		t.Fatal(err)
	}

	in := AddToCollection{CollectionID: c.ID, Ref: domain.MediaRef{Kind: domain.KindMovie, ID: 27205}, Title: "Inception"}
	if err := env.collections.AddItem(ctx, in); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	items, err := env.collections.Items(ctx, c.ID)
	if err != nil || len(items) != 1 || items[0].ExternalID != 27205 {
		t.Fatalf("Items: %+v %v", items, err)
	}
	list, err := env.collections.List(ctx)
	if err != nil || len(list) != 1 || list[0].ItemCount != 1 {
		t.Fatalf("List after add: %+v %v", list, err)
	}

	if err := env.collections.AddItem(ctx, in); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("duplicate AddItem: expected ErrConflict, got %v", err)
	}
}

func TestCollections_AddToForeignCollection(t *testing.T) {
	env := newLocalEnv(t)
	ctx := context.Background()

	var foreign []domain.Collection
	err := env.db.From(domain.TableCollections).Insert(ctx, collectionRow{UserID: "someone-else", Name: "Theirs"}, &foreign)
	if err != nil {
		t.Fatal(err)
	}

	in := AddToCollection{CollectionID: foreign[0].ID, Ref: fightClub, Title: "Fight Club"}
	if err := env.collections.AddItem(ctx, in); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	n, err := env.db.From(domain.TableCollectionItems).Count(ctx)
	if err != nil || n != 0 {
		t.Fatalf("nothing should be written, found %d rows (%v)", n, err)
	}
}

func TestCollections_ItemsAreIndependentOfWatchlist(t *testing.T) {
	env := newLocalEnv(t)
	ctx := context.Background()

	c, err := env.collections.Create(ctx, CreateCollection{Name: "Favs"})
	if err != nil {
		t.Fatal(err)
	}
	if err := env.watchlist.Add(ctx, fightClubInput()); err != nil {
		t.Fatal(err)
	}
	if err := env.collections.AddItem(ctx, AddToCollection{CollectionID: c.ID, Ref: fightClub, Title: "Fight Club"}); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if err := env.watchlist.Remove(ctx, fightClub); err != nil {
		t.Fatal(err)
	}
	items, _ := env.collections.Items(ctx, c.ID)
	if len(items) != 1 {
		t.Fatalf("collection item should survive watchlist removal, got %+v", items)
	}
}

func TestCollections_CreateValidatesName(t *testing.T) {
	env := newLocalEnv(t)
	if _, err := env.collections.Create(context.Background(), CreateCollection{}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCollections_Demo(t *testing.T) {
	env := newDemoEnv(t)
	ctx := context.Background()

	list, err := env.collections.List(ctx)
	if err != nil || len(list) != 0 {
		t.Fatalf("List: %v %v", list, err)
	}
	c, err := env.collections.Create(ctx, CreateCollection{Name: "Demo"})
	if err != nil || c.Name != "Demo" {
		t.Fatalf("Create: %+v %v", c, err)
	}
}

// countFailingExecutor fails every count request and passes the rest through
type countFailingExecutor struct {
	persistence.Executor
}

func (e countFailingExecutor) Execute(ctx context.Context, req *persistence.Request) (*persistence.Response, error) {
	if req.Op == persistence.OpCount {
		return nil, errors.New("count unavailable")
	}
	return e.Executor.Execute(ctx, req)
}

func TestCollections_AddItemSucceedsWhenCountRefreshFails(t *testing.T) {
	d, err := local.OpenDB(filepath.Join(t.TempDir(), "local.db"), adapter.NullLogger())
	if err != nil {
		t.Fatalf("failed to open local store: %v", err)
	}
	auth, err := local.NewAuth(d)
	if err != nil {
		t.Fatalf("failed to create local auth: %v", err)
	}
	db := persistence.New(countFailingExecutor{d}, auth, nil, d.Close)
	t.Cleanup(func() { db.Close() })

	identity := NewAuthIdentity(auth)
	user, err := identity.CurrentUser(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	env := newEnv(t, db, identity, user.ID)
	ctx := context.Background()

	c, err := env.collections.Create(ctx, CreateCollection{Name: "Heists"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	in := AddToCollection{CollectionID: c.ID, Ref: domain.MediaRef{Kind: domain.KindMovie, ID: 27205}, Title: "Inception"}
	if err := env.collections.AddItem(ctx, in); err != nil {
		t.Fatalf("AddItem should succeed once the item is stored: %v", err)
	}

	items, err := env.collections.Items(ctx, c.ID)
	if err != nil || len(items) != 1 {
		t.Fatalf("Items: %+v %v", items, err)
	}
}
