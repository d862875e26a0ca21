package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/mmcdole/mediadeck/internal/adapter"
	"github.com/mmcdole/mediadeck/internal/domain"
	"github.com/mmcdole/mediadeck/internal/service"
)

func testConfig(t *testing.T) *adapter.Config {
	t.Helper()
	cfg := adapter.DefaultConfig()
	cfg.Store.Path = filepath.Join(t.TempDir(), "local.db")
	cfg.Demo.Latency = 0
	return cfg
}

func TestOpenStore_MissingCredentials(t *testing.T) {
	tests := []struct {
		name string
		url  string
		key  string
	}{
		{"both missing", "", ""},
		{"missing key", "https://project.example.co", ""},
		{"missing url", "", "anon"},
		{"blank url", "   ", "anon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.Store.URL = tt.url
			cfg.Store.AnonKey = tt.key

			if _, err := OpenStore(cfg, adapter.NullLogger()); !errors.Is(err, domain.ErrMissingCredentials) {
				t.Fatalf("expected ErrMissingCredentials, got %v", err)
			}
			if _, err := New(cfg, adapter.NullLogger()); !errors.Is(err, domain.ErrMissingCredentials) {
				t.Fatalf("New: expected ErrMissingCredentials, got %v", err)
			}
		})
	}
}

func TestOpenStore_DemoNeedsNoCredentials(t *testing.T) {
	cfg := testConfig(t)
	cfg.DemoMode = true

	db, err := OpenStore(cfg, adapter.NullLogger())
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}
	session, err := db.Auth().Session(context.Background())
	if err != nil || session != nil {
		t.Fatalf("demo store should report no session, got %+v %v", session, err)
	}
}

func TestOpenStore_RESTWithCredentials(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.URL = "https://project.example.co"
	cfg.Store.AnonKey = "anon"

	db, err := OpenStore(cfg, adapter.NullLogger())
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}
	db.Close()
}

func TestOpenStore_UnknownBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Backend = "sqlite"

	if _, err := OpenStore(cfg, adapter.NullLogger()); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestNew_Demo(t *testing.T) {
	cfg := testConfig(t)
	cfg.DemoMode = true

	a, err := New(cfg, adapter.NullLogger())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close()
	ctx := context.Background()

	user, err := a.Account.CurrentUser(ctx)
	if err != nil || user.ID != service.DemoIdentity().User.ID {
		t.Fatalf("expected the demo user, got %+v %v", user, err)
	}

	ref := domain.MediaRef{Kind: domain.KindMovie, ID: 550}
	if err := a.Watchlist.Add(ctx, service.AddToWatchlist{Ref: ref, Title: "Fight Club"}); err != nil {
		t.Fatalf("demo Add failed: %v", err)
	}

	d := a.Catalog.Dashboard(ctx)
	if len(d.Movies.Cards) == 0 || len(d.Games.Cards) == 0 {
		t.Fatal("demo dashboard should be populated")
	}
}

func TestNew_LocalRoundTrip(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Backend = adapter.StoreBackendLocal

	a, err := New(cfg, adapter.NullLogger())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx := context.Background()

	ref := domain.MediaRef{Kind: domain.KindSeries, ID: 1396}
	if err := a.Watchlist.Add(ctx, service.AddToWatchlist{Ref: ref, Title: "Breaking Bad"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Entries survive a restart
	a, err = New(cfg, adapter.NullLogger())
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer a.Close()

	in, err := a.Watchlist.IsInWatchlist(ctx, ref)
	if err != nil || !in {
		t.Fatalf("expected entry after reopen, got %v %v", in, err)
	}
}

func TestNew_ChangeNotificationsDoNotBlock(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Backend = adapter.StoreBackendLocal

	a, err := New(cfg, adapter.NullLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	for range cap(a.Changes) + 5 {
		a.notify(domain.TableWatchlist)
	}
	if len(a.Changes) != cap(a.Changes) {
		t.Fatalf("expected a full buffer, got %d", len(a.Changes))
	}
}
