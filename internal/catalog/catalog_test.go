package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/mmcdole/mediadeck/internal/adapter"
	"github.com/mmcdole/mediadeck/internal/domain"
)

func TestNew_DemoModeServesFixtures(t *testing.T) {
	cfg := adapter.DefaultConfig()
	cfg.DemoMode = true
	cfg.Demo.Latency = 0

	clients := New(cfg, adapter.NullLogger())
	if !clients.Movies.Configured() || !clients.Games.Configured() {
		t.Fatal("demo clients should report configured")
	}

	movies, err := clients.Movies.PopularMovies(context.Background(), 1)
	if err != nil || len(movies.Results) == 0 {
		t.Fatalf("PopularMovies: %v %+v", err, movies)
	}
	games, err := clients.Games.Trending(context.Background(), 1)
	if err != nil || len(games.Results) == 0 {
		t.Fatalf("Trending games: %v %+v", err, games)
	}
}

func TestNew_MissingKeysDegradePerCatalog(t *testing.T) {
	cfg := adapter.DefaultConfig()
	cfg.TMDB.APIKey = "token"

	clients := New(cfg, adapter.NullLogger())
	if !clients.Movies.Configured() {
		t.Fatal("TMDB should be configured")
	}
	if _, err := clients.Games.Popular(context.Background(), 1); !errors.Is(err, domain.ErrCatalogNotConfigured) {
		t.Fatalf("expected ErrCatalogNotConfigured, got %v", err)
	}
}
