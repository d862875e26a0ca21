package tmdb

import (
	"context"
	"testing"

	"github.com/mmcdole/mediadeck/internal/demo"
	"github.com/mmcdole/mediadeck/internal/domain"
)

func TestDemo_TrendingIsMoviesPlusSeries(t *testing.T) {
	c := NewDemoClient(Options{}, 0)

	page, err := c.Trending(context.Background(), domain.WindowWeek)
	if err != nil {
		t.Fatalf("Trending failed: %v", err)
	}
	want := len(demo.Movies) + len(demo.Shows)
	if len(page.Results) != want || page.TotalResults != want {
		t.Fatalf("expected %d results and total, got %d/%d", want, len(page.Results), page.TotalResults)
	}
}

func TestDemo_ListResultCountEqualsTotal(t *testing.T) {
	c := NewDemoClient(Options{}, 0)
	ctx := context.Background()

	movies, err := c.PopularMovies(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(movies.Results) != movies.TotalResults || movies.TotalResults == 0 {
		t.Fatalf("movies: %d results, total %d", len(movies.Results), movies.TotalResults)
	}

	series, err := c.SearchSeries(ctx, "anything", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(series.Results) != series.TotalResults || series.TotalResults == 0 {
		t.Fatalf("series: %d results, total %d", len(series.Results), series.TotalResults)
	}
}

func TestDemo_ByIDReturnsSingleObject(t *testing.T) {
	c := NewDemoClient(Options{}, 0)
	ctx := context.Background()

	movie, err := c.Movie(ctx, 550)
	if err != nil {
		t.Fatalf("Movie failed: %v", err)
	}
	if movie.ID != 550 || movie.Title != "Fight Club" {
		t.Fatalf("unexpected movie %+v", movie.Movie)
	}
	if len(movie.Genres) == 0 {
		t.Fatal("expected genres on demo details")
	}

	// Unknown ids fall back to the first fixture
	series, err := c.Series(ctx, 424242)
	if err != nil {
		t.Fatalf("Series failed: %v", err)
	}
	if series.ID != demo.Shows[0].ID {
		t.Fatalf("expected fallback to first fixture, got %d", series.ID)
	}

	credits, err := c.MovieCredits(ctx, 550)
	if err != nil {
		t.Fatalf("MovieCredits failed: %v", err)
	}
	if credits.ID != 550 || len(credits.Cast) != 0 {
		t.Fatalf("unexpected credits %+v", credits)
	}

	genres, err := c.SeriesGenres(ctx)
	if err != nil || len(genres) != len(demo.SeriesGenres) {
		t.Fatalf("SeriesGenres = %v, %v", genres, err)
	}
}
