package service

import (
	"context"

	"github.com/mmcdole/mediadeck/internal/domain"
	"github.com/sourcegraph/conc"
)

// Section is one dashboard row. Err is set when its catalog failed; the
// other sections still load.
type Section struct {
	Title string
	Cards []domain.Card
	Err   error
}

// Dashboard is the home screen aggregate
type Dashboard struct {
	Movies Section
	Series Section
	Games  Section
}

// Dashboard loads trending movies, popular series and trending games concurrently
func (s *CatalogService) Dashboard(ctx context.Context) Dashboard {
	d := Dashboard{
		Movies: Section{Title: "Trending Movies"},
		Series: Section{Title: "Popular Series"},
		Games:  Section{Title: "Trending Games"},
	}

	var wg conc.WaitGroup
	wg.Go(func() {
		page, err := s.Trending(ctx, domain.WindowWeek)
		if err != nil {
			d.Movies.Err = err
			return
		}
		for _, c := range page.Results {
			if c.Ref.Kind == domain.KindMovie {
				d.Movies.Cards = append(d.Movies.Cards, c)
			}
		}
	})
	wg.Go(func() {
		page, err := s.DiscoverSeries(ctx, domain.DiscoverFilter{SortBy: "popularity.desc"})
		d.Series.Cards, d.Series.Err = domain.PageCards(page), err
	})
	wg.Go(func() {
		page, err := s.TrendingGames(ctx, 1)
		d.Games.Cards, d.Games.Err = domain.PageCards(page), err
	})
	wg.Wait()

	return d
}
