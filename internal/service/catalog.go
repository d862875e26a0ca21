package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmcdole/mediadeck/internal/domain"
	"github.com/mmcdole/mediadeck/internal/store"
)

const (
	keyTMDB = "tmdb"
	keyRAWG = "rawg"
)

// CatalogService is the cached read side of the TMDB and RAWG catalogs
type CatalogService struct {
	movies  domain.MovieCatalog
	games   domain.GameCatalog
	queries *Queries
	logger  *slog.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(movies domain.MovieCatalog, games domain.GameCatalog, queries *Queries, logger *slog.Logger) *CatalogService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogService{movies: movies, games: games, queries: queries, logger: logger}
}

func catalogQuery[T any](ctx context.Context, s *CatalogService, key string, fetch func(context.Context) (T, error)) (T, error) {
	return cached(ctx, s.queries, store.BucketCatalog, key, func(ctx context.Context) (T, error) {
		v, err := fetch(ctx)
		if err != nil {
			s.logger.Error("catalog fetch failed", "error", err, "key", key)
		}
		return v, err
	})
}

// Trending returns the films and shows trending in window as cards
func (s *CatalogService) Trending(ctx context.Context, window domain.TimeWindow) (*domain.Page[domain.Card], error) {
	return catalogQuery(ctx, s, catalogKey(keyTMDB, "trending", string(window)), func(ctx context.Context) (*domain.Page[domain.Card], error) {
		p, err := s.movies.Trending(ctx, window)
		if err != nil {
			return nil, err
		}
		return &domain.Page[domain.Card]{
			Page:         p.Page,
			Results:      domain.Cards(p.Results),
			TotalPages:   p.TotalPages,
			TotalResults: p.TotalResults,
		}, nil
	})
}

func (s *CatalogService) PopularMovies(ctx context.Context, page int) (*domain.Page[domain.Movie], error) {
	return catalogQuery(ctx, s, catalogKey(keyTMDB, "movies", "popular", domain.PageOrDefault(page)), func(ctx context.Context) (*domain.Page[domain.Movie], error) {
		return s.movies.PopularMovies(ctx, page)
	})
}

func (s *CatalogService) PopularSeries(ctx context.Context, page int) (*domain.Page[domain.Series], error) {
	return catalogQuery(ctx, s, catalogKey(keyTMDB, "series", "popular", domain.PageOrDefault(page)), func(ctx context.Context) (*domain.Page[domain.Series], error) {
		return s.movies.PopularSeries(ctx, page)
	})
}

func (s *CatalogService) TopRatedMovies(ctx context.Context, page int) (*domain.Page[domain.Movie], error) {
	return catalogQuery(ctx, s, catalogKey(keyTMDB, "movies", "top_rated", domain.PageOrDefault(page)), func(ctx context.Context) (*domain.Page[domain.Movie], error) {
		return s.movies.TopRatedMovies(ctx, page)
	})
}

func (s *CatalogService) TopRatedSeries(ctx context.Context, page int) (*domain.Page[domain.Series], error) {
	return catalogQuery(ctx, s, catalogKey(keyTMDB, "series", "top_rated", domain.PageOrDefault(page)), func(ctx context.Context) (*domain.Page[domain.Series], error) {
		return s.movies.TopRatedSeries(ctx, page)
	})
}

func (s *CatalogService) UpcomingMovies(ctx context.Context, page int) (*domain.Page[domain.Movie], error) {
	return catalogQuery(ctx, s, catalogKey(keyTMDB, "movies", "upcoming", domain.PageOrDefault(page)), func(ctx context.Context) (*domain.Page[domain.Movie], error) {
		return s.movies.UpcomingMovies(ctx, page)
	})
}

func (s *CatalogService) SearchMovies(ctx context.Context, query string, page int) (*domain.Page[domain.Movie], error) {
	return catalogQuery(ctx, s, catalogKey(keyTMDB, "movies", "search", domain.PageOrDefault(page), query), func(ctx context.Context) (*domain.Page[domain.Movie], error) {
		return s.movies.SearchMovies(ctx, query, page)
	})
}

func (s *CatalogService) SearchSeries(ctx context.Context, query string, page int) (*domain.Page[domain.Series], error) {
	return catalogQuery(ctx, s, catalogKey(keyTMDB, "series", "search", domain.PageOrDefault(page), query), func(ctx context.Context) (*domain.Page[domain.Series], error) {
		return s.movies.SearchSeries(ctx, query, page)
	})
}

func (s *CatalogService) DiscoverMovies(ctx context.Context, f domain.DiscoverFilter) (*domain.Page[domain.Movie], error) {
	return catalogQuery(ctx, s, discoverKey(keyTMDB, "movies", f), func(ctx context.Context) (*domain.Page[domain.Movie], error) {
		return s.movies.DiscoverMovies(ctx, f)
	})
}

func (s *CatalogService) DiscoverSeries(ctx context.Context, f domain.DiscoverFilter) (*domain.Page[domain.Series], error) {
	return catalogQuery(ctx, s, discoverKey(keyTMDB, "series", f), func(ctx context.Context) (*domain.Page[domain.Series], error) {
		return s.movies.DiscoverSeries(ctx, f)
	})
}

func (s *CatalogService) Movie(ctx context.Context, id int64) (*domain.MovieDetails, error) {
	return catalogQuery(ctx, s, catalogKey(keyTMDB, "movie", id), func(ctx context.Context) (*domain.MovieDetails, error) {
		return s.movies.Movie(ctx, id)
	})
}

func (s *CatalogService) Series(ctx context.Context, id int64) (*domain.SeriesDetails, error) {
	return catalogQuery(ctx, s, catalogKey(keyTMDB, "series", id), func(ctx context.Context) (*domain.SeriesDetails, error) {
		return s.movies.Series(ctx, id)
	})
}

func (s *CatalogService) MovieCredits(ctx context.Context, id int64) (*domain.Credits, error) {
	return catalogQuery(ctx, s, catalogKey(keyTMDB, "movie", id, "credits"), func(ctx context.Context) (*domain.Credits, error) {
		return s.movies.MovieCredits(ctx, id)
	})
}

func (s *CatalogService) SeriesCredits(ctx context.Context, id int64) (*domain.Credits, error) {
	return catalogQuery(ctx, s, catalogKey(keyTMDB, "series", id, "credits"), func(ctx context.Context) (*domain.Credits, error) {
		return s.movies.SeriesCredits(ctx, id)
	})
}

func (s *CatalogService) MovieGenres(ctx context.Context) ([]domain.Genre, error) {
	return catalogQuery(ctx, s, catalogKey(keyTMDB, "genres", "movie"), s.movies.MovieGenres)
}

func (s *CatalogService) SeriesGenres(ctx context.Context) ([]domain.Genre, error) {
	return catalogQuery(ctx, s, catalogKey(keyTMDB, "genres", "series"), s.movies.SeriesGenres)
}

func (s *CatalogService) TrendingGames(ctx context.Context, page int) (*domain.Page[domain.Game], error) {
	return catalogQuery(ctx, s, catalogKey(keyRAWG, "trending", domain.PageOrDefault(page)), func(ctx context.Context) (*domain.Page[domain.Game], error) {
		return s.games.Trending(ctx, page)
	})
}

func (s *CatalogService) PopularGames(ctx context.Context, page int) (*domain.Page[domain.Game], error) {
	return catalogQuery(ctx, s, catalogKey(keyRAWG, "popular", domain.PageOrDefault(page)), func(ctx context.Context) (*domain.Page[domain.Game], error) {
		return s.games.Popular(ctx, page)
	})
}

func (s *CatalogService) TopRatedGames(ctx context.Context, page int) (*domain.Page[domain.Game], error) {
	return catalogQuery(ctx, s, catalogKey(keyRAWG, "top_rated", domain.PageOrDefault(page)), func(ctx context.Context) (*domain.Page[domain.Game], error) {
		return s.games.TopRated(ctx, page)
	})
}

func (s *CatalogService) UpcomingGames(ctx context.Context, page int) (*domain.Page[domain.Game], error) {
	return catalogQuery(ctx, s, catalogKey(keyRAWG, "upcoming", domain.PageOrDefault(page)), func(ctx context.Context) (*domain.Page[domain.Game], error) {
		return s.games.Upcoming(ctx, page)
	})
}

func (s *CatalogService) SearchGames(ctx context.Context, query string, page int) (*domain.Page[domain.Game], error) {
	return catalogQuery(ctx, s, catalogKey(keyRAWG, "search", domain.PageOrDefault(page), query), func(ctx context.Context) (*domain.Page[domain.Game], error) {
		return s.games.Search(ctx, query, page)
	})
}

func (s *CatalogService) GamesByPlatform(ctx context.Context, platformID, page int) (*domain.Page[domain.Game], error) {
	return catalogQuery(ctx, s, catalogKey(keyRAWG, "platform", platformID, domain.PageOrDefault(page)), func(ctx context.Context) (*domain.Page[domain.Game], error) {
		return s.games.ByPlatform(ctx, platformID, page)
	})
}

func (s *CatalogService) GamesByGenre(ctx context.Context, genreID, page int) (*domain.Page[domain.Game], error) {
	return catalogQuery(ctx, s, catalogKey(keyRAWG, "genre", genreID, domain.PageOrDefault(page)), func(ctx context.Context) (*domain.Page[domain.Game], error) {
		return s.games.ByGenre(ctx, genreID, page)
	})
}

func (s *CatalogService) DiscoverGames(ctx context.Context, f domain.DiscoverFilter) (*domain.Page[domain.Game], error) {
	return catalogQuery(ctx, s, discoverKey(keyRAWG, "games", f), func(ctx context.Context) (*domain.Page[domain.Game], error) {
		return s.games.Discover(ctx, f)
	})
}

func (s *CatalogService) Game(ctx context.Context, id int64) (*domain.GameDetails, error) {
	return catalogQuery(ctx, s, catalogKey(keyRAWG, "game", id), func(ctx context.Context) (*domain.GameDetails, error) {
		return s.games.Game(ctx, id)
	})
}

func (s *CatalogService) GameGenres(ctx context.Context) ([]domain.Genre, error) {
	return catalogQuery(ctx, s, catalogKey(keyRAWG, "genres"), s.games.Genres)
}

// Cards returns one page of any catalog list as display cards
func (s *CatalogService) Cards(ctx context.Context, list List, page int) (*domain.Page[domain.Card], error) {
	switch list {
	case ListPopularMovies:
		return cardPage(s.PopularMovies(ctx, page))
	case ListTopRatedMovies:
		return cardPage(s.TopRatedMovies(ctx, page))
	case ListUpcomingMovies:
		return cardPage(s.UpcomingMovies(ctx, page))
	case ListPopularSeries:
		return cardPage(s.PopularSeries(ctx, page))
	case ListTopRatedSeries:
		return cardPage(s.TopRatedSeries(ctx, page))
	case ListTrendingGames:
		return cardPage(s.TrendingGames(ctx, page))
	case ListPopularGames:
		return cardPage(s.PopularGames(ctx, page))
	case ListTopRatedGames:
		return cardPage(s.TopRatedGames(ctx, page))
	case ListUpcomingGames:
		return cardPage(s.UpcomingGames(ctx, page))
	default:
		return s.Trending(ctx, domain.WindowWeek)
	}
}

// Card resolves a single ref into its display card
func (s *CatalogService) Card(ctx context.Context, ref domain.MediaRef) (domain.Card, error) {
	switch ref.Kind {
	case domain.KindMovie:
		d, err := s.Movie(ctx, ref.ID)
		if err != nil {
			return domain.Card{}, err
		}
		return d.Movie.Card(), nil
	case domain.KindSeries:
		d, err := s.Series(ctx, ref.ID)
		if err != nil {
			return domain.Card{}, err
		}
		return d.Series.Card(), nil
	case domain.KindGame:
		d, err := s.Game(ctx, ref.ID)
		if err != nil {
			return domain.Card{}, err
		}
		return d.Game.Card(), nil
	default:
		return domain.Card{}, fmt.Errorf("%w: unknown media kind %q", domain.ErrInvalidInput, ref.Kind)
	}
}

// List names a browsable catalog list
type List string

const (
	ListTrending       List = "trending"
	ListPopularMovies  List = "popular-movies"
	ListTopRatedMovies List = "top-rated-movies"
	ListUpcomingMovies List = "upcoming-movies"
	ListPopularSeries  List = "popular-series"
	ListTopRatedSeries List = "top-rated-series"
	ListTrendingGames  List = "trending-games"
	ListPopularGames   List = "popular-games"
	ListTopRatedGames  List = "top-rated-games"
	ListUpcomingGames  List = "upcoming-games"
)

// Lists is every browsable list in display order
var Lists = []List{
	ListTrending,
	ListPopularMovies, ListTopRatedMovies, ListUpcomingMovies,
	ListPopularSeries, ListTopRatedSeries,
	ListTrendingGames, ListPopularGames, ListTopRatedGames, ListUpcomingGames,
}

func cardPage[T domain.CatalogItem](p *domain.Page[T], err error) (*domain.Page[domain.Card], error) {
	if err != nil {
		return nil, err
	}
	return &domain.Page[domain.Card]{
		Page:         p.Page,
		Results:      domain.PageCards(p),
		TotalPages:   p.TotalPages,
		TotalResults: p.TotalResults,
	}, nil
}
