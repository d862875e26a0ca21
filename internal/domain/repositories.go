package domain

import "context"

// MovieCatalog provides read-only access to the film/TV catalog
type MovieCatalog interface {
	// Trending returns movies and series trending in the window, mixed
	Trending(ctx context.Context, window TimeWindow) (*Page[CatalogItem], error)

	PopularMovies(ctx context.Context, page int) (*Page[Movie], error)
	PopularSeries(ctx context.Context, page int) (*Page[Series], error)
	TopRatedMovies(ctx context.Context, page int) (*Page[Movie], error)
	TopRatedSeries(ctx context.Context, page int) (*Page[Series], error)
	UpcomingMovies(ctx context.Context, page int) (*Page[Movie], error)

	SearchMovies(ctx context.Context, query string, page int) (*Page[Movie], error)
	SearchSeries(ctx context.Context, query string, page int) (*Page[Series], error)

	DiscoverMovies(ctx context.Context, filter DiscoverFilter) (*Page[Movie], error)
	DiscoverSeries(ctx context.Context, filter DiscoverFilter) (*Page[Series], error)

	Movie(ctx context.Context, id int64) (*MovieDetails, error)
	Series(ctx context.Context, id int64) (*SeriesDetails, error)
	MovieCredits(ctx context.Context, id int64) (*Credits, error)
	SeriesCredits(ctx context.Context, id int64) (*Credits, error)

	MovieGenres(ctx context.Context) ([]Genre, error)
	SeriesGenres(ctx context.Context) ([]Genre, error)
}

// GameCatalog provides read-only access to the game catalog
type GameCatalog interface {
	Trending(ctx context.Context, page int) (*Page[Game], error)
	Popular(ctx context.Context, page int) (*Page[Game], error)
	TopRated(ctx context.Context, page int) (*Page[Game], error)
	Upcoming(ctx context.Context, page int) (*Page[Game], error)
	Search(ctx context.Context, query string, page int) (*Page[Game], error)
	ByPlatform(ctx context.Context, platformID, page int) (*Page[Game], error)
	ByGenre(ctx context.Context, genreID, page int) (*Page[Game], error)
	Discover(ctx context.Context, filter DiscoverFilter) (*Page[Game], error)
	Game(ctx context.Context, id int64) (*GameDetails, error)
	Genres(ctx context.Context) ([]Genre, error)
}

// Identity resolves the owner of user data for the current process
type Identity interface {
	CurrentUser(ctx context.Context) (User, error)
}
