// Package tmdb is the film and TV catalog client.
package tmdb

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/mmcdole/mediadeck/internal/catalog/transport"
	"github.com/mmcdole/mediadeck/internal/domain"
)

// Provider is the name used in errors and metrics
const Provider = "TMDB"

const (
	DefaultBaseURL  = "https://api.themoviedb.org/3"
	DefaultLanguage = "en-US"
	defaultSort     = "popularity.desc"
)

// Options configures a Client
type Options struct {
	APIKey    string // v4 read access token, sent as a bearer credential
	BaseURL   string
	ImageBase string
	Language  string
	RateLimit float64

	// Transport replaces the network; used by demo mode and tests
	Transport http.RoundTripper

	Logger *slog.Logger
}

// Client implements domain.MovieCatalog against TMDB
type Client struct {
	fetcher    *transport.Fetcher
	language   string
	configured bool
	mapper     mapper
	logger     *slog.Logger
}

// NewClient creates a new TMDB client
func NewClient(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	language := opts.Language
	if language == "" {
		language = DefaultLanguage
	}
	apiKey := opts.APIKey

	fetcher := transport.New(transport.Config{
		Provider:  Provider,
		BaseURL:   baseURL,
		RateLimit: opts.RateLimit,
		Transport: opts.Transport,
		Authorize: func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer "+apiKey)
		},
		Logger: logger,
	})

	return &Client{
		fetcher:    fetcher,
		language:   language,
		configured: apiKey != "" || opts.Transport != nil,
		mapper:     mapper{imageBase: opts.ImageBase},
		logger:     logger,
	}
}

// Configured reports whether the client has credentials (or a demo transport)
func (c *Client) Configured() bool { return c.configured }

// query returns the parameters every request carries
func (c *Client) query() url.Values {
	q := url.Values{}
	q.Set("language", c.language)
	return q
}

func (c *Client) pageQuery(page int) url.Values {
	q := c.query()
	q.Set("page", strconv.Itoa(domain.PageOrDefault(page)))
	return q
}

func (c *Client) get(ctx context.Context, path string, query url.Values, dest any) error {
	if !c.configured {
		return domain.ErrCatalogNotConfigured
	}
	return c.fetcher.GetJSON(ctx, path, query, dest)
}

func (c *Client) list(ctx context.Context, path string, query url.Values) (*ListResponse, error) {
	var resp ListResponse
	if err := c.get(ctx, path, query, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) movies(ctx context.Context, path string, query url.Values) (*domain.Page[domain.Movie], error) {
	resp, err := c.list(ctx, path, query)
	if err != nil {
		return nil, err
	}
	return c.mapper.moviePage(resp), nil
}

func (c *Client) series(ctx context.Context, path string, query url.Values) (*domain.Page[domain.Series], error) {
	resp, err := c.list(ctx, path, query)
	if err != nil {
		return nil, err
	}
	return c.mapper.seriesPage(resp), nil
}

// Trending returns films and shows trending in the window
func (c *Client) Trending(ctx context.Context, window domain.TimeWindow) (*domain.Page[domain.CatalogItem], error) {
	if window != domain.WindowDay {
		window = domain.WindowWeek
	}
	resp, err := c.list(ctx, "/trending/all/"+string(window), c.query())
	if err != nil {
		return nil, err
	}
	return c.mapper.mixedPage(resp), nil
}

func (c *Client) PopularMovies(ctx context.Context, page int) (*domain.Page[domain.Movie], error) {
	return c.movies(ctx, "/movie/popular", c.pageQuery(page))
}

func (c *Client) PopularSeries(ctx context.Context, page int) (*domain.Page[domain.Series], error) {
	return c.series(ctx, "/tv/popular", c.pageQuery(page))
}

func (c *Client) TopRatedMovies(ctx context.Context, page int) (*domain.Page[domain.Movie], error) {
	return c.movies(ctx, "/movie/top_rated", c.pageQuery(page))
}

func (c *Client) TopRatedSeries(ctx context.Context, page int) (*domain.Page[domain.Series], error) {
	return c.series(ctx, "/tv/top_rated", c.pageQuery(page))
}

func (c *Client) UpcomingMovies(ctx context.Context, page int) (*domain.Page[domain.Movie], error) {
	return c.movies(ctx, "/movie/upcoming", c.pageQuery(page))
}

func (c *Client) SearchMovies(ctx context.Context, query string, page int) (*domain.Page[domain.Movie], error) {
	q := c.pageQuery(page)
	q.Set("query", query)
	return c.movies(ctx, "/search/movie", q)
}

func (c *Client) SearchSeries(ctx context.Context, query string, page int) (*domain.Page[domain.Series], error) {
	q := c.pageQuery(page)
	q.Set("query", query)
	return c.series(ctx, "/search/tv", q)
}

// DiscoverMovies lists films matching the filter
func (c *Client) DiscoverMovies(ctx context.Context, filter domain.DiscoverFilter) (*domain.Page[domain.Movie], error) {
	return c.movies(ctx, "/discover/movie", c.discoverQuery(filter, "primary_release_date"))
}

// DiscoverSeries lists shows matching the filter
func (c *Client) DiscoverSeries(ctx context.Context, filter domain.DiscoverFilter) (*domain.Page[domain.Series], error) {
	return c.series(ctx, "/discover/tv", c.discoverQuery(filter, "first_air_date"))
}

// discoverQuery serializes only the filters that were supplied.
// dateField is the provider's date key for the kind being discovered.
func (c *Client) discoverQuery(f domain.DiscoverFilter, dateField string) url.Values {
	q := c.pageQuery(f.Page)

	sort := f.SortBy
	if sort == "" {
		sort = defaultSort
	}
	q.Set("sort_by", sort)

	if len(f.GenreIDs) > 0 {
		q.Set("with_genres", joinInts(f.GenreIDs))
	}
	if f.DateFrom != "" {
		q.Set(dateField+".gte", f.DateFrom)
	}
	if f.DateTo != "" {
		q.Set(dateField+".lte", f.DateTo)
	}
	if f.MinRating > 0 {
		q.Set("vote_average.gte", strconv.FormatFloat(f.MinRating, 'f', -1, 64))
	}
	if f.MinVotes > 0 {
		q.Set("vote_count.gte", strconv.Itoa(f.MinVotes))
	}
	return q
}

// Movie returns one film by id
func (c *Client) Movie(ctx context.Context, id int64) (*domain.MovieDetails, error) {
	var resp MovieDetailsResponse
	if err := c.get(ctx, fmt.Sprintf("/movie/%d", id), c.query(), &resp); err != nil {
		return nil, err
	}
	return c.mapper.movieDetails(&resp), nil
}

// Series returns one show by id
func (c *Client) Series(ctx context.Context, id int64) (*domain.SeriesDetails, error) {
	var resp SeriesDetailsResponse
	if err := c.get(ctx, fmt.Sprintf("/tv/%d", id), c.query(), &resp); err != nil {
		return nil, err
	}
	return c.mapper.seriesDetails(&resp), nil
}

func (c *Client) MovieCredits(ctx context.Context, id int64) (*domain.Credits, error) {
	return c.credits(ctx, fmt.Sprintf("/movie/%d/credits", id))
}

func (c *Client) SeriesCredits(ctx context.Context, id int64) (*domain.Credits, error) {
	return c.credits(ctx, fmt.Sprintf("/tv/%d/credits", id))
}

func (c *Client) credits(ctx context.Context, path string) (*domain.Credits, error) {
	var resp CreditsResponse
	if err := c.get(ctx, path, c.query(), &resp); err != nil {
		return nil, err
	}
	return c.mapper.credits(&resp), nil
}

func (c *Client) MovieGenres(ctx context.Context) ([]domain.Genre, error) {
	return c.genres(ctx, "/genre/movie/list")
}

func (c *Client) SeriesGenres(ctx context.Context) ([]domain.Genre, error) {
	return c.genres(ctx, "/genre/tv/list")
}

func (c *Client) genres(ctx context.Context, path string) ([]domain.Genre, error) {
	var resp GenreListResponse
	if err := c.get(ctx, path, c.query(), &resp); err != nil {
		return nil, err
	}
	return mapGenres(resp.Genres), nil
}

func joinInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
