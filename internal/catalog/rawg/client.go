// Package rawg is the game catalog client.
package rawg

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/mediadeck/internal/catalog/transport"
	"github.com/mmcdole/mediadeck/internal/domain"
)

// Provider is the name used in errors and metrics
const Provider = "RAWG"

const DefaultBaseURL = "https://api.rawg.io/api"

const dateLayout = "2006-01-02"

// Options configures a Client
type Options struct {
	APIKey    string
	BaseURL   string
	RateLimit float64

	// Transport replaces the network; used by demo mode and tests
	Transport http.RoundTripper

	Logger *slog.Logger
}

// Client implements domain.GameCatalog against RAWG
type Client struct {
	fetcher    *transport.Fetcher
	configured bool
	now        func() time.Time
	logger     *slog.Logger
}

// NewClient creates a new RAWG client
func NewClient(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	apiKey := opts.APIKey

	fetcher := transport.New(transport.Config{
		Provider:  Provider,
		BaseURL:   baseURL,
		RateLimit: opts.RateLimit,
		Transport: opts.Transport,
		// RAWG takes the key as a query parameter
		Authorize: func(req *http.Request) {
			q := req.URL.Query()
			q.Set("key", apiKey)
			req.URL.RawQuery = q.Encode()
		},
		Logger: logger,
	})

	return &Client{
		fetcher:    fetcher,
		configured: apiKey != "" || opts.Transport != nil,
		now:        time.Now,
		logger:     logger,
	}
}

// Configured reports whether the client has a key (or a demo transport)
func (c *Client) Configured() bool { return c.configured }

func (c *Client) get(ctx context.Context, path string, query url.Values, dest any) error {
	if !c.configured {
		return domain.ErrCatalogNotConfigured
	}
	return c.fetcher.GetJSON(ctx, path, query, dest)
}

func listQuery(page int) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(domain.PageOrDefault(page)))
	q.Set("page_size", strconv.Itoa(PageSize))
	return q
}

func (c *Client) games(ctx context.Context, query url.Values) (*domain.Page[domain.Game], error) {
	var resp ListResponse
	if err := c.get(ctx, "/games", query, &resp); err != nil {
		return nil, err
	}
	page, _ := strconv.Atoi(query.Get("page"))
	return mapPage(&resp, page), nil
}

func (c *Client) ordered(ctx context.Context, ordering string, page int) (*domain.Page[domain.Game], error) {
	q := listQuery(page)
	q.Set("ordering", ordering)
	return c.games(ctx, q)
}

// Trending returns recently added games
func (c *Client) Trending(ctx context.Context, page int) (*domain.Page[domain.Game], error) {
	return c.ordered(ctx, OrderingAdded, page)
}

// Popular returns the highest rated games
func (c *Client) Popular(ctx context.Context, page int) (*domain.Page[domain.Game], error) {
	return c.ordered(ctx, OrderingRating, page)
}

// TopRated returns games ordered by Metacritic score
func (c *Client) TopRated(ctx context.Context, page int) (*domain.Page[domain.Game], error) {
	return c.ordered(ctx, OrderingMetacritic, page)
}

// Upcoming returns games releasing between today and one year from today
func (c *Client) Upcoming(ctx context.Context, page int) (*domain.Page[domain.Game], error) {
	today := c.now()
	q := listQuery(page)
	q.Set("dates", today.Format(dateLayout)+","+today.AddDate(1, 0, 0).Format(dateLayout))
	q.Set("ordering", OrderingAdded)
	return c.games(ctx, q)
}

func (c *Client) Search(ctx context.Context, query string, page int) (*domain.Page[domain.Game], error) {
	q := listQuery(page)
	q.Set("search", query)
	return c.games(ctx, q)
}

func (c *Client) ByPlatform(ctx context.Context, platformID, page int) (*domain.Page[domain.Game], error) {
	q := listQuery(page)
	q.Set("platforms", strconv.Itoa(platformID))
	return c.games(ctx, q)
}

func (c *Client) ByGenre(ctx context.Context, genreID, page int) (*domain.Page[domain.Game], error) {
	q := listQuery(page)
	q.Set("genres", strconv.Itoa(genreID))
	return c.games(ctx, q)
}

// Discover lists games matching the filter. RAWG has no vote-count filter,
// so MinVotes is ignored; MinRating maps to a Metacritic floor.
func (c *Client) Discover(ctx context.Context, filter domain.DiscoverFilter) (*domain.Page[domain.Game], error) {
	return c.games(ctx, discoverQuery(filter))
}

func discoverQuery(f domain.DiscoverFilter) url.Values {
	q := listQuery(f.Page)

	ordering := f.SortBy
	if ordering == "" {
		ordering = OrderingRating
	}
	q.Set("ordering", ordering)

	if len(f.GenreIDs) > 0 {
		ids := make([]string, len(f.GenreIDs))
		for i, id := range f.GenreIDs {
			ids[i] = strconv.Itoa(id)
		}
		q.Set("genres", strings.Join(ids, ","))
	}
	if f.DateFrom != "" && f.DateTo != "" {
		q.Set("dates", f.DateFrom+","+f.DateTo)
	}
	if f.MinRating > 0 {
		q.Set("metacritic", fmt.Sprintf("%d,100", int(f.MinRating)))
	}
	return q
}

// Game returns one game by id
func (c *Client) Game(ctx context.Context, id int64) (*domain.GameDetails, error) {
	var resp GameDetailsResponse
	if err := c.get(ctx, fmt.Sprintf("/games/%d", id), nil, &resp); err != nil {
		return nil, err
	}
	return mapDetails(&resp), nil
}

// Genres returns every RAWG genre
func (c *Client) Genres(ctx context.Context) ([]domain.Genre, error) {
	var resp GenreListResponse
	if err := c.get(ctx, "/genres", nil, &resp); err != nil {
		return nil, err
	}
	return mapGenres(resp.Results), nil
}
