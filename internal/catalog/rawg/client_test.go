package rawg

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/mediadeck/internal/demo"
	"github.com/mmcdole/mediadeck/internal/domain"
)

func newTestServer(t *testing.T, status int, body string) (*httptest.Server, *url.Values, *string) {
	t.Helper()
	var query url.Values
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		path = r.URL.Path
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &query, &path
}

const emptyList = `{"count":0,"next":null,"previous":null,"results":[]}`

func keysOf(q url.Values) string {
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ",")
}

func TestDiscover_OnlySuppliedFilters(t *testing.T) {
	srv, query, path := newTestServer(t, http.StatusOK, emptyList)
	c := NewClient(Options{APIKey: "k1", BaseURL: srv.URL})

	if _, err := c.Discover(context.Background(), domain.DiscoverFilter{GenreIDs: []int{GenreRPG}}); err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	if *path != "/games" {
		t.Fatalf("unexpected path %q", *path)
	}
	q := *query
	if got, want := keysOf(q), "genres,key,ordering,page,page_size"; got != want {
		t.Fatalf("query keys = %s, want %s", got, want)
	}
	if q.Get("genres") != "5" || q.Get("ordering") != "-rating" || q.Get("page") != "1" || q.Get("page_size") != "20" {
		t.Fatalf("unexpected query %v", q)
	}
	if q.Get("key") != "k1" {
		t.Fatalf("key = %q", q.Get("key"))
	}
}

func TestDiscover_DatesAndMetacritic(t *testing.T) {
	tests := []struct {
		name      string
		filter    domain.DiscoverFilter
		wantDates string
		wantMeta  string
	}{
		{
			name:      "both bounds",
			filter:    domain.DiscoverFilter{DateFrom: "2020-01-01", DateTo: "2020-12-31"},
			wantDates: "2020-01-01,2020-12-31",
		},
		{
			name:   "single bound is dropped",
			filter: domain.DiscoverFilter{DateFrom: "2020-01-01"},
		},
		{
			name:     "metacritic floor",
			filter:   domain.DiscoverFilter{MinRating: 80, MinVotes: 500},
			wantMeta: "80,100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := discoverQuery(tt.filter)
			if q.Get("dates") != tt.wantDates {
				t.Fatalf("dates = %q, want %q", q.Get("dates"), tt.wantDates)
			}
			if q.Get("metacritic") != tt.wantMeta {
				t.Fatalf("metacritic = %q, want %q", q.Get("metacritic"), tt.wantMeta)
			}
			if q.Has("vote_count.gte") {
				t.Fatal("RAWG has no vote count filter")
			}
		})
	}
}

func TestFixedOrderings(t *testing.T) {
	tests := []struct {
		name     string
		call     func(c *Client) error
		ordering string
	}{
		{"trending", func(c *Client) error { _, err := c.Trending(context.Background(), 2); return err }, "-added"},
		{"popular", func(c *Client) error { _, err := c.Popular(context.Background(), 1); return err }, "-rating"},
		{"top rated", func(c *Client) error { _, err := c.TopRated(context.Background(), 1); return err }, "-metacritic"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, query, _ := newTestServer(t, http.StatusOK, emptyList)
			c := NewClient(Options{APIKey: "k", BaseURL: srv.URL})
			if err := tt.call(c); err != nil {
				t.Fatal(err)
			}
			if got := (*query).Get("ordering"); got != tt.ordering {
				t.Fatalf("ordering = %q, want %q", got, tt.ordering)
			}
		})
	}
}

func TestUpcoming_DateWindow(t *testing.T) {
	srv, query, _ := newTestServer(t, http.StatusOK, emptyList)
	c := NewClient(Options{APIKey: "k", BaseURL: srv.URL})
	c.now = func() time.Time { return time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC) }

	if _, err := c.Upcoming(context.Background(), 1); err != nil {
		t.Fatal(err)
	}
	if got := (*query).Get("dates"); got != "2026-03-15,2027-03-15" {
		t.Fatalf("dates = %q", got)
	}
}

func TestFetchError(t *testing.T) {
	srv, _, _ := newTestServer(t, http.StatusUnauthorized, `{"error":"bad key"}`)
	c := NewClient(Options{APIKey: "bad", BaseURL: srv.URL})

	_, err := c.Game(context.Background(), 3328)
	if !domain.IsFetchStatus(err, http.StatusUnauthorized) {
		t.Fatalf("expected FetchError 401, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "RAWG API error: 401") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestListMapping(t *testing.T) {
	body := `{"count":45,"next":"x","previous":null,"results":[
		{"id":3328,"name":"The Witcher 3","background_image":null,"rating":4.66,
		 "platforms":[{"platform":{"id":4,"name":"PC","slug":"pc"}}],
		 "genres":[{"id":5,"name":"RPG","slug":"role-playing-games-rpg"}]}
	]}`
	srv, _, _ := newTestServer(t, http.StatusOK, body)
	c := NewClient(Options{APIKey: "k", BaseURL: srv.URL})

	page, err := c.ByPlatform(context.Background(), PlatformPC, 2)
	if err != nil {
		t.Fatal(err)
	}
	if page.Page != 2 || page.TotalResults != 45 || page.TotalPages != 3 {
		t.Fatalf("unexpected envelope %+v", page)
	}
	g := page.Results[0]
	if g.CoverURL != domain.PlaceholderImage {
		t.Fatalf("expected placeholder cover, got %q", g.CoverURL)
	}
	if len(g.Platforms) != 1 || g.Platforms[0].ID != PlatformPC {
		t.Fatalf("platforms = %+v", g.Platforms)
	}
	if card := g.Card(); card.RatingScale != 5 || card.Ref.Kind != domain.KindGame {
		t.Fatalf("unexpected card %+v", card)
	}
}

func TestDemo(t *testing.T) {
	c := NewDemoClient(Options{}, 0)
	ctx := context.Background()

	page, err := c.Search(ctx, "zzz", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Results) != len(demo.Games) || page.TotalResults != len(page.Results) {
		t.Fatalf("demo list: %d results, total %d", len(page.Results), page.TotalResults)
	}

	game, err := c.Game(ctx, 4200)
	if err != nil {
		t.Fatal(err)
	}
	if game.ID != 4200 || game.Name != "Portal 2" {
		t.Fatalf("unexpected game %+v", game.Game)
	}

	genres, err := c.Genres(ctx)
	if err != nil || len(genres) != len(demo.GameGenres) {
		t.Fatalf("genres = %v, %v", genres, err)
	}
}
