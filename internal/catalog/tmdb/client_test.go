package tmdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"

	"github.com/mmcdole/mediadeck/internal/domain"
)

// recorder captures the last request seen by a test server
type recorder struct {
	path   string
	query  url.Values
	header http.Header
}

func newTestServer(t *testing.T, status int, body string) (*httptest.Server, *recorder) {
	t.Helper()
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.path = r.URL.Path
		rec.query = r.URL.Query()
		rec.header = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func newTestClient(baseURL string) *Client {
	return NewClient(Options{APIKey: "token-123", BaseURL: baseURL, Language: "en-US"})
}

func sortedKeys(q url.Values) []string {
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

const emptyList = `{"page":1,"results":[],"total_pages":1,"total_results":0}`

func TestDiscoverMovies_OnlySuppliedFilters(t *testing.T) {
	srv, rec := newTestServer(t, http.StatusOK, emptyList)
	c := newTestClient(srv.URL)

	if _, err := c.DiscoverMovies(context.Background(), domain.DiscoverFilter{GenreIDs: []int{28}}); err != nil {
		t.Fatalf("DiscoverMovies failed: %v", err)
	}

	if rec.path != "/discover/movie" {
		t.Fatalf("unexpected path %q", rec.path)
	}
	want := []string{"language", "page", "sort_by", "with_genres"}
	if got := sortedKeys(rec.query); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("query keys = %v, want %v", got, want)
	}
	if rec.query.Get("page") != "1" || rec.query.Get("sort_by") != "popularity.desc" {
		t.Fatalf("unexpected defaults: %v", rec.query)
	}
	if rec.query.Get("with_genres") != "28" {
		t.Fatalf("with_genres = %q", rec.query.Get("with_genres"))
	}
	if got := rec.header.Get("Authorization"); got != "Bearer token-123" {
		t.Fatalf("Authorization = %q", got)
	}
}

func TestDiscover_DateFieldsPerKind(t *testing.T) {
	tests := []struct {
		name     string
		discover func(c *Client, f domain.DiscoverFilter) error
		gte, lte string
	}{
		{
			name: "movies",
			discover: func(c *Client, f domain.DiscoverFilter) error {
				_, err := c.DiscoverMovies(context.Background(), f)
				return err
			},
			gte: "primary_release_date.gte",
			lte: "primary_release_date.lte",
		},
		{
			name: "series",
			discover: func(c *Client, f domain.DiscoverFilter) error {
				_, err := c.DiscoverSeries(context.Background(), f)
				return err
			},
			gte: "first_air_date.gte",
			lte: "first_air_date.lte",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, rec := newTestServer(t, http.StatusOK, emptyList)
			c := newTestClient(srv.URL)

			filter := domain.DiscoverFilter{
				Page:      3,
				DateFrom:  "2020-01-01",
				DateTo:    "2020-12-31",
				MinRating: 7.5,
				MinVotes:  100,
				SortBy:    "vote_average.desc",
			}
			if err := tt.discover(c, filter); err != nil {
				t.Fatalf("discover failed: %v", err)
			}

			q := rec.query
			if q.Get(tt.gte) != "2020-01-01" || q.Get(tt.lte) != "2020-12-31" {
				t.Fatalf("date bounds missing: %v", q)
			}
			if q.Get("vote_average.gte") != "7.5" || q.Get("vote_count.gte") != "100" {
				t.Fatalf("vote filters missing: %v", q)
			}
			if q.Get("page") != "3" || q.Get("sort_by") != "vote_average.desc" {
				t.Fatalf("page/sort wrong: %v", q)
			}
			if q.Has("with_genres") {
				t.Fatal("with_genres sent without genres")
			}
		})
	}
}

func TestFetchError(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusNotFound, `{"status_message":"not found"}`)
	c := newTestClient(srv.URL)

	_, err := c.Movie(context.Background(), 999999)
	if err == nil {
		t.Fatal("expected error")
	}
	if !domain.IsFetchStatus(err, http.StatusNotFound) {
		t.Fatalf("expected FetchError 404, got %v", err)
	}
	if !strings.Contains(err.Error(), "404") {
		t.Fatalf("error should mention the status: %v", err)
	}
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c := newTestClient(base)
	_, err := c.PopularMovies(context.Background(), 1)
	if !errors.Is(err, domain.ErrCatalogUnreachable) {
		t.Fatalf("expected ErrCatalogUnreachable, got %v", err)
	}
}

func TestNotConfigured(t *testing.T) {
	c := NewClient(Options{BaseURL: "http://127.0.0.1:1"})
	if c.Configured() {
		t.Fatal("client without key should not be configured")
	}
	if _, err := c.PopularMovies(context.Background(), 1); !errors.Is(err, domain.ErrCatalogNotConfigured) {
		t.Fatalf("expected ErrCatalogNotConfigured, got %v", err)
	}
}

func TestTrending_MixesKindsAndDropsPeople(t *testing.T) {
	body := `{"page":1,"total_pages":1,"total_results":3,"results":[
		{"id":550,"title":"Fight Club","media_type":"movie","poster_path":"/a.jpg"},
		{"id":1396,"name":"Breaking Bad","media_type":"tv","poster_path":null},
		{"id":287,"name":"Brad Pitt","media_type":"person"}
	]}`
	srv, rec := newTestServer(t, http.StatusOK, body)
	c := newTestClient(srv.URL)

	page, err := c.Trending(context.Background(), domain.WindowDay)
	if err != nil {
		t.Fatalf("Trending failed: %v", err)
	}
	if rec.path != "/trending/all/day" {
		t.Fatalf("unexpected path %q", rec.path)
	}
	if len(page.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(page.Results))
	}
	if ref := page.Results[0].Ref(); ref.Kind != domain.KindMovie || ref.ID != 550 {
		t.Fatalf("unexpected first ref %v", ref)
	}
	card := page.Results[1].Card()
	if card.Ref.Kind != domain.KindSeries || card.PosterURL != domain.PlaceholderImage {
		t.Fatalf("unexpected series card %+v", card)
	}
	if got := page.Results[0].Card().PosterURL; got != DefaultImageBase+"/w500/a.jpg" {
		t.Fatalf("poster URL = %q", got)
	}
}

func TestImageURL(t *testing.T) {
	tests := []struct {
		path, size, want string
	}{
		{"", SizeMedium, domain.PlaceholderImage},
		{"/x.jpg", SizeSmall, "https://image.tmdb.org/t/p/w200/x.jpg"},
		{"/x.jpg", SizeOriginal, "https://image.tmdb.org/t/p/original/x.jpg"},
		{"/x.jpg", "bogus", "https://image.tmdb.org/t/p/w500/x.jpg"},
	}
	for _, tt := range tests {
		if got := ImageURL("", tt.path, tt.size); got != tt.want {
			t.Errorf("ImageURL(%q, %q) = %q, want %q", tt.path, tt.size, got, tt.want)
		}
	}
}
