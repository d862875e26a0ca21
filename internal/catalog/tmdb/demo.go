package tmdb

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/mediadeck/internal/catalog/transport"
	"github.com/mmcdole/mediadeck/internal/demo"
)

var (
	reMovieByID   = regexp.MustCompile(`/movie/(\d+)$`)
	reSeriesByID  = regexp.MustCompile(`/tv/(\d+)$`)
	reCredits     = regexp.MustCompile(`/(movie|tv)/(\d+)/credits$`)
	reGenreList   = regexp.MustCompile(`/genre/(movie|tv)/list$`)
	reTrendingAll = regexp.MustCompile(`/trending/`)
)

// NewDemoTransport answers TMDB requests from the demo fixtures
func NewDemoTransport(latency time.Duration) http.RoundTripper {
	return &transport.CannedTransport{Latency: latency, Respond: demoResponse}
}

// NewDemoClient is a Client whose transport serves demo fixtures
func NewDemoClient(opts Options, latency time.Duration) *Client {
	opts.Transport = NewDemoTransport(latency)
	return NewClient(opts)
}

func demoResponse(req *http.Request) any {
	path := req.URL.Path

	if reTrendingAll.MatchString(path) {
		results := append(demoMovies("movie"), demoSeries("tv")...)
		return envelope(results)
	}
	if m := reGenreList.FindStringSubmatch(path); m != nil {
		fixtures := demo.MovieGenres
		if m[1] == "tv" {
			fixtures = demo.SeriesGenres
		}
		return GenreListResponse{Genres: genreDTOs(fixtures)}
	}
	if m := reCredits.FindStringSubmatch(path); m != nil {
		id, _ := strconv.ParseInt(m[2], 10, 64)
		return CreditsResponse{ID: id, Cast: []CastDTO{}, Crew: []CrewDTO{}}
	}
	if m := reMovieByID.FindStringSubmatch(path); m != nil {
		id, _ := strconv.ParseInt(m[1], 10, 64)
		r := pick(demoMovies(""), id)
		return MovieDetailsResponse{Result: r, Genres: genresByID(demo.MovieGenres, r.GenreIDs), Status: "Released"}
	}
	if m := reSeriesByID.FindStringSubmatch(path); m != nil {
		id, _ := strconv.ParseInt(m[1], 10, 64)
		r := pick(demoSeries(""), id)
		return SeriesDetailsResponse{Result: r, Genres: genresByID(demo.SeriesGenres, r.GenreIDs), Status: "Ended"}
	}
	if strings.Contains(path, "movie") {
		return envelope(demoMovies(""))
	}
	if strings.Contains(path, "tv") {
		return envelope(demoSeries(""))
	}
	return envelope([]Result{})
}

func envelope(results []Result) ListResponse {
	return ListResponse{Page: 1, Results: results, TotalPages: 1, TotalResults: len(results)}
}

// pick returns the fixture with the given id, or the first one
func pick(results []Result, id int64) Result {
	for _, r := range results {
		if r.ID == id {
			return r
		}
	}
	return results[0]
}

func demoMovies(mediaType string) []Result {
	results := make([]Result, 0, len(demo.Movies))
	for _, m := range demo.Movies {
		results = append(results, Result{
			ID:           m.ID,
			Title:        m.Title,
			PosterPath:   m.PosterPath,
			BackdropPath: m.PosterPath,
			Overview:     m.Overview,
			VoteAverage:  m.Rating,
			VoteCount:    100,
			ReleaseDate:  m.ReleaseDate,
			MediaType:    mediaType,
			GenreIDs:     demo.MovieGenreIDs,
		})
	}
	return results
}

func demoSeries(mediaType string) []Result {
	results := make([]Result, 0, len(demo.Shows))
	for _, s := range demo.Shows {
		results = append(results, Result{
			ID:           s.ID,
			Name:         s.Name,
			PosterPath:   s.PosterPath,
			BackdropPath: s.PosterPath,
			Overview:     s.Overview,
			VoteAverage:  s.Rating,
			VoteCount:    100,
			FirstAirDate: s.FirstAirDate,
			MediaType:    mediaType,
			GenreIDs:     demo.SeriesGenreIDs,
		})
	}
	return results
}

func genreDTOs(fixtures []demo.GenreFixture) []GenreDTO {
	out := make([]GenreDTO, 0, len(fixtures))
	for _, g := range fixtures {
		out = append(out, GenreDTO{ID: g.ID, Name: g.Name})
	}
	return out
}

func genresByID(fixtures []demo.GenreFixture, ids []int) []GenreDTO {
	var out []GenreDTO
	for _, id := range ids {
		for _, g := range fixtures {
			if g.ID == id {
				out = append(out, GenreDTO{ID: g.ID, Name: g.Name})
			}
		}
	}
	return out
}
