package rawg

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/mediadeck/internal/catalog/transport"
	"github.com/mmcdole/mediadeck/internal/demo"
)

var reGameByID = regexp.MustCompile(`/games/(\d+)$`)

// NewDemoTransport answers RAWG requests from the demo fixtures
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

	if strings.HasSuffix(path, "/genres") {
		genres := make([]GenreDTO, 0, len(demo.GameGenres))
		for _, g := range demo.GameGenres {
			genres = append(genres, GenreDTO{ID: g.ID, Name: g.Name, Slug: g.Slug})
		}
		return GenreListResponse{Count: len(genres), Results: genres}
	}

	games := demoGames()
	if m := reGameByID.FindStringSubmatch(path); m != nil {
		id, _ := strconv.ParseInt(m[1], 10, 64)
		game := games[0]
		for _, g := range games {
			if g.ID == id {
				game = g
				break
			}
		}
		return GameDetailsResponse{GameDTO: game, DescriptionRaw: "Demo game description"}
	}

	return ListResponse{Count: len(games), Results: games}
}

func demoGames() []GameDTO {
	games := make([]GameDTO, 0, len(demo.Games))
	for _, g := range demo.Games {
		games = append(games, GameDTO{
			ID:              g.ID,
			Name:            g.Name,
			BackgroundImage: g.Cover,
			Rating:          g.Rating,
			RatingTop:       5,
			RatingsCount:    100,
			Released:        g.Released,
			Metacritic:      95,
			Playtime:        g.HoursPlayed,
			Platforms: []PlatformEntry{{
				Platform: PlatformDTO{ID: 1, Name: g.Platform, Slug: strings.ToLower(g.Platform)},
			}},
			Genres:           []GenreDTO{{ID: GenreAction, Name: "Action", Slug: "action"}},
			ShortScreenshots: []ScreenshotDTO{{ID: 1, Image: g.Cover}},
		})
	}
	return games
}
