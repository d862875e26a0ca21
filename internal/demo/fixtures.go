// Package demo holds the canned catalog data served when demo mode is on.
package demo

import "time"

// DefaultLatency is the simulated network delay applied to every demo request
const DefaultLatency = 500 * time.Millisecond

// UserID is the owner of all user data in demo mode
const UserID = "demo"

// MovieFixture is a demo film
type MovieFixture struct {
	ID          int64
	Title       string
	PosterPath  string
	Rating      float64
	Overview    string
	ReleaseDate string
}

// SeriesFixture is a demo TV show
type SeriesFixture struct {
	ID           int64
	Name         string
	PosterPath   string
	Rating       float64
	Overview     string
	FirstAirDate string
}

// GameFixture is a demo game
type GameFixture struct {
	ID          int64
	Name        string
	Cover       string
	Rating      float64
	Released    string
	Platform    string
	HoursPlayed int
}

// GenreFixture is a demo genre
type GenreFixture struct {
	ID   int
	Name string
	Slug string
}

// Genre ids attached to every demo film and show
var (
	MovieGenreIDs  = []int{28, 12}
	SeriesGenreIDs = []int{18, 10765}
)

var Movies = []MovieFixture{
	{
		ID:          550,
		Title:       "Fight Club",
		PosterPath:  "/pB8BM7pdSp6B6Ih7QZ4DrQ3PmJK.jpg",
		Rating:      8.4,
		Overview:    "An insomniac office worker and a soap maker form an underground fight club.",
		ReleaseDate: "1999-10-15",
	},
	{
		ID:          27205,
		Title:       "Inception",
		PosterPath:  "/oYuLEt3zVCKq57qu2F8dT7NIa6f.jpg",
		Rating:      8.4,
		Overview:    "A thief who steals corporate secrets through dream-sharing is given one last job.",
		ReleaseDate: "2010-07-15",
	},
	{
		ID:          603,
		Title:       "The Matrix",
		PosterPath:  "/f89U3ADr1oiB1s9GkdPOEpXUk5H.jpg",
		Rating:      8.2,
		Overview:    "A hacker learns the world he lives in is a simulation.",
		ReleaseDate: "1999-03-30",
	},
	{
		ID:          157336,
		Title:       "Interstellar",
		PosterPath:  "/gEU2QniE6E77NI6lCU6MxlNBvIx.jpg",
		Rating:      8.4,
		Overview:    "Explorers travel through a wormhole in search of a new home for humanity.",
		ReleaseDate: "2014-11-05",
	},
}

var Shows = []SeriesFixture{
	{
		ID:           1396,
		Name:         "Breaking Bad",
		PosterPath:   "/ggFHVNu6YYI5L9pCfOacjizRGt.jpg",
		Rating:       8.9,
		Overview:     "A chemistry teacher turns to making methamphetamine to secure his family's future.",
		FirstAirDate: "2008-01-20",
	},
	{
		ID:           1399,
		Name:         "Game of Thrones",
		PosterPath:   "/1XS1oqL89opfnbLl8WnZY1O1uJx.jpg",
		Rating:       8.4,
		Overview:     "Noble families fight for control of the Iron Throne.",
		FirstAirDate: "2011-04-17",
	},
	{
		ID:           2316,
		Name:         "The Office",
		PosterPath:   "/7DJKHzAi83BmQrWLrYYOqcoKfhR.jpg",
		Rating:       8.6,
		Overview:     "A mockumentary on a group of typical office workers.",
		FirstAirDate: "2005-03-24",
	},
}

var Games = []GameFixture{
	{
		ID:          3328,
		Name:        "The Witcher 3: Wild Hunt",
		Cover:       "https://media.rawg.io/media/games/618/618c2031a07bbff6b4f611f10b6bcdbc.jpg",
		Rating:      4.7,
		Released:    "2015-05-18",
		Platform:    "PC",
		HoursPlayed: 46,
	},
	{
		ID:          3498,
		Name:        "Grand Theft Auto V",
		Cover:       "https://media.rawg.io/media/games/20a/20aa03a10cda45239fe22d035c0ebe64.jpg",
		Rating:      4.5,
		Released:    "2013-09-17",
		Platform:    "PlayStation",
		HoursPlayed: 74,
	},
	{
		ID:          4200,
		Name:        "Portal 2",
		Cover:       "https://media.rawg.io/media/games/2ba/2bac0e87cf45e5b508f227d281c9252a.jpg",
		Rating:      4.6,
		Released:    "2011-04-18",
		Platform:    "PC",
		HoursPlayed: 11,
	},
	{
		ID:          28,
		Name:        "Red Dead Redemption 2",
		Cover:       "https://media.rawg.io/media/games/511/5118aff5091cb3efec399c808f8c598f.jpg",
		Rating:      4.6,
		Released:    "2018-10-26",
		Platform:    "Xbox",
		HoursPlayed: 60,
	},
}

var MovieGenres = []GenreFixture{
	{ID: 28, Name: "Action"},
	{ID: 12, Name: "Adventure"},
	{ID: 18, Name: "Drama"},
	{ID: 878, Name: "Science Fiction"},
}

var SeriesGenres = []GenreFixture{
	{ID: 18, Name: "Drama"},
	{ID: 35, Name: "Comedy"},
	{ID: 10765, Name: "Sci-Fi & Fantasy"},
}

var GameGenres = []GenreFixture{
	{ID: 4, Name: "Action", Slug: "action"},
	{ID: 3, Name: "Adventure", Slug: "adventure"},
	{ID: 5, Name: "RPG", Slug: "role-playing-games-rpg"},
	{ID: 51, Name: "Indie", Slug: "indie"},
}

// Sleep waits for d or until ctx-like cancellation via done
func Sleep(done <-chan struct{}, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-done:
		return false
	}
}
