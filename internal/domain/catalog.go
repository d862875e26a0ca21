package domain

// Page is the normalized envelope returned by every catalog list call
type Page[T any] struct {
	Page         int `json:"page"`
	Results      []T `json:"results"`
	TotalPages   int `json:"total_pages"`
	TotalResults int `json:"total_results"`
}

// PageCards projects the page results onto display records
func PageCards[T CatalogItem](p *Page[T]) []Card {
	if p == nil {
		return nil
	}
	return Cards(p.Results)
}

// TimeWindow selects the trending window
type TimeWindow string

const (
	WindowDay  TimeWindow = "day"
	WindowWeek TimeWindow = "week"
)

// DiscoverFilter is the named optional filter set for discover queries.
// Zero values mean "not supplied" and are never sent to the provider.
type DiscoverFilter struct {
	Page      int
	GenreIDs  []int
	DateFrom  string // YYYY-MM-DD
	DateTo    string // YYYY-MM-DD
	MinRating float64
	MinVotes  int
	SortBy    string
}

// PageOrDefault returns the requested page, defaulting to 1
func (f DiscoverFilter) PageOrDefault() int {
	return PageOrDefault(f.Page)
}

// PageOrDefault clamps a page number to the first page
func PageOrDefault(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// MovieDetails is the by-id view of a film
type MovieDetails struct {
	Movie
	Tagline string
	Runtime int // minutes
	Genres  []Genre
	Status  string
}

// SeriesDetails is the by-id view of a TV show
type SeriesDetails struct {
	Series
	Genres           []Genre
	NumberOfSeasons  int
	NumberOfEpisodes int
	Status           string
}

// GameDetails is the by-id view of a game
type GameDetails struct {
	Game
	Description string
	Website     string
	Developers  []string
}

// CastMember is a credited performer
type CastMember struct {
	ID        int64
	Name      string
	Character string
	Order     int
	PhotoURL  string
}

// CrewMember is a credited crew member
type CrewMember struct {
	ID         int64
	Name       string
	Job        string
	Department string
}

// Credits lists the cast and crew of a title
type Credits struct {
	ID   int64
	Cast []CastMember
	Crew []CrewMember
}
