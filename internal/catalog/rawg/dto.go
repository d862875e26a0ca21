package rawg

// PlatformDTO is a platform reference
type PlatformDTO struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// PlatformEntry wraps a platform inside a game record
type PlatformEntry struct {
	Platform PlatformDTO `json:"platform"`
}

// GenreDTO is a RAWG genre
type GenreDTO struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// ScreenshotDTO is a short screenshot reference
type ScreenshotDTO struct {
	ID    int64  `json:"id"`
	Image string `json:"image"`
}

// GameDTO is a game record from list and detail endpoints
type GameDTO struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	BackgroundImage  string          `json:"background_image"`
	Rating           float64         `json:"rating"`
	RatingTop        int             `json:"rating_top"`
	RatingsCount     int             `json:"ratings_count"`
	Released         string          `json:"released"`
	Metacritic       int             `json:"metacritic"`
	Playtime         int             `json:"playtime"`
	Platforms        []PlatformEntry `json:"platforms"`
	Genres           []GenreDTO      `json:"genres"`
	ShortScreenshots []ScreenshotDTO `json:"short_screenshots,omitempty"`
}

// ListResponse is the RAWG paginated envelope
type ListResponse struct {
	Count    int       `json:"count"`
	Next     *string   `json:"next"`
	Previous *string   `json:"previous"`
	Results  []GameDTO `json:"results"`
}

// DeveloperDTO is a studio credit on a game
type DeveloperDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// GameDetailsResponse is returned by /games/{id}
type GameDetailsResponse struct {
	GameDTO
	DescriptionRaw string         `json:"description_raw,omitempty"`
	Website        string         `json:"website,omitempty"`
	Developers     []DeveloperDTO `json:"developers,omitempty"`
}

// GenreListResponse is returned by /genres
type GenreListResponse struct {
	Count   int        `json:"count"`
	Results []GenreDTO `json:"results"`
}
