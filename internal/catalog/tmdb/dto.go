package tmdb

// Result is a list entry from any TMDB list endpoint. Films carry Title and
// ReleaseDate, shows carry Name and FirstAirDate; trending sets MediaType.
type Result struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title,omitempty"`
	Name         string  `json:"name,omitempty"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	Overview     string  `json:"overview"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int     `json:"vote_count"`
	ReleaseDate  string  `json:"release_date,omitempty"`
	FirstAirDate string  `json:"first_air_date,omitempty"`
	MediaType    string  `json:"media_type,omitempty"` // "movie", "tv", "person"
	GenreIDs     []int   `json:"genre_ids"`
}

// ListResponse is the TMDB paginated envelope
type ListResponse struct {
	Page         int      `json:"page"`
	Results      []Result `json:"results"`
	TotalPages   int      `json:"total_pages"`
	TotalResults int      `json:"total_results"`
}

// GenreDTO is a TMDB genre
type GenreDTO struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// GenreListResponse is returned by /genre/{movie,tv}/list
type GenreListResponse struct {
	Genres []GenreDTO `json:"genres"`
}

// MovieDetailsResponse is returned by /movie/{id}
type MovieDetailsResponse struct {
	Result
	Tagline string     `json:"tagline,omitempty"`
	Runtime int        `json:"runtime,omitempty"`
	Genres  []GenreDTO `json:"genres,omitempty"`
	Status  string     `json:"status,omitempty"`
}

// SeriesDetailsResponse is returned by /tv/{id}
type SeriesDetailsResponse struct {
	Result
	Genres           []GenreDTO `json:"genres,omitempty"`
	NumberOfSeasons  int        `json:"number_of_seasons,omitempty"`
	NumberOfEpisodes int        `json:"number_of_episodes,omitempty"`
	Status           string     `json:"status,omitempty"`
}

// CastDTO is a cast entry from /credits
type CastDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	Order       int    `json:"order"`
	ProfilePath string `json:"profile_path"`
}

// CrewDTO is a crew entry from /credits
type CrewDTO struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Job        string `json:"job"`
	Department string `json:"department"`
}

// CreditsResponse is returned by /{movie,tv}/{id}/credits
type CreditsResponse struct {
	ID   int64     `json:"id"`
	Cast []CastDTO `json:"cast"`
	Crew []CrewDTO `json:"crew"`
}
