package tmdb

import (
	"github.com/mmcdole/mediadeck/internal/domain"
)

// Image sizes supported by the TMDB image CDN
const (
	SizeSmall    = "w200"
	SizeMedium   = "w500"
	SizeOriginal = "original"
)

// DefaultImageBase is the TMDB image CDN root
const DefaultImageBase = "https://image.tmdb.org/t/p"

// ImageURL builds an absolute image URL. An empty path yields the placeholder.
func ImageURL(base, path, size string) string {
	if path == "" {
		return domain.PlaceholderImage
	}
	if base == "" {
		base = DefaultImageBase
	}
	switch size {
	case SizeSmall, SizeMedium, SizeOriginal:
	default:
		size = SizeMedium
	}
	return base + "/" + size + path
}

// mapper converts TMDB DTOs to domain types
type mapper struct {
	imageBase string
}

func (m mapper) movie(r Result) domain.Movie {
	return domain.Movie{
		ID:          r.ID,
		Title:       r.Title,
		Overview:    r.Overview,
		PosterURL:   ImageURL(m.imageBase, r.PosterPath, SizeMedium),
		BackdropURL: ImageURL(m.imageBase, r.BackdropPath, SizeOriginal),
		VoteAverage: r.VoteAverage,
		VoteCount:   r.VoteCount,
		ReleaseDate: r.ReleaseDate,
		GenreIDs:    r.GenreIDs,
	}
}

func (m mapper) series(r Result) domain.Series {
	return domain.Series{
		ID:           r.ID,
		Name:         r.Name,
		Overview:     r.Overview,
		PosterURL:    ImageURL(m.imageBase, r.PosterPath, SizeMedium),
		BackdropURL:  ImageURL(m.imageBase, r.BackdropPath, SizeOriginal),
		VoteAverage:  r.VoteAverage,
		VoteCount:    r.VoteCount,
		FirstAirDate: r.FirstAirDate,
		GenreIDs:     r.GenreIDs,
	}
}

func (m mapper) moviePage(resp *ListResponse) *domain.Page[domain.Movie] {
	results := make([]domain.Movie, 0, len(resp.Results))
	for _, r := range resp.Results {
		results = append(results, m.movie(r))
	}
	return &domain.Page[domain.Movie]{
		Page:         resp.Page,
		Results:      results,
		TotalPages:   resp.TotalPages,
		TotalResults: resp.TotalResults,
	}
}

func (m mapper) seriesPage(resp *ListResponse) *domain.Page[domain.Series] {
	results := make([]domain.Series, 0, len(resp.Results))
	for _, r := range resp.Results {
		results = append(results, m.series(r))
	}
	return &domain.Page[domain.Series]{
		Page:         resp.Page,
		Results:      results,
		TotalPages:   resp.TotalPages,
		TotalResults: resp.TotalResults,
	}
}

// mixedPage maps a trending page. People are dropped; entries without a
// media_type are classified by which title field is present.
func (m mapper) mixedPage(resp *ListResponse) *domain.Page[domain.CatalogItem] {
	results := make([]domain.CatalogItem, 0, len(resp.Results))
	for _, r := range resp.Results {
		switch {
		case r.MediaType == "movie":
			results = append(results, m.movie(r))
		case r.MediaType == "tv":
			results = append(results, m.series(r))
		case r.MediaType == "" && r.Title != "":
			results = append(results, m.movie(r))
		case r.MediaType == "" && r.Name != "":
			results = append(results, m.series(r))
		}
	}
	return &domain.Page[domain.CatalogItem]{
		Page:         resp.Page,
		Results:      results,
		TotalPages:   resp.TotalPages,
		TotalResults: resp.TotalResults,
	}
}

func (m mapper) movieDetails(resp *MovieDetailsResponse) *domain.MovieDetails {
	return &domain.MovieDetails{
		Movie:   m.movie(resp.Result),
		Tagline: resp.Tagline,
		Runtime: resp.Runtime,
		Genres:  mapGenres(resp.Genres),
		Status:  resp.Status,
	}
}

func (m mapper) seriesDetails(resp *SeriesDetailsResponse) *domain.SeriesDetails {
	return &domain.SeriesDetails{
		Series:           m.series(resp.Result),
		Genres:           mapGenres(resp.Genres),
		NumberOfSeasons:  resp.NumberOfSeasons,
		NumberOfEpisodes: resp.NumberOfEpisodes,
		Status:           resp.Status,
	}
}

func (m mapper) credits(resp *CreditsResponse) *domain.Credits {
	credits := &domain.Credits{
		ID:   resp.ID,
		Cast: make([]domain.CastMember, 0, len(resp.Cast)),
		Crew: make([]domain.CrewMember, 0, len(resp.Crew)),
	}
	for _, c := range resp.Cast {
		photo := ""
		if c.ProfilePath != "" {
			photo = ImageURL(m.imageBase, c.ProfilePath, SizeSmall)
		}
		credits.Cast = append(credits.Cast, domain.CastMember{
			ID:        c.ID,
			Name:      c.Name,
			Character: c.Character,
			Order:     c.Order,
			PhotoURL:  photo,
		})
	}
	for _, c := range resp.Crew {
		credits.Crew = append(credits.Crew, domain.CrewMember{
			ID:         c.ID,
			Name:       c.Name,
			Job:        c.Job,
			Department: c.Department,
		})
	}
	return credits
}

func mapGenres(genres []GenreDTO) []domain.Genre {
	out := make([]domain.Genre, 0, len(genres))
	for _, g := range genres {
		out = append(out, domain.Genre{ID: g.ID, Name: g.Name})
	}
	return out
}
