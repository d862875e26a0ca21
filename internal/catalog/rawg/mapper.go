package rawg

import "github.com/mmcdole/mediadeck/internal/domain"

func mapGame(g GameDTO) domain.Game {
	game := domain.Game{
		ID:           g.ID,
		Name:         g.Name,
		CoverURL:     g.BackgroundImage,
		Rating:       g.Rating,
		RatingsCount: g.RatingsCount,
		Released:     g.Released,
		Metacritic:   g.Metacritic,
		Playtime:     g.Playtime,
		Platforms:    make([]domain.Platform, 0, len(g.Platforms)),
		Genres:       mapGenres(g.Genres),
	}
	if game.CoverURL == "" {
		game.CoverURL = domain.PlaceholderImage
	}
	for _, p := range g.Platforms {
		game.Platforms = append(game.Platforms, domain.Platform{
			ID:   p.Platform.ID,
			Name: p.Platform.Name,
			Slug: p.Platform.Slug,
		})
	}
	for _, s := range g.ShortScreenshots {
		game.Screenshots = append(game.Screenshots, s.Image)
	}
	return game
}

// mapPage converts the RAWG envelope. RAWG reports only a count, so the
// page number is the one requested and the page total is derived.
func mapPage(resp *ListResponse, page int) *domain.Page[domain.Game] {
	results := make([]domain.Game, 0, len(resp.Results))
	for _, g := range resp.Results {
		results = append(results, mapGame(g))
	}
	totalPages := (resp.Count + PageSize - 1) / PageSize
	if totalPages < 1 {
		totalPages = 1
	}
	return &domain.Page[domain.Game]{
		Page:         page,
		Results:      results,
		TotalPages:   totalPages,
		TotalResults: resp.Count,
	}
}

func mapDetails(resp *GameDetailsResponse) *domain.GameDetails {
	details := &domain.GameDetails{
		Game:        mapGame(resp.GameDTO),
		Description: resp.DescriptionRaw,
		Website:     resp.Website,
	}
	for _, d := range resp.Developers {
		details.Developers = append(details.Developers, d.Name)
	}
	return details
}

func mapGenres(genres []GenreDTO) []domain.Genre {
	out := make([]domain.Genre, 0, len(genres))
	for _, g := range genres {
		out = append(out, domain.Genre{ID: g.ID, Name: g.Name, Slug: g.Slug})
	}
	return out
}
