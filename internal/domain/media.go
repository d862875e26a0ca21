package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// MediaKind distinguishes the catalog an item comes from
type MediaKind string

const (
	KindMovie  MediaKind = "movie"
	KindSeries MediaKind = "series"
	KindGame   MediaKind = "game"
)

// PlaceholderImage is used wherever a provider has no artwork for an item
const PlaceholderImage = "https://via.placeholder.com/500x750?text=No+Image"

// Kinds lists every supported media kind in display order
var Kinds = []MediaKind{KindMovie, KindSeries, KindGame}

// ParseMediaKind converts user or wire input into a MediaKind.
// "tv" is accepted as an alias for series.
func ParseMediaKind(s string) (MediaKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "movie", "movies":
		return KindMovie, nil
	case "series", "tv", "show":
		return KindSeries, nil
	case "game", "games":
		return KindGame, nil
	default:
		return "", fmt.Errorf("%w: unknown media kind %q", ErrInvalidInput, s)
	}
}

// Valid reports whether k is one of the known kinds
func (k MediaKind) Valid() bool {
	return k == KindMovie || k == KindSeries || k == KindGame
}

// Label returns a human-readable name for the kind
func (k MediaKind) Label() string {
	switch k {
	case KindMovie:
		return "Movie"
	case KindSeries:
		return "Series"
	case KindGame:
		return "Game"
	default:
		return "Unknown"
	}
}

// MediaRef identifies a catalog item. Numeric ids are only unique within a kind,
// so the kind always travels with the id.
type MediaRef struct {
	Kind MediaKind `json:"item_type" validate:"oneof=movie series game"`
	ID   int64     `json:"item_id" validate:"gt=0"`
}

// Key returns a stable "kind:id" identifier
func (r MediaRef) Key() string {
	return string(r.Kind) + ":" + strconv.FormatInt(r.ID, 10)
}

func (r MediaRef) String() string { return r.Key() }

// ParseMediaRef parses the "kind:id" form produced by Key
func ParseMediaRef(s string) (MediaRef, error) {
	kindPart, idPart, ok := strings.Cut(s, ":")
	if !ok {
		return MediaRef{}, fmt.Errorf("%w: media ref %q must look like kind:id", ErrInvalidInput, s)
	}
	kind, err := ParseMediaKind(kindPart)
	if err != nil {
		return MediaRef{}, err
	}
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return MediaRef{}, fmt.Errorf("%w: media id %q is not numeric", ErrInvalidInput, idPart)
	}
	return MediaRef{Kind: kind, ID: id}, nil
}

// Card is the display record shared by every media kind. Views render cards
// without caring which provider produced them.
type Card struct {
	Ref         MediaRef
	Title       string
	PosterURL   string
	Rating      float64
	RatingScale float64 // 10 for TMDB, 5 for RAWG
	Released    string  // YYYY-MM-DD, may be empty
	Overview    string
}

// Year returns the release year or an empty string
func (c Card) Year() string {
	if len(c.Released) >= 4 {
		return c.Released[:4]
	}
	return ""
}

// FormattedRating renders the rating against its own scale, e.g. "8.4/10"
func (c Card) FormattedRating() string {
	if c.Rating <= 0 {
		return "—"
	}
	return fmt.Sprintf("%.1f/%g", c.Rating, c.RatingScale)
}

// CatalogItem is implemented by Movie, Series and Game
type CatalogItem interface {
	Ref() MediaRef
	Card() Card
}

// Movie is a TMDB film
type Movie struct {
	ID          int64
	Title       string
	Overview    string
	PosterURL   string
	BackdropURL string
	VoteAverage float64
	VoteCount   int
	ReleaseDate string
	GenreIDs    []int
}

func (m Movie) Ref() MediaRef { return MediaRef{Kind: KindMovie, ID: m.ID} }

func (m Movie) Card() Card {
	return Card{
		Ref:         m.Ref(),
		Title:       m.Title,
		PosterURL:   posterOrPlaceholder(m.PosterURL),
		Rating:      m.VoteAverage,
		RatingScale: 10,
		Released:    m.ReleaseDate,
		Overview:    m.Overview,
	}
}

// Series is a TMDB TV show
type Series struct {
	ID           int64
	Name         string
	Overview     string
	PosterURL    string
	BackdropURL  string
	VoteAverage  float64
	VoteCount    int
	FirstAirDate string
	GenreIDs     []int
}

func (s Series) Ref() MediaRef { return MediaRef{Kind: KindSeries, ID: s.ID} }

func (s Series) Card() Card {
	return Card{
		Ref:         s.Ref(),
		Title:       s.Name,
		PosterURL:   posterOrPlaceholder(s.PosterURL),
		Rating:      s.VoteAverage,
		RatingScale: 10,
		Released:    s.FirstAirDate,
		Overview:    s.Overview,
	}
}

// Game is a RAWG game
type Game struct {
	ID           int64
	Name         string
	CoverURL     string
	Rating       float64 // 0-5
	RatingsCount int
	Released     string
	Metacritic   int
	Playtime     int // hours
	Platforms    []Platform
	Genres       []Genre
	Screenshots  []string
}

func (g Game) Ref() MediaRef { return MediaRef{Kind: KindGame, ID: g.ID} }

func (g Game) Card() Card {
	return Card{
		Ref:         g.Ref(),
		Title:       g.Name,
		PosterURL:   posterOrPlaceholder(g.CoverURL),
		Rating:      g.Rating,
		RatingScale: 5,
		Released:    g.Released,
	}
}

func posterOrPlaceholder(url string) string {
	if url == "" {
		return PlaceholderImage
	}
	return url
}

// Cards projects a slice of variants onto display records
func Cards[T CatalogItem](items []T) []Card {
	cards := make([]Card, 0, len(items))
	for _, it := range items {
		cards = append(cards, it.Card())
	}
	return cards
}

// Genre is a provider genre
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

// Platform is a RAWG platform
type Platform struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}
