package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mmcdole/mediadeck/internal/domain"
	sfuzzy "github.com/sahilm/fuzzy"
	"github.com/sourcegraph/conc/pool"
)

// SearchResults holds catalog matches ranked against the query. Errs keeps
// the failure of each catalog that could not be searched.
type SearchResults struct {
	Query string
	Cards []domain.Card
	Errs  map[domain.MediaKind]error
}

// Search queries movies, series and games concurrently and ranks the merged
// results by how well their titles match query
func (s *CatalogService) Search(ctx context.Context, query string) SearchResults {
	res := SearchResults{Query: query, Errs: make(map[domain.MediaKind]error)}
	query = strings.TrimSpace(query)
	if query == "" {
		return res
	}

	type found struct {
		kind  domain.MediaKind
		cards []domain.Card
		err   error
	}

	p := pool.NewWithResults[found]()
	p.Go(func() found {
		page, err := s.SearchMovies(ctx, query, 1)
		return found{domain.KindMovie, domain.PageCards(page), err}
	})
	p.Go(func() found {
		page, err := s.SearchSeries(ctx, query, 1)
		return found{domain.KindSeries, domain.PageCards(page), err}
	})
	p.Go(func() found {
		page, err := s.SearchGames(ctx, query, 1)
		return found{domain.KindGame, domain.PageCards(page), err}
	})

	for _, f := range p.Wait() {
		if f.err != nil {
			res.Errs[f.kind] = f.err
			continue
		}
		res.Cards = append(res.Cards, f.cards...)
	}
	res.Cards = RankCards(query, res.Cards)
	return res
}

// Err returns the combined catalog errors, or nil when every catalog answered
func (r SearchResults) Err() error {
	var errs []error
	for _, kind := range domain.Kinds {
		if err, ok := r.Errs[kind]; ok {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RankCards orders cards by title match against query (best first). The sort
// is stable so provider order breaks ties.
func RankCards(query string, cards []domain.Card) []domain.Card {
	query = strings.ToLower(query)
	scores := make(map[domain.MediaRef]int, len(cards))
	for _, c := range cards {
		scores[c.Ref] = matchScore(strings.ToLower(c.Title), query)
	}
	ranked := append([]domain.Card(nil), cards...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return scores[ranked[i].Ref] < scores[ranked[j].Ref]
	})
	return ranked
}

// matchScore ranks a title against query. Lower is better.
func matchScore(title, query string) int {
	switch {
	case title == query:
		return 0
	case strings.HasPrefix(title, query):
		return 10
	case strings.Contains(title, query):
		return 50
	case fuzzy.MatchFold(query, title):
		return 75 + fuzzy.RankMatchFold(query, title)
	default:
		return 100 + fuzzy.LevenshteinDistance(query, title)
	}
}

// cardIndex implements sahilm/fuzzy.Source over card titles
type cardIndex struct {
	lowerTitles []string
}

func (idx cardIndex) String(i int) string { return idx.lowerTitles[i] }
func (idx cardIndex) Len() int            { return len(idx.lowerTitles) }

// FilterMatch is a card that matched a local filter
type FilterMatch struct {
	Index          int // position in the filtered slice
	MatchedIndexes []int
}

// FilterCards fuzzy-filters already loaded cards (a watchlist or collection)
// by title, best match first. An empty query matches every card in order.
func FilterCards(query string, cards []domain.Card) []FilterMatch {
	query = strings.TrimSpace(query)
	if query == "" {
		out := make([]FilterMatch, len(cards))
		for i := range cards {
			out[i] = FilterMatch{Index: i}
		}
		return out
	}

	idx := cardIndex{lowerTitles: make([]string, len(cards))}
	for i, c := range cards {
		idx.lowerTitles[i] = strings.ToLower(c.Title)
	}
	matches := sfuzzy.FindFrom(strings.ToLower(query), idx)

	out := make([]FilterMatch, len(matches))
	for i, m := range matches {
		out[i] = FilterMatch{Index: m.Index, MatchedIndexes: m.MatchedIndexes}
	}
	return out
}
