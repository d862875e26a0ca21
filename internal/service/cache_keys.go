package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mmcdole/mediadeck/internal/domain"
)

// Cache key prefixes for user data. Every user key is scoped by owner so
// signing out can drop one owner's entries without touching the catalog.
const (
	// PrefixWatchlist is the prefix for watchlist caches (watchlist:{owner}:...)
	PrefixWatchlist = "watchlist:"

	// PrefixCollections is the prefix for collection caches (collections:{owner}:...)
	PrefixCollections = "collections:"

	// PrefixReviews is the prefix for review caches (reviews:{owner}:...)
	PrefixReviews = "reviews:"
)

// WatchlistMemberKey caches membership of one item (watchlist:{owner}:member:{kind}:{id})
func WatchlistMemberKey(owner string, ref domain.MediaRef) string {
	return PrefixWatchlist + owner + ":member:" + ref.Key()
}

// WatchlistListKey caches the owner's full watchlist
func WatchlistListKey(owner string) string {
	return PrefixWatchlist + owner + ":list"
}

// CollectionsListKey caches the owner's collections
func CollectionsListKey(owner string) string {
	return PrefixCollections + owner + ":list"
}

// CollectionItemsKey caches the items of one collection
func CollectionItemsKey(owner, collectionID string) string {
	return PrefixCollections + owner + ":items:" + collectionID
}

// ReviewItemKey caches the owner's review of one item
func ReviewItemKey(owner string, ref domain.MediaRef) string {
	return PrefixReviews + owner + ":item:" + ref.Key()
}

// ReviewsListKey caches every review by the owner
func ReviewsListKey(owner string) string {
	return PrefixReviews + owner + ":list"
}

// OwnerPrefixes returns every user-data prefix belonging to owner
func OwnerPrefixes(owner string) []string {
	return []string{
		PrefixWatchlist + owner + ":",
		PrefixCollections + owner + ":",
		PrefixReviews + owner + ":",
	}
}

// catalogKey builds a catalog cache key from its parts, e.g. tmdb:movies:popular:1
func catalogKey(parts ...any) string {
	s := make([]string, len(parts))
	for i, p := range parts {
		switch v := p.(type) {
		case string:
			s[i] = v
		case int:
			s[i] = strconv.Itoa(v)
		case int64:
			s[i] = strconv.FormatInt(v, 10)
		default:
			s[i] = fmt.Sprint(v)
		}
	}
	return strings.Join(s, ":")
}

// discoverKey encodes every filter field so distinct filters never share a key
func discoverKey(provider, kind string, f domain.DiscoverFilter) string {
	genres := make([]string, len(f.GenreIDs))
	for i, g := range f.GenreIDs {
		genres[i] = strconv.Itoa(g)
	}
	return catalogKey(provider, kind, "discover", f.PageOrDefault(),
		strings.Join(genres, ","), f.DateFrom, f.DateTo,
		strconv.FormatFloat(f.MinRating, 'f', -1, 64), f.MinVotes, f.SortBy)
}
