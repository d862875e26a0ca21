package domain

import "time"

// Table names in the persistence backend
const (
	TableWatchlist       = "watchlist"
	TableCollections     = "collections"
	TableCollectionItems = "collection_items"
	TableReviews         = "reviews"
)

// WatchlistEntry is a saved intent-to-consume marker.
// Unique on (UserID, Kind, ExternalID); never updated in place.
type WatchlistEntry struct {
	ID         string    `json:"id,omitempty"`
	UserID     string    `json:"user_id"`
	Kind       MediaKind `json:"item_type"`
	ExternalID int64     `json:"item_id"`
	Title      string    `json:"title"`
	Poster     string    `json:"poster,omitempty"`
	Rating     float64   `json:"rating"`
	AddedAt    time.Time `json:"created_at,omitempty"`
}

// Ref returns the catalog identity of the entry
func (w WatchlistEntry) Ref() MediaRef { return MediaRef{Kind: w.Kind, ID: w.ExternalID} }

// Collection is a user-defined named grouping of media items
type Collection struct {
	ID          string    `json:"id,omitempty"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	ItemCount   int       `json:"item_count"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// CollectionItem is a membership record of one media item in a collection.
// Unique on (CollectionID, Kind, ExternalID).
type CollectionItem struct {
	ID           string    `json:"id,omitempty"`
	CollectionID string    `json:"collection_id"`
	Kind         MediaKind `json:"item_type"`
	ExternalID   int64     `json:"item_id"`
	Title        string    `json:"title"`
	Poster       string    `json:"poster,omitempty"`
	AddedAt      time.Time `json:"added_at,omitempty"`
}

// Ref returns the catalog identity of the item
func (c CollectionItem) Ref() MediaRef { return MediaRef{Kind: c.Kind, ID: c.ExternalID} }

// Review is a user's rating and optional comment for one item.
// At most one per (UserID, Kind, ExternalID).
type Review struct {
	ID         string    `json:"id,omitempty"`
	UserID     string    `json:"user_id"`
	Kind       MediaKind `json:"item_type"`
	ExternalID int64     `json:"item_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
}

// Ref returns the catalog identity of the reviewed item
func (r Review) Ref() MediaRef { return MediaRef{Kind: r.Kind, ID: r.ExternalID} }

// User is the authenticated owner of watchlist, collections and reviews
type User struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// Session is an authenticated session with the persistence backend
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         User      `json:"user"`
}

// Expired reports whether the access token is past its expiry
func (s *Session) Expired(now time.Time) bool {
	if s == nil {
		return true
	}
	if s.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(s.ExpiresAt)
}
