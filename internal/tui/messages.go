package tui

import (
	"github.com/mmcdole/mediadeck/internal/domain"
	"github.com/mmcdole/mediadeck/internal/service"
	"github.com/mmcdole/mediadeck/internal/tui/components"
)

// Message types for the TUI. Load results carry the generation of the view
// that asked for them; results for a view the user already left are dropped.

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + friendlyError(e.Err)
	}
	return friendlyError(e.Err)
}

// LoadFailedMsg signals that a view's data could not be loaded
type LoadFailedMsg struct {
	Gen    int
	Column int
	Err    error
}

// DashboardLoadedMsg carries the three dashboard sections
type DashboardLoadedMsg struct {
	Gen       int
	Dashboard service.Dashboard
}

// CardsLoadedMsg carries one page of a catalog list
type CardsLoadedMsg struct {
	Gen  int
	List service.List
	Page *domain.Page[domain.Card]
}

// SearchResultsMsg carries ranked catalog search results
type SearchResultsMsg struct {
	Gen     int
	Results service.SearchResults
}

// WatchlistLoadedMsg carries the user's watchlist
type WatchlistLoadedMsg struct {
	Gen     int
	Entries []domain.WatchlistEntry
}

// CollectionsLoadedMsg carries the user's collections
type CollectionsLoadedMsg struct {
	Gen         int
	Collections []domain.Collection
}

// CollectionItemsLoadedMsg carries the items of one collection
type CollectionItemsLoadedMsg struct {
	Gen          int
	CollectionID string
	Items        []domain.CollectionItem
}

// ReviewsLoadedMsg carries the user's reviews
type ReviewsLoadedMsg struct {
	Gen     int
	Reviews []domain.Review
}

// ItemStateMsg carries watchlist membership and review for one item
type ItemStateMsg struct {
	Ref   domain.MediaRef
	State components.ItemState
}

// DetailsLoadedMsg carries the by-id view of one item
type DetailsLoadedMsg struct {
	Ref     domain.MediaRef
	Details components.Details
}

// WatchlistToggledMsg signals a completed watchlist toggle
type WatchlistToggledMsg struct {
	Ref   domain.MediaRef
	Title string
	Added bool
}

// CollectionCreatedMsg signals a new collection. Pending, if set, is the
// media row to add to it.
type CollectionCreatedMsg struct {
	Collection *domain.Collection
	Pending    *components.Row
}

// AddedToCollectionMsg signals a completed add-to-collection
type AddedToCollectionMsg struct {
	Collection string
	Title      string
}

// ReviewSubmittedMsg signals a saved review
type ReviewSubmittedMsg struct {
	Ref    domain.MediaRef
	Title  string
	Rating int
}

// OpenedMsg signals that a provider page was opened in the browser
type OpenedMsg struct {
	Title string
}

// SignedOutMsg signals that the session has ended
type SignedOutMsg struct{}

// UserLoadedMsg carries the signed-in user, if any
type UserLoadedMsg struct {
	User domain.User
	Err  error
}

// ChangeMsg signals a realtime change to the user's rows
type ChangeMsg struct {
	Table string
}

// TickMsg is a general tick message for animations
type TickMsg struct{}

// ClearStatusMsg clears the status bar message
type ClearStatusMsg struct {
	ID int
}

// StatusMsg sets a temporary status message
type StatusMsg struct {
	Message string
	IsError bool
}
