package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/mediadeck/internal/adapter"
	"github.com/mmcdole/mediadeck/internal/domain"
	"github.com/mmcdole/mediadeck/internal/service"
	"github.com/mmcdole/mediadeck/internal/tui/components"
)

// Timeouts for async operations
const (
	loadTimeout     = 30 * time.Second
	mutationTimeout = 15 * time.Second
)

// Command factories for async operations

// LoadDashboardCmd loads the three dashboard sections
func LoadDashboardCmd(svc *service.CatalogService, gen int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		return DashboardLoadedMsg{Gen: gen, Dashboard: svc.Dashboard(ctx)}
	}
}

// LoadCardsCmd loads one page of a catalog list
func LoadCardsCmd(svc *service.CatalogService, gen int, list service.List, page int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		p, err := svc.Cards(ctx, list, page)
		if err != nil {
			return LoadFailedMsg{Gen: gen, Err: err}
		}
		return CardsLoadedMsg{Gen: gen, List: list, Page: p}
	}
}

// SearchCmd searches every catalog
func SearchCmd(svc *service.CatalogService, gen int, query string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		return SearchResultsMsg{Gen: gen, Results: svc.Search(ctx, query)}
	}
}

// LoadWatchlistCmd loads the user's watchlist
func LoadWatchlistCmd(svc *service.WatchlistService, gen int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		entries, err := svc.List(ctx)
		if err != nil {
			return LoadFailedMsg{Gen: gen, Err: err}
		}
		return WatchlistLoadedMsg{Gen: gen, Entries: entries}
	}
}

// LoadCollectionsCmd loads the user's collections
func LoadCollectionsCmd(svc *service.CollectionService, gen int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		collections, err := svc.List(ctx)
		if err != nil {
			return LoadFailedMsg{Gen: gen, Err: err}
		}
		return CollectionsLoadedMsg{Gen: gen, Collections: collections}
	}
}

// LoadCollectionItemsCmd loads the items of one collection
func LoadCollectionItemsCmd(svc *service.CollectionService, gen int, collectionID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		items, err := svc.Items(ctx, collectionID)
		if err != nil {
			return LoadFailedMsg{Gen: gen, Column: 1, Err: err}
		}
		return CollectionItemsLoadedMsg{Gen: gen, CollectionID: collectionID, Items: items}
	}
}

// LoadReviewsCmd loads the user's reviews
func LoadReviewsCmd(svc *service.ReviewService, gen int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		reviews, err := svc.List(ctx)
		if err != nil {
			return LoadFailedMsg{Gen: gen, Err: err}
		}
		return ReviewsLoadedMsg{Gen: gen, Reviews: reviews}
	}
}

// LoadItemStateCmd loads watchlist membership and the user's review of ref.
// Failures leave the inspector footer unloaded rather than raising an error.
func LoadItemStateCmd(watchlist *service.WatchlistService, reviews *service.ReviewService, ref domain.MediaRef) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		in, err := watchlist.IsInWatchlist(ctx, ref)
		if err != nil {
			return nil
		}
		review, err := reviews.MyReview(ctx, ref)
		if err != nil {
			return nil
		}
		return ItemStateMsg{Ref: ref, State: components.ItemState{InWatchlist: in, Review: review}}
	}
}

// LoadDetailsCmd loads the by-id view and credits of ref
func LoadDetailsCmd(svc *service.CatalogService, ref domain.MediaRef) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		var d components.Details
		var err error
		switch ref.Kind {
		case domain.KindMovie:
			if d.Movie, err = svc.Movie(ctx, ref.ID); err == nil {
				d.Credits, err = svc.MovieCredits(ctx, ref.ID)
			}
		case domain.KindSeries:
			if d.Series, err = svc.Series(ctx, ref.ID); err == nil {
				d.Credits, err = svc.SeriesCredits(ctx, ref.ID)
			}
		case domain.KindGame:
			d.Game, err = svc.Game(ctx, ref.ID)
		}
		if err != nil {
			return ErrMsg{Err: err, Context: "loading details"}
		}
		return DetailsLoadedMsg{Ref: ref, Details: d}
	}
}

// ToggleWatchlistCmd adds or removes row from the watchlist
func ToggleWatchlistCmd(svc *service.WatchlistService, row components.Row) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()

		in := service.AddToWatchlist{Ref: row.Ref, Title: row.Title}
		if row.Card != nil {
			in.Poster = row.Card.PosterURL
			in.Rating = watchlistRating(row.Card)
		}
		added, err := svc.Toggle(ctx, in)
		if err != nil {
			return ErrMsg{Err: err, Context: "updating watchlist"}
		}
		return WatchlistToggledMsg{Ref: row.Ref, Title: row.Title, Added: added}
	}
}

// watchlistRating stores every rating on the 0-10 scale
func watchlistRating(c *domain.Card) float64 {
	if c.RatingScale <= 0 || c.RatingScale == 10 {
		return c.Rating
	}
	return c.Rating / c.RatingScale * 10
}

// CreateCollectionCmd creates a collection, optionally filing pending into it
func CreateCollectionCmd(svc *service.CollectionService, name, description string, pending *components.Row) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()

		c, err := svc.Create(ctx, service.CreateCollection{Name: name, Description: description})
		if err != nil {
			return ErrMsg{Err: err, Context: "creating collection"}
		}
		return CollectionCreatedMsg{Collection: c, Pending: pending}
	}
}

// AddToCollectionCmd files row into a collection
func AddToCollectionCmd(svc *service.CollectionService, collectionID, collectionName string, row components.Row) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()

		in := service.AddToCollection{CollectionID: collectionID, Ref: row.Ref, Title: row.Title}
		if row.Card != nil {
			in.Poster = row.Card.PosterURL
		}
		if err := svc.AddItem(ctx, in); err != nil {
			return ErrMsg{Err: err, Context: "adding to " + collectionName}
		}
		return AddedToCollectionMsg{Collection: collectionName, Title: row.Title}
	}
}

// SubmitReviewCmd saves a rating and comment for row
func SubmitReviewCmd(svc *service.ReviewService, row components.Row, rating int, comment string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()

		in := service.SubmitReview{Ref: row.Ref, Rating: rating, Comment: comment}
		if err := svc.Submit(ctx, in); err != nil {
			return ErrMsg{Err: err, Context: "saving review"}
		}
		return ReviewSubmittedMsg{Ref: row.Ref, Title: row.Title, Rating: rating}
	}
}

// OpenInBrowserCmd opens the provider page for row
func OpenInBrowserCmd(opener *adapter.Opener, row components.Row) tea.Cmd {
	return func() tea.Msg {
		if err := opener.Open(row.Ref); err != nil {
			return ErrMsg{Err: err, Context: "opening browser"}
		}
		return OpenedMsg{Title: row.Title}
	}
}

// LoadUserCmd resolves the current user
func LoadUserCmd(svc *service.AccountService) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		user, err := svc.CurrentUser(ctx)
		return UserLoadedMsg{User: user, Err: err}
	}
}

// SignOutCmd ends the session
func SignOutCmd(svc *service.AccountService) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()

		if err := svc.SignOut(ctx); err != nil {
			return ErrMsg{Err: err, Context: "signing out"}
		}
		return SignedOutMsg{}
	}
}

// WaitForChangeCmd waits for the next realtime change notification
func WaitForChangeCmd(changes <-chan string) tea.Cmd {
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		table, ok := <-changes
		if !ok {
			return nil
		}
		return ChangeMsg{Table: table}
	}
}

// TickCmd returns a command that sends a tick after a duration
func TickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return TickMsg{}
	})
}

// ClearStatusCmd clears status message id after a duration
func ClearStatusCmd(id int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return ClearStatusMsg{ID: id}
	})
}

// friendlyError renders the errors a user can act on in plain words
func friendlyError(err error) string {
	switch {
	case errors.Is(err, domain.ErrConflict):
		return "already added"
	case errors.Is(err, domain.ErrNotAuthenticated):
		return "not signed in"
	case errors.Is(err, domain.ErrNotFound):
		return "not found"
	case errors.Is(err, domain.ErrCatalogNotConfigured):
		return "catalog API key is not configured"
	case errors.Is(err, domain.ErrCatalogUnreachable):
		return "catalog is unreachable, try again later"
	default:
		return err.Error()
	}
}
