package service

import (
	"context"
	"log/slog"

	"github.com/mmcdole/mediadeck/internal/domain"
	"github.com/mmcdole/mediadeck/internal/metrics"
	"github.com/mmcdole/mediadeck/internal/persistence"
	"github.com/mmcdole/mediadeck/internal/store"
)

// AddToWatchlist is the input of WatchlistService.Add
type AddToWatchlist struct {
	Ref    domain.MediaRef
	Title  string  `validate:"required,max=500"`
	Poster string  `validate:"omitempty,url"`
	Rating float64 `validate:"gte=0,lte=10"`
}

// watchlistRow is the insert shape; id and created_at are left to the store
type watchlistRow struct {
	UserID     string           `json:"user_id"`
	Kind       domain.MediaKind `json:"item_type"`
	ExternalID int64            `json:"item_id"`
	Title      string           `json:"title"`
	Poster     string           `json:"poster,omitempty"`
	Rating     float64          `json:"rating"`
}

// WatchlistService manages the owner's watchlist
type WatchlistService struct {
	db       *persistence.Client
	identity domain.Identity
	queries  *Queries
	locks    keyLock
	logger   *slog.Logger
}

// NewWatchlistService creates a new watchlist service
func NewWatchlistService(db *persistence.Client, identity domain.Identity, queries *Queries, logger *slog.Logger) *WatchlistService {
	if logger == nil {
		logger = slog.Default()
	}
	return &WatchlistService{db: db, identity: identity, queries: queries, logger: logger}
}

// IsInWatchlist reports whether ref is on the owner's watchlist (cached)
func (s *WatchlistService) IsInWatchlist(ctx context.Context, ref domain.MediaRef) (bool, error) {
	user, err := s.identity.CurrentUser(ctx)
	if err != nil {
		return false, err
	}
	return cached(ctx, s.queries, store.BucketUser, WatchlistMemberKey(user.ID, ref), func(ctx context.Context) (bool, error) {
		return s.fetchMember(ctx, user.ID, ref)
	})
}

func (s *WatchlistService) fetchMember(ctx context.Context, owner string, ref domain.MediaRef) (bool, error) {
	var row struct {
		ID string `json:"id"`
	}
	found, err := s.db.From(domain.TableWatchlist).
		Columns("id").
		Eq("user_id", owner).
		Eq("item_type", ref.Kind).
		Eq("item_id", ref.ID).
		MaybeSingle(ctx, &row)
	if err != nil {
		s.logger.Error("failed to check watchlist", "error", err, "ref", ref)
		return false, err
	}
	return found, nil
}

// List returns the owner's watchlist, newest first (cached)
func (s *WatchlistService) List(ctx context.Context) ([]domain.WatchlistEntry, error) {
	user, err := s.identity.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	return cached(ctx, s.queries, store.BucketUser, WatchlistListKey(user.ID), func(ctx context.Context) ([]domain.WatchlistEntry, error) {
		var entries []domain.WatchlistEntry
		err := s.db.From(domain.TableWatchlist).
			Eq("user_id", user.ID).
			Order("created_at", false).
			Select(ctx, &entries)
		if err != nil {
			s.logger.Error("failed to list watchlist", "error", err)
			return nil, err
		}
		s.logger.Debug("fetched watchlist", "count", len(entries))
		return entries, nil
	})
}

// Add puts an item on the watchlist. An existing entry fails with
// domain.ErrConflict and is never duplicated.
func (s *WatchlistService) Add(ctx context.Context, in AddToWatchlist) error {
	if err := validateInput(in); err != nil {
		return err
	}
	user, err := s.identity.CurrentUser(ctx)
	if err != nil {
		return err
	}
	unlock := s.locks.Lock(WatchlistMemberKey(user.ID, in.Ref))
	defer unlock()
	return s.add(ctx, user.ID, in)
}

// Remove deletes an item from the watchlist. Removing an absent item is not an error.
func (s *WatchlistService) Remove(ctx context.Context, ref domain.MediaRef) error {
	if err := validateInput(ref); err != nil {
		return err
	}
	user, err := s.identity.CurrentUser(ctx)
	if err != nil {
		return err
	}
	unlock := s.locks.Lock(WatchlistMemberKey(user.ID, ref))
	defer unlock()
	return s.remove(ctx, user.ID, ref)
}

// Toggle removes the item when it is on the watchlist and adds it otherwise,
// reporting whether it is on the watchlist afterwards. Membership is read
// from the store, not the cache, while the item's lock is held.
func (s *WatchlistService) Toggle(ctx context.Context, in AddToWatchlist) (bool, error) {
	if err := validateInput(in); err != nil {
		return false, err
	}
	user, err := s.identity.CurrentUser(ctx)
	if err != nil {
		return false, err
	}
	unlock := s.locks.Lock(WatchlistMemberKey(user.ID, in.Ref))
	defer unlock()

	member, err := s.fetchMember(ctx, user.ID, in.Ref)
	if err != nil {
		return false, err
	}
	if member {
		return false, s.remove(ctx, user.ID, in.Ref)
	}
	return true, s.add(ctx, user.ID, in)
}

func (s *WatchlistService) add(ctx context.Context, owner string, in AddToWatchlist) error {
	row := watchlistRow{
		UserID:     owner,
		Kind:       in.Ref.Kind,
		ExternalID: in.Ref.ID,
		Title:      in.Title,
		Poster:     in.Poster,
		Rating:     in.Rating,
	}
	err := s.db.From(domain.TableWatchlist).Insert(ctx, row, nil)
	s.invalidate(owner, in.Ref)
	metrics.RecordMutation("watchlist_add", outcome(err))
	if err != nil {
		s.logger.Error("failed to add to watchlist", "error", err, "ref", in.Ref)
		return err
	}
	s.logger.Info("added to watchlist", "ref", in.Ref, "title", in.Title)
	return nil
}

func (s *WatchlistService) remove(ctx context.Context, owner string, ref domain.MediaRef) error {
	err := s.db.From(domain.TableWatchlist).
		Eq("user_id", owner).
		Eq("item_type", ref.Kind).
		Eq("item_id", ref.ID).
		Delete(ctx)
	s.invalidate(owner, ref)
	metrics.RecordMutation("watchlist_remove", outcome(err))
	if err != nil {
		s.logger.Error("failed to remove from watchlist", "error", err, "ref", ref)
		return err
	}
	s.logger.Info("removed from watchlist", "ref", ref)
	return nil
}

// invalidate runs after every store round-trip, failed or not, so the cache
// never keeps a state the store may no longer have
func (s *WatchlistService) invalidate(owner string, ref domain.MediaRef) {
	s.queries.Invalidate(store.BucketUser, WatchlistMemberKey(owner, ref), WatchlistListKey(owner))
}
