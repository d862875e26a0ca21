package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmcdole/mediadeck/internal/domain"
	"github.com/mmcdole/mediadeck/internal/metrics"
	"github.com/mmcdole/mediadeck/internal/persistence"
	"github.com/mmcdole/mediadeck/internal/store"
)

// CreateCollection is the input of CollectionService.Create
type CreateCollection struct {
	Name        string `validate:"required,max=100"`
	Description string `validate:"max=500"`
}

// AddToCollection is the input of CollectionService.AddItem
type AddToCollection struct {
	CollectionID string `validate:"required"`
	Ref          domain.MediaRef
	Title        string `validate:"required,max=500"`
	Poster       string `validate:"omitempty,url"`
}

type collectionRow struct {
	UserID      string `json:"user_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ItemCount   int    `json:"item_count"`
}

type collectionItemRow struct {
	CollectionID string           `json:"collection_id"`
	Kind         domain.MediaKind `json:"item_type"`
	ExternalID   int64            `json:"item_id"`
	Title        string           `json:"title"`
	Poster       string           `json:"poster,omitempty"`
}

// CollectionService manages the owner's collections
type CollectionService struct {
	db       *persistence.Client
	identity domain.Identity
	queries  *Queries
	locks    keyLock
	logger   *slog.Logger
}

// NewCollectionService creates a new collection service
func NewCollectionService(db *persistence.Client, identity domain.Identity, queries *Queries, logger *slog.Logger) *CollectionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CollectionService{db: db, identity: identity, queries: queries, logger: logger}
}

// List returns the owner's collections, newest first (cached)
func (s *CollectionService) List(ctx context.Context) ([]domain.Collection, error) {
	user, err := s.identity.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	return cached(ctx, s.queries, store.BucketUser, CollectionsListKey(user.ID), func(ctx context.Context) ([]domain.Collection, error) {
		var collections []domain.Collection
		err := s.db.From(domain.TableCollections).
			Eq("user_id", user.ID).
			Order("created_at", false).
			Select(ctx, &collections)
		if err != nil {
			s.logger.Error("failed to list collections", "error", err)
			return nil, err
		}
		s.logger.Debug("fetched collections", "count", len(collections))
		return collections, nil
	})
}

// Items returns the items of one of the owner's collections (cached)
func (s *CollectionService) Items(ctx context.Context, collectionID string) ([]domain.CollectionItem, error) {
	user, err := s.identity.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	return cached(ctx, s.queries, store.BucketUser, CollectionItemsKey(user.ID, collectionID), func(ctx context.Context) ([]domain.CollectionItem, error) {
		var items []domain.CollectionItem
		err := s.db.From(domain.TableCollectionItems).
			Eq("collection_id", collectionID).
			Order("added_at", false).
			Select(ctx, &items)
		if err != nil {
			s.logger.Error("failed to list collection items", "error", err, "collectionID", collectionID)
			return nil, err
		}
		return items, nil
	})
}

// Create makes a new empty collection
func (s *CollectionService) Create(ctx context.Context, in CreateCollection) (*domain.Collection, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	user, err := s.identity.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	row := collectionRow{UserID: user.ID, Name: in.Name, Description: in.Description}
	var created []domain.Collection
	err = s.db.From(domain.TableCollections).Insert(ctx, row, &created)
	s.queries.Invalidate(store.BucketUser, CollectionsListKey(user.ID))
	metrics.RecordMutation("collection_create", outcome(err))
	if err != nil {
		s.logger.Error("failed to create collection", "error", err, "name", in.Name)
		return nil, err
	}

	// The demo backend returns no representation
	collection := &domain.Collection{UserID: user.ID, Name: in.Name, Description: in.Description}
	if len(created) > 0 {
		collection = &created[0]
	}
	s.logger.Info("created collection", "name", in.Name, "id", collection.ID)
	return collection, nil
}

// AddItem adds an item to one of the owner's collections. It fails with
// domain.ErrNotFound, writing nothing, when the collection is not the
// owner's, and with domain.ErrConflict when the item is already in it.
func (s *CollectionService) AddItem(ctx context.Context, in AddToCollection) error {
	if err := validateInput(in); err != nil {
		return err
	}
	user, err := s.identity.CurrentUser(ctx)
	if err != nil {
		return err
	}
	unlock := s.locks.Lock(CollectionItemsKey(user.ID, in.CollectionID))
	defer unlock()

	err = s.addItem(ctx, user.ID, in)
	s.queries.Invalidate(store.BucketUser, CollectionsListKey(user.ID), CollectionItemsKey(user.ID, in.CollectionID))
	metrics.RecordMutation("collection_add_item", outcome(err))
	if err != nil {
		s.logger.Error("failed to add to collection", "error", err, "collectionID", in.CollectionID, "ref", in.Ref)
		return err
	}
	s.logger.Info("added to collection", "collectionID", in.CollectionID, "ref", in.Ref)
	return nil
}

func (s *CollectionService) addItem(ctx context.Context, owner string, in AddToCollection) error {
	var owned struct {
		ID string `json:"id"`
	}
	found, err := s.db.From(domain.TableCollections).
		Columns("id").
		Eq("id", in.CollectionID).
		Eq("user_id", owner).
		MaybeSingle(ctx, &owned)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("collection %s: %w", in.CollectionID, domain.ErrNotFound)
	}

	row := collectionItemRow{
		CollectionID: in.CollectionID,
		Kind:         in.Ref.Kind,
		ExternalID:   in.Ref.ID,
		Title:        in.Title,
		Poster:       in.Poster,
	}
	if err := s.db.From(domain.TableCollectionItems).Insert(ctx, row, nil); err != nil {
		return err
	}
	if err := s.refreshCount(ctx, in.CollectionID); err != nil {
		s.logger.Warn("failed to refresh collection item count", "error", err, "collectionID", in.CollectionID)
	}
	return nil
}

// refreshCount recomputes the denormalized item_count from the item rows.
// The count is best effort: the item row is the source of truth.
func (s *CollectionService) refreshCount(ctx context.Context, collectionID string) error {
	n, err := s.db.From(domain.TableCollectionItems).Eq("collection_id", collectionID).Count(ctx)
	if err != nil {
		return err
	}
	return s.db.From(domain.TableCollections).
		Eq("id", collectionID).
		Update(ctx, map[string]any{"item_count": n}, nil)
}
