package service

import (
	"context"
	"log/slog"

	"github.com/mmcdole/mediadeck/internal/domain"
	"github.com/mmcdole/mediadeck/internal/metrics"
	"github.com/mmcdole/mediadeck/internal/persistence"
	"github.com/mmcdole/mediadeck/internal/store"
)

// reviewConflict is the unique key reviews upsert on
var reviewConflict = []string{"user_id", "item_type", "item_id"}

// SubmitReview is the input of ReviewService.Submit
type SubmitReview struct {
	Ref     domain.MediaRef
	Rating  int    `validate:"min=1,max=10"`
	Comment string `validate:"max=2000"`
}

type reviewRow struct {
	UserID     string           `json:"user_id"`
	Kind       domain.MediaKind `json:"item_type"`
	ExternalID int64            `json:"item_id"`
	Rating     int              `json:"rating"`
	Comment    string           `json:"comment"`
}

// ReviewService manages the owner's reviews
type ReviewService struct {
	db       *persistence.Client
	identity domain.Identity
	queries  *Queries
	locks    keyLock
	logger   *slog.Logger
}

// NewReviewService creates a new review service
func NewReviewService(db *persistence.Client, identity domain.Identity, queries *Queries, logger *slog.Logger) *ReviewService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReviewService{db: db, identity: identity, queries: queries, logger: logger}
}

// MyReview returns the owner's review of ref, or nil when there is none (cached)
func (s *ReviewService) MyReview(ctx context.Context, ref domain.MediaRef) (*domain.Review, error) {
	user, err := s.identity.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	return cached(ctx, s.queries, store.BucketUser, ReviewItemKey(user.ID, ref), func(ctx context.Context) (*domain.Review, error) {
		var review domain.Review
		found, err := s.db.From(domain.TableReviews).
			Eq("user_id", user.ID).
			Eq("item_type", ref.Kind).
			Eq("item_id", ref.ID).
			MaybeSingle(ctx, &review)
		if err != nil {
			s.logger.Error("failed to fetch review", "error", err, "ref", ref)
			return nil, err
		}
		if !found {
			return nil, nil
		}
		return &review, nil
	})
}

// List returns every review by the owner, most recently updated first (cached)
func (s *ReviewService) List(ctx context.Context) ([]domain.Review, error) {
	user, err := s.identity.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	return cached(ctx, s.queries, store.BucketUser, ReviewsListKey(user.ID), func(ctx context.Context) ([]domain.Review, error) {
		var reviews []domain.Review
		err := s.db.From(domain.TableReviews).
			Eq("user_id", user.ID).
			Order("updated_at", false).
			Select(ctx, &reviews)
		if err != nil {
			s.logger.Error("failed to list reviews", "error", err)
			return nil, err
		}
		return reviews, nil
	})
}

// Submit creates the owner's review of an item or overwrites the existing one
func (s *ReviewService) Submit(ctx context.Context, in SubmitReview) error {
	if err := validateInput(in); err != nil {
		return err
	}
	user, err := s.identity.CurrentUser(ctx)
	if err != nil {
		return err
	}
	unlock := s.locks.Lock(ReviewItemKey(user.ID, in.Ref))
	defer unlock()

	row := reviewRow{
		UserID:     user.ID,
		Kind:       in.Ref.Kind,
		ExternalID: in.Ref.ID,
		Rating:     in.Rating,
		Comment:    in.Comment,
	}
	err = s.db.From(domain.TableReviews).Upsert(ctx, row, reviewConflict, nil)
	s.queries.Invalidate(store.BucketUser, ReviewItemKey(user.ID, in.Ref), ReviewsListKey(user.ID))
	metrics.RecordMutation("review_submit", outcome(err))
	if err != nil {
		s.logger.Error("failed to submit review", "error", err, "ref", in.Ref)
		return err
	}
	s.logger.Info("submitted review", "ref", in.Ref, "rating", in.Rating)
	return nil
}
