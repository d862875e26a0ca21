package service

import (
	"context"
	"errors"
	"testing"

	"github.com/mmcdole/mediadeck/internal/domain"
)

func TestReviews_SubmitTwiceKeepsOneRow(t *testing.T) {
	env := newLocalEnv(t)
	ctx := context.Background()

	review, err := env.reviews.MyReview(ctx, fightClub)
	if err != nil || review != nil {
		t.Fatalf("expected no review yet, got %+v %v", review, err)
	}

	if err := env.reviews.Submit(ctx, SubmitReview{Ref: fightClub, Rating: 7, Comment: "good"}); err != nil {
		t.Fatalf("first Submit failed: %v", err)
	}
	if err := env.reviews.Submit(ctx, SubmitReview{Ref: fightClub, Rating: 9}); err != nil {
		t.Fatalf("second Submit failed: %v", err)
	}

	review, err = env.reviews.MyReview(ctx, fightClub)
	if err != nil || review == nil || review.Rating != 9 || review.Comment != "" {
		t.Fatalf("MyReview: %+v %v", review, err)
	}

	all, err := env.reviews.List(ctx)
	if err != nil || len(all) != 1 {
		t.Fatalf("expected exactly one review row, got %+v %v", all, err)
	}
}

func TestReviews_RatingBounds(t *testing.T) {
	env := newLocalEnv(t)
	for _, rating := range []int{0, 11} {
		err := env.reviews.Submit(context.Background(), SubmitReview{Ref: fightClub, Rating: rating})
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("rating %d: expected ErrInvalidInput, got %v", rating, err)
		}
	}
}

func TestReviews_Demo(t *testing.T) {
	env := newDemoEnv(t)
	ctx := context.Background()

	if err := env.reviews.Submit(ctx, SubmitReview{Ref: fightClub, Rating: 8}); err != nil {
		t.Fatalf("Submit failed in demo mode: %v", err)
	}
	review, err := env.reviews.MyReview(ctx, fightClub)
	if err != nil || review != nil {
		t.Fatalf("MyReview in demo mode: %+v %v", review, err)
	}
}
