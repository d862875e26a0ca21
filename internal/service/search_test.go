package service

import (
	"testing"

	"github.com/mmcdole/mediadeck/internal/domain"
)

func cards(titles ...string) []domain.Card {
	out := make([]domain.Card, len(titles))
	for i, t := range titles {
		out[i] = domain.Card{Ref: domain.MediaRef{Kind: domain.KindMovie, ID: int64(i + 1)}, Title: t}
	}
	return out
}

func TestRankCards(t *testing.T) {
	in := cards("The Matrix Reloaded", "Matrix", "Animatrix", "Inception")
	got := RankCards("matrix", in)

	want := []string{"Matrix", "The Matrix Reloaded", "Animatrix", "Inception"}
	for i, w := range want {
		if got[i].Title != w {
			t.Fatalf("rank %d = %q, want %q (all: %v)", i, got[i].Title, w, got)
		}
	}
	if in[0].Title != "The Matrix Reloaded" {
		t.Fatal("RankCards must not reorder its input")
	}
}

func TestFilterCards(t *testing.T) {
	in := cards("Breaking Bad", "The Office", "Portal 2")

	all := FilterCards("  ", in)
	if len(all) != 3 || all[2].Index != 2 {
		t.Fatalf("empty query should keep every card in order, got %+v", all)
	}

	got := FilterCards("brkbad", in)
	if len(got) != 1 || got[0].Index != 0 || len(got[0].MatchedIndexes) != 6 {
		t.Fatalf("unexpected matches %+v", got)
	}

	if got := FilterCards("zzz", in); len(got) != 0 {
		t.Fatalf("expected no matches, got %+v", got)
	}
}
