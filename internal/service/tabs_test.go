package service

import (
	"testing"

	"github.com/mmcdole/neurostream/internal/domain"
)

func TestTabStoreRestoreDefault(t *testing.T) {
	s := NewTabStore()
	got := s.Restore(domain.CategoryGames)
	if len(got.Data) != 0 || got.Page != 1 || !got.HasMore || got.Query != "" {
		t.Fatalf("unexpected default state: %+v", got)
	}
}

func TestTabStoreRoundTrip(t *testing.T) {
	s := NewTabStore()
	movies := TabState{Data: makeItems("m", 3), Page: 4, HasMore: false, Query: "noir"}
	games := TabState{Data: makeItems("g", 1), Page: 2, HasMore: true, Query: ""}

	s.Save(domain.CategoryMovies, movies)
	s.Save(domain.CategoryGames, games)

	for cat, want := range map[domain.Category]TabState{domain.CategoryMovies: movies, domain.CategoryGames: games} {
		got := s.Restore(cat)
		if got.Page != want.Page || got.HasMore != want.HasMore || got.Query != want.Query || len(got.Data) != len(want.Data) {
			t.Fatalf("%s: restored %+v, want %+v", cat, got, want)
		}
	}

	// A later save replaces the earlier one
	s.Save(domain.CategoryMovies, DefaultTabState())
	if got := s.Restore(domain.CategoryMovies); len(got.Data) != 0 || got.Query != "" {
		t.Fatalf("expected overwritten snapshot, got %+v", got)
	}
}

func TestTabStoreSnapshotIsolatedFromAppend(t *testing.T) {
	s := NewTabStore()
	live := make([]domain.Item, 0, 10)
	live = append(live, makeItems("a", 2)...)
	s.Save(domain.CategoryMovies, TabState{Data: live, Page: 1, HasMore: true})

	// Keep appending to the live slice; the snapshot must not grow or change
	live = append(live, domain.Item{ID: "intruder"})
	_ = live

	got := s.Restore(domain.CategoryMovies)
	if len(got.Data) != 2 {
		t.Fatalf("snapshot length changed: %d", len(got.Data))
	}
	again := append(got.Data, domain.Item{ID: "x"})
	if s.Restore(domain.CategoryMovies).Data[1].ID == "x" || len(again) != 3 {
		t.Fatalf("appending to a restored slice leaked into the store")
	}
}
