package store

import (
	"testing"
	"time"

	"github.com/mmcdole/neurostream/internal/domain"
)

func openStores(t *testing.T) map[string]*LookupStore {
	t.Helper()
	mem, err := NewLookupStore("", "", 0)
	if err != nil {
		t.Fatalf("memory store: %v", err)
	}
	disk, err := NewLookupStore(t.TempDir(), "http://localhost:5000", 0)
	if err != nil {
		t.Fatalf("bolt store: %v", err)
	}
	t.Cleanup(func() {
		mem.Close()
		disk.Close()
	})
	return map[string]*LookupStore{"memory": mem, "bolt": disk}
}

func TestDetailRoundTrip(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			if _, ok := s.GetDetail(domain.CategoryMovies, "603"); ok {
				t.Fatalf("expected miss on empty store")
			}
			want := &domain.Detail{Title: "The Matrix", Runtime: 136, Cast: []string{"Keanu Reeves"}}
			if err := s.SaveDetail(domain.CategoryMovies, "603", want); err != nil {
				t.Fatalf("SaveDetail: %v", err)
			}
			got, ok := s.GetDetail(domain.CategoryMovies, "603")
			if !ok || got.Title != want.Title || got.Runtime != 136 || len(got.Cast) != 1 {
				t.Fatalf("unexpected detail: %+v ok=%v", got, ok)
			}
			// Same id in the other category is a different record
			if _, ok := s.GetDetail(domain.CategoryGames, "603"); ok {
				t.Fatalf("detail leaked across categories")
			}
		})
	}
}

func TestTrailerMissIsCached(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.SaveTrailer(domain.CategoryGames, "Portal", "2007", domain.Trailer{}); err != nil {
				t.Fatalf("SaveTrailer: %v", err)
			}
			got, ok := s.GetTrailer(domain.CategoryGames, "portal", "2007")
			if !ok {
				t.Fatalf("expected cached miss to be found")
			}
			if got.Found() {
				t.Fatalf("expected empty trailer, got %+v", got)
			}
		})
	}
}

func TestTTLExpiry(t *testing.T) {
	s, err := NewLookupStore("", "", time.Hour)
	if err != nil {
		t.Fatalf("NewLookupStore: %v", err)
	}
	defer s.Close()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	if err := s.SaveTrailer(domain.CategoryMovies, "Alien", "1979", domain.Trailer{Key: "LjLamj-b0I8"}); err != nil {
		t.Fatalf("SaveTrailer: %v", err)
	}
	now = now.Add(30 * time.Minute)
	if _, ok := s.GetTrailer(domain.CategoryMovies, "Alien", "1979"); !ok {
		t.Fatalf("entry expired too early")
	}
	now = now.Add(time.Hour)
	if _, ok := s.GetTrailer(domain.CategoryMovies, "Alien", "1979"); ok {
		t.Fatalf("expected expired entry")
	}

	// Zero TTL keeps entries forever
	s.SetTTL(0)
	s.SaveTrailer(domain.CategoryMovies, "Alien", "1979", domain.Trailer{Key: "LjLamj-b0I8"})
	now = now.Add(24 * 365 * time.Hour)
	if _, ok := s.GetTrailer(domain.CategoryMovies, "Alien", "1979"); !ok {
		t.Fatalf("entry expired with TTL disabled")
	}
}

func TestInvalidateCategory(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			s.SaveDetail(domain.CategoryMovies, "1", &domain.Detail{Title: "a"})
			s.SaveDetail(domain.CategoryMovies, "2", &domain.Detail{Title: "b"})
			s.SaveTrailer(domain.CategoryMovies, "a", "", domain.Trailer{Key: "k"})
			s.SaveDetail(domain.CategoryGames, "1", &domain.Detail{Title: "g"})

			s.InvalidateCategory(domain.CategoryMovies)

			if _, ok := s.GetDetail(domain.CategoryMovies, "1"); ok {
				t.Fatalf("movie detail 1 survived invalidation")
			}
			if _, ok := s.GetDetail(domain.CategoryMovies, "2"); ok {
				t.Fatalf("movie detail 2 survived invalidation")
			}
			if _, ok := s.GetTrailer(domain.CategoryMovies, "a", ""); ok {
				t.Fatalf("movie trailer survived invalidation")
			}
			if _, ok := s.GetDetail(domain.CategoryGames, "1"); !ok {
				t.Fatalf("game detail should be untouched")
			}

			s.InvalidateAll()
			if _, ok := s.GetDetail(domain.CategoryGames, "1"); ok {
				t.Fatalf("InvalidateAll left entries behind")
			}
		})
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLookupStore(dir, "http://localhost:5000/", 0)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	s.SaveDetail(domain.CategoryGames, "42", &domain.Detail{Title: "Portal", Developer: "Valve"})
	s.Close()

	// Trailing slash and case do not change the database location
	s, err = NewLookupStore(dir, "HTTP://LOCALHOST:5000", 0)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	got, ok := s.GetDetail(domain.CategoryGames, "42")
	if !ok || got.Developer != "Valve" {
		t.Fatalf("expected persisted detail, got %+v ok=%v", got, ok)
	}
}
