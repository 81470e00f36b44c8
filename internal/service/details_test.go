package service

import (
	"context"
	"errors"
	"testing"

	"github.com/mmcdole/neurostream/internal/domain"
	"github.com/mmcdole/neurostream/internal/store"
)

type fakeDetailRepo struct {
	details map[string]*domain.Detail
	calls   int
}

func (f *fakeDetailRepo) GetDetail(_ context.Context, category domain.Category, id string) (*domain.Detail, error) {
	f.calls++
	d, ok := f.details[string(category)+"/"+id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return d, nil
}

func TestDetailServiceCachesHits(t *testing.T) {
	st, _ := store.NewLookupStore("", "", 0)
	defer st.Close()
	repo := &fakeDetailRepo{details: map[string]*domain.Detail{"movies/603": {Title: "The Matrix"}}}
	svc := NewDetailService(repo, st, nil)

	for i := 0; i < 3; i++ {
		d, err := svc.Get(context.Background(), domain.CategoryMovies, "603")
		if err != nil || d.Title != "The Matrix" {
			t.Fatalf("Get %d: %+v %v", i, d, err)
		}
	}
	if repo.calls != 1 {
		t.Fatalf("expected one backend call, got %d", repo.calls)
	}
}

func TestDetailServiceDoesNotCacheMisses(t *testing.T) {
	repo := &fakeDetailRepo{details: map[string]*domain.Detail{}}
	svc := NewDetailService(repo, nil, nil)

	for i := 0; i < 2; i++ {
		if _, err := svc.Get(context.Background(), domain.CategoryGames, "13"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	}
	if repo.calls != 2 {
		t.Fatalf("misses should be retried, got %d calls", repo.calls)
	}
}
