package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/neurostream/internal/domain"
	"github.com/mmcdole/neurostream/internal/testutil"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	return NewClient(Config{
		BaseURL:          baseURL,
		Timeout:          2 * time.Second,
		UserAgent:        "NeuroStream/test",
		FailureThreshold: 2,
		BreakerTimeout:   time.Minute,
	}, nil)
}

func TestRecommendSendsParamsAndHeaders(t *testing.T) {
	backend := testutil.NewBackend()
	defer backend.Close()
	backend.SetPage("movies", 2, `[{"id":"603","title":"The Matrix","year":"1999","poster":"p.jpg","overview":"o","vote_average":8.2}]`)

	c := newTestClient(t, backend.URL())
	items, err := c.Recommend(context.Background(), domain.RecommendParams{
		Type: domain.CategoryMovies, Mode: domain.ModeSearch, Query: "space opera", Page: 2,
	})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	got := items[0]
	if got.ID != "603" || got.Title != "The Matrix" || got.Year != 1999 || got.VoteAverage != 8.2 {
		t.Fatalf("unexpected item: %+v", got)
	}

	reqs := backend.Requests()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 request, got %d", len(reqs))
	}
	body := reqs[0].Recommend
	if body == nil || body.Type != "movies" || body.Mode != "search" || body.Query != "space opera" || body.Page != 2 {
		t.Fatalf("unexpected body: %+v", body)
	}
	if reqs[0].RequestID == "" {
		t.Fatalf("expected X-Request-ID header")
	}
	if reqs[0].UserAgent != "NeuroStream/test" {
		t.Fatalf("unexpected User-Agent %q", reqs[0].UserAgent)
	}
}

func TestRecommendDecodesLenientFields(t *testing.T) {
	backend := testutil.NewBackend()
	defer backend.Close()
	backend.SetPage("games", 1, `[
		{"id":42,"title":"Portal","year":2007,"vote_average":"9.1"},
		{"id":"","tmdb_id":"77","title":"Fallback","year":null},
		{"id":7,"title":"Odd year","year":"2011-11-11"}
	]`)

	c := newTestClient(t, backend.URL())
	items, err := c.Recommend(context.Background(), domain.RecommendParams{Type: domain.CategoryGames, Mode: domain.ModeRandom, Page: 1})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].ID != "42" || items[0].Year != 2007 || items[0].VoteAverage != 9.1 {
		t.Fatalf("unexpected first item: %+v", items[0])
	}
	if items[1].ID != "77" || items[1].Year != 0 {
		t.Fatalf("expected tmdb_id fallback, got %+v", items[1])
	}
	if items[2].Year != 2011 {
		t.Fatalf("expected year from date prefix, got %d", items[2].Year)
	}
}

func TestRecommendEmptyResults(t *testing.T) {
	for _, body := range []string{`[]`, `null`} {
		t.Run(body, func(t *testing.T) {
			backend := testutil.NewBackend()
			defer backend.Close()
			backend.SetPage("movies", 1, body)

			c := newTestClient(t, backend.URL())
			items, err := c.Recommend(context.Background(), domain.RecommendParams{Type: domain.CategoryMovies, Mode: domain.ModeSearch, Query: "x", Page: 1})
			if err != nil {
				t.Fatalf("Recommend: %v", err)
			}
			if len(items) != 0 {
				t.Fatalf("expected no items, got %d", len(items))
			}
		})
	}
}

func TestRecommendErrors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"server error", http.StatusInternalServerError, `{"error":"boom"}`, domain.ErrUnexpectedStatus},
		{"error object with 200", http.StatusOK, `{"error":"index not loaded"}`, domain.ErrMalformedResponse},
		{"garbage", http.StatusOK, `<html>`, domain.ErrMalformedResponse},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			backend := testutil.NewBackend()
			defer backend.Close()
			backend.RecommendHandler = func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}

			c := newTestClient(t, backend.URL())
			_, err := c.Recommend(context.Background(), domain.RecommendParams{Type: domain.CategoryMovies, Mode: domain.ModeSearch, Query: "x", Page: 1})
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestRecommendCancelledContext(t *testing.T) {
	backend := testutil.NewBackend()
	defer backend.Close()
	release := make(chan struct{})
	backend.RecommendHandler = func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}
	defer close(release)

	c := newTestClient(t, backend.URL())
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := c.Recommend(ctx, domain.RecommendParams{Type: domain.CategoryMovies, Mode: domain.ModeRandom, Page: 1})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if c.BreakerState() != "closed" {
		t.Fatalf("cancellation must not trip the breaker, state=%s", c.BreakerState())
	}
}

func TestBreakerOpensAfterTransportFailures(t *testing.T) {
	backend := testutil.NewBackend()
	url := backend.URL()
	backend.Close()

	c := newTestClient(t, url)
	params := domain.RecommendParams{Type: domain.CategoryMovies, Mode: domain.ModeRandom, Page: 1}
	for i := 0; i < 2; i++ {
		if _, err := c.Recommend(context.Background(), params); !errors.Is(err, domain.ErrServiceUnavailable) {
			t.Fatalf("attempt %d: expected ErrServiceUnavailable, got %v", i, err)
		}
	}
	if c.BreakerState() != "open" {
		t.Fatalf("expected open breaker, got %s", c.BreakerState())
	}
	_, err := c.Recommend(context.Background(), params)
	if !errors.Is(err, domain.ErrServiceUnavailable) || !strings.Contains(err.Error(), "open") {
		t.Fatalf("expected fail-fast error, got %v", err)
	}
}

func TestGetDetail(t *testing.T) {
	backend := testutil.NewBackend()
	defer backend.Close()
	backend.Details["movies/603"] = `{"title":"The Matrix","tagline":"Welcome","year":"1999","runtime":136,
		"budget":63000000,"revenue":463517383,"vote_average":8.2,"vote_count":25000,
		"cast":["Keanu Reeves"],"director":["Lana Wachowski"],"genres":["Action"],"type":"movie"}`
	backend.Details["games/42"] = `{"title":"Portal","year":2007,"developer":"Valve","publisher":"Valve",
		"genres":["Puzzle"," Platformer"],"vote_average":"9.1","type":"game"}`
	backend.Details["games/13"] = `{"error":"Game not found"}`

	c := newTestClient(t, backend.URL())

	movie, err := c.GetDetail(context.Background(), domain.CategoryMovies, "603")
	if err != nil {
		t.Fatalf("movie detail: %v", err)
	}
	if movie.Year != 1999 || movie.Runtime != 136 || movie.Budget != 63000000 || movie.FormattedRuntime() != "2h 16m" {
		t.Fatalf("unexpected movie detail: %+v", movie)
	}

	game, err := c.GetDetail(context.Background(), domain.CategoryGames, "42")
	if err != nil {
		t.Fatalf("game detail: %v", err)
	}
	if game.Developer != "Valve" || len(game.Genres) != 2 || game.Genres[1] != "Platformer" {
		t.Fatalf("unexpected game detail: %+v", game)
	}

	if _, err := c.GetDetail(context.Background(), domain.CategoryGames, "13"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for error body, got %v", err)
	}
	if _, err := c.GetDetail(context.Background(), domain.CategoryGames, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for 404, got %v", err)
	}
}

func TestFindTrailer(t *testing.T) {
	backend := testutil.NewBackend()
	defer backend.Close()
	backend.Trailers["Blade Runner 2049"] = "gCcx85zbxz4"

	c := newTestClient(t, backend.URL())

	tr, err := c.FindTrailer(context.Background(), domain.CategoryMovies, "Blade Runner 2049", "2017")
	if err != nil {
		t.Fatalf("FindTrailer: %v", err)
	}
	if !tr.Found() || tr.WatchURL() != "https://www.youtube.com/watch?v=gCcx85zbxz4" {
		t.Fatalf("unexpected trailer: %+v", tr)
	}

	miss, err := c.FindTrailer(context.Background(), domain.CategoryGames, "Nothing Here", "")
	if err != nil {
		t.Fatalf("missing trailer should not be an error: %v", err)
	}
	if miss.Found() {
		t.Fatalf("expected no trailer, got %+v", miss)
	}

	reqs := backend.Requests()
	last := reqs[len(reqs)-1]
	if !strings.Contains(last.Query, "type=game") {
		t.Fatalf("expected singular game type, got %q", last.Query)
	}
}
