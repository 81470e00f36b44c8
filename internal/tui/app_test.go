package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/neurostream/internal/adapter/api"
	"github.com/mmcdole/neurostream/internal/domain"
	"github.com/mmcdole/neurostream/internal/service"
	"github.com/mmcdole/neurostream/internal/store"
	"github.com/mmcdole/neurostream/internal/testutil"
	"github.com/mmcdole/neurostream/internal/tui/components"
)

type recordingLauncher struct {
	mu     sync.Mutex
	played []string
	opened []string
}

func (l *recordingLauncher) Play(url string) (domain.Playback, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.played = append(l.played, url)
	return domain.NoPlayback{}, nil
}

func (l *recordingLauncher) OpenURL(url string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.opened = append(l.opened, url)
	return nil
}

func (l *recordingLauncher) Played() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.played...)
}

func (l *recordingLauncher) Opened() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.opened...)
}

type harness struct {
	backend  *testutil.Backend
	launcher *recordingLauncher
	model    Model
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	backend := testutil.NewBackend()
	t.Cleanup(backend.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := api.NewClient(api.Config{
		BaseURL:   backend.URL(),
		Timeout:   2 * time.Second,
		UserAgent: "NeuroStream/test",
	}, logger)
	cache, err := store.NewLookupStore("", "", 0)
	if err != nil {
		t.Fatalf("NewLookupStore: %v", err)
	}
	t.Cleanup(func() { _ = cache.Close() })

	launcher := &recordingLauncher{}
	feed := service.NewFeedController(client, service.NewRequestTracker(context.Background()), domain.CategoryMovies, logger)
	t.Cleanup(feed.Close)

	if opts.GridColumns == 0 {
		opts.GridColumns = 4
	}
	opts.Logger = logger
	m := NewModel(
		feed,
		service.NewDetailService(client, cache, logger),
		service.NewTrailerService(client, cache, launcher, 0, 0, logger),
		service.NewSuggestService(0),
		opts,
	)

	h := &harness{backend: backend, launcher: launcher, model: m}
	h.send(t, tea.WindowSizeMsg{Width: 120, Height: 60})
	return h
}

// collect runs a command and returns the messages it produced. Commands that
// do not finish quickly (status timers) are abandoned.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	select {
	case msg := <-done:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, collect(c)...)
			}
			return out
		}
		if msg == nil {
			return nil
		}
		return []tea.Msg{msg}
	case <-time.After(200 * time.Millisecond):
		return nil
	}
}

// relevant filters out timer-driven messages so pumping terminates
func relevant(msg tea.Msg) bool {
	switch msg.(type) {
	case FeedPageMsg, DetailsLoadedMsg, TrailerFoundMsg, TrailerStartedMsg, StatusMsg, ErrMsg:
		return true
	}
	return false
}

// update feeds one message and returns the resulting command without running it
func (h *harness) update(msg tea.Msg) tea.Cmd {
	next, cmd := h.model.Update(msg)
	h.model = next.(Model)
	return cmd
}

// run executes cmd and feeds every resulting message back until quiet
func (h *harness) run(t *testing.T, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for i := 0; len(queue) > 0; i++ {
		if i > 100 {
			t.Fatalf("message loop did not settle")
		}
		c := queue[0]
		queue = queue[1:]
		for _, msg := range collect(c) {
			if relevant(msg) {
				queue = append(queue, h.update(msg))
			}
		}
	}
}

// send feeds a message and runs whatever it produces
func (h *harness) send(t *testing.T, msg tea.Msg) {
	t.Helper()
	h.run(t, h.update(msg))
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func pageJSON(prefix string, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf(`{"id":"%s-%d","title":"%s %d","year":"20%02d","vote_average":7.1}`, prefix, i, prefix, i, i)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func recommendRequests(b *testutil.Backend) []testutil.RecommendBody {
	var out []testutil.RecommendBody
	for _, r := range b.Requests() {
		if r.Recommend != nil {
			out = append(out, *r.Recommend)
		}
	}
	return out
}

func (h *harness) search(t *testing.T, query string) {
	t.Helper()
	if h.model.State != StateSearching {
		h.send(t, runes("s"))
	}
	h.send(t, runes(query))
	h.send(t, tea.KeyMsg{Type: tea.KeyEnter})
}

func TestSearchScrollLoadsNextPageUntilExhausted(t *testing.T) {
	h := newHarness(t, Options{})
	h.backend.SetPage("movies", 1, pageJSON("space", 20))

	h.search(t, "space opera")
	m := h.model
	if m.State != StateBrowsing {
		t.Fatalf("state = %v, want browsing after submit", m.State)
	}
	if m.Grid.Len() != 20 || m.Feed.Page() != 1 {
		t.Fatalf("after page 1: grid=%d page=%d", m.Grid.Len(), m.Feed.Page())
	}
	if len(recommendRequests(h.backend)) != 1 {
		t.Fatalf("a full first page should not trigger a prefetch")
	}

	// 20 cards in 4 columns is 5 rows; two rows down leaves 2 rows below
	h.send(t, runes("j"))
	if n := len(recommendRequests(h.backend)); n != 1 {
		t.Fatalf("requests after first scroll = %d, want 1", n)
	}
	h.send(t, runes("j"))

	reqs := recommendRequests(h.backend)
	if len(reqs) != 2 {
		t.Fatalf("requests after reaching threshold = %d, want 2", len(reqs))
	}
	if reqs[1].Page != 2 || reqs[1].Mode != "search" || reqs[1].Query != "space opera" || reqs[1].Type != "movies" {
		t.Fatalf("unexpected page 2 request: %+v", reqs[1])
	}
	if h.model.Feed.HasMore() || h.model.Feed.Page() != 2 {
		t.Fatalf("empty page 2 should exhaust the feed (page=%d hasMore=%v)", h.model.Feed.Page(), h.model.Feed.HasMore())
	}
	if h.model.Grid.Len() != 20 {
		t.Fatalf("exhausted page must not clear the grid, got %d", h.model.Grid.Len())
	}

	h.send(t, runes("G"))
	if n := len(recommendRequests(h.backend)); n != 2 {
		t.Fatalf("exhausted feed issued another request (%d total)", n)
	}
}

func TestEmptySearchIsRejected(t *testing.T) {
	h := newHarness(t, Options{})
	h.send(t, tea.KeyMsg{Type: tea.KeyEnter})

	if len(h.backend.Requests()) != 0 {
		t.Fatalf("empty query must not reach the backend")
	}
	if h.model.State != StateSearching {
		t.Fatalf("focus should stay in the search bar")
	}
}

func TestStaleResultDroppedAfterTabSwitch(t *testing.T) {
	h := newHarness(t, Options{})
	h.backend.SetPage("movies", 1, pageJSON("noir", 5))

	h.send(t, runes("noir"))
	pending := h.update(tea.KeyMsg{Type: tea.KeyEnter})
	if pending == nil {
		t.Fatalf("expected a page request")
	}

	// Switch away and back before the request resolves
	h.send(t, tea.KeyMsg{Type: tea.KeyTab})
	if h.model.Feed.Category() != domain.CategoryGames {
		t.Fatalf("tab should switch to games")
	}
	if h.model.SearchBar.Value() != "" {
		t.Fatalf("games tab should start with an empty query, got %q", h.model.SearchBar.Value())
	}
	h.send(t, tea.KeyMsg{Type: tea.KeyShiftTab})

	h.run(t, pending)

	m := h.model
	if m.Grid.Len() != 0 || len(m.Feed.Items()) != 0 {
		t.Fatalf("stale page leaked into the restored tab: grid=%d items=%d", m.Grid.Len(), len(m.Feed.Items()))
	}
	if m.SearchBar.Value() != "noir" {
		t.Fatalf("restored query = %q, want noir", m.SearchBar.Value())
	}
	if m.Feed.Fetching() {
		t.Fatalf("switching tabs should clear the fetching flag")
	}
}

func TestTabsKeepTheirOwnResults(t *testing.T) {
	h := newHarness(t, Options{})
	h.backend.SetPage("movies", 1, pageJSON("movie", 20))
	h.backend.SetPage("games", 1, pageJSON("game", 3))

	h.search(t, "heist")
	h.send(t, runes("2"))
	if h.model.Grid.Len() != 0 {
		t.Fatalf("games tab should be empty before its first search")
	}
	if n := len(recommendRequests(h.backend)); n != 1 {
		t.Fatalf("switching tabs must not search (requests=%d)", n)
	}

	h.search(t, "puzzle")
	if h.model.Grid.Len() != 3 {
		t.Fatalf("games grid = %d, want 3", h.model.Grid.Len())
	}

	h.send(t, runes("1"))
	if h.model.Grid.Len() != 20 || h.model.SearchBar.Value() != "heist" {
		t.Fatalf("movies tab not restored: grid=%d query=%q", h.model.Grid.Len(), h.model.SearchBar.Value())
	}
}

func TestSurpriseMeUsesRandomMode(t *testing.T) {
	h := newHarness(t, Options{})
	h.backend.SetPage("movies", 1, pageJSON("rand", 2))

	h.send(t, tea.KeyMsg{Type: tea.KeyEsc})
	h.send(t, runes("S"))

	reqs := recommendRequests(h.backend)
	if len(reqs) == 0 {
		t.Fatalf("surprise me did not request a page")
	}
	if reqs[0].Mode != "random" || reqs[0].Query != "" || reqs[0].Page != 1 {
		t.Fatalf("unexpected surprise request: %+v", reqs[0])
	}
	// Two cards sit on the last row, so the continuation is requested in random mode too
	if len(reqs) < 2 || reqs[1].Mode != "random" || reqs[1].Page != 2 {
		t.Fatalf("expected a random continuation, got %+v", reqs)
	}
}

func TestRecommendErrorShowsStatus(t *testing.T) {
	h := newHarness(t, Options{})
	h.backend.RecommendHandler = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}

	h.search(t, "anything")

	m := h.model
	if !m.StatusIsErr || !strings.Contains(m.StatusMsg, "Error connecting to recommendation service") {
		t.Fatalf("status = %q (err=%v)", m.StatusMsg, m.StatusIsErr)
	}
	if !m.Feed.HasMore() || m.Feed.Fetching() {
		t.Fatalf("an error must leave hasMore set and clear fetching")
	}
}

func TestDetailsForReplacedModalIgnored(t *testing.T) {
	h := newHarness(t, Options{})
	h.backend.SetPage("movies", 1, pageJSON("heat", 2))
	h.backend.Details["movies/heat-0"] = `{"title":"Heat","tagline":"A Los Angeles crime saga"}`
	h.backend.Details["movies/heat-1"] = `{"title":"Ronin","tagline":"Trust no one"}`

	h.search(t, "crime")

	first := h.update(tea.KeyMsg{Type: tea.KeyEnter})
	if h.model.State != StateDetails || h.model.Details.Item().ID != "heat-0" {
		t.Fatalf("enter should open details for the first card")
	}
	h.send(t, tea.KeyMsg{Type: tea.KeyEsc})
	h.send(t, runes("l"))
	second := h.update(tea.KeyMsg{Type: tea.KeyEnter})

	h.run(t, first)
	if h.model.Details.Item().ID != "heat-1" || !h.model.Details.Loading() {
		t.Fatalf("details for the replaced item were applied")
	}

	h.run(t, second)
	if h.model.Details.Loading() {
		t.Fatalf("details for the shown item should apply")
	}
	if !strings.Contains(h.model.Details.View(), "Trust no one") {
		t.Fatalf("modal should show the second item's tagline")
	}
}

func TestReelAutoplayAndViewSwitch(t *testing.T) {
	h := newHarness(t, Options{View: ViewReel, Autoplay: true})
	h.backend.SetPage("movies", 1, `[{"id":"1","title":"Heat","year":"1995"},{"id":"2","title":"Ronin","year":"1998"}]`)
	h.backend.Trailers["Heat"] = "heatkey"

	h.search(t, "crime")

	played := h.launcher.Played()
	if len(played) != 1 || !strings.HasSuffix(played[0], "v=heatkey") {
		t.Fatalf("autoplay should start the first trailer, played=%v", played)
	}
	if h.model.TrailerSvc.Playing() != "heatkey" {
		t.Fatalf("trailer service should track the playing key")
	}

	h.send(t, runes("v"))
	if h.model.ViewMode != ViewGrid {
		t.Fatalf("v should switch to grid")
	}
	if h.model.TrailerSvc.Playing() != "" {
		t.Fatalf("leaving reel mode must stop playback")
	}
	if h.model.Grid.Len() != 2 {
		t.Fatalf("grid should show the already loaded items, got %d", h.model.Grid.Len())
	}
}

func TestReelScrollLoadsNextPageUntilExhausted(t *testing.T) {
	h := newHarness(t, Options{View: ViewReel})
	h.backend.SetPage("movies", 1, pageJSON("reel", 10))
	h.backend.SetPage("movies", 2, pageJSON("more", 5))

	h.search(t, "heist")
	if h.model.Reel.Len() != 10 || len(recommendRequests(h.backend)) != 1 {
		t.Fatalf("after page 1: reel=%d requests=%d", h.model.Reel.Len(), len(recommendRequests(h.backend)))
	}

	// Six steps leave three items after the one on screen
	for i := 0; i < 6; i++ {
		h.send(t, runes("j"))
	}
	if n := len(recommendRequests(h.backend)); n != 1 {
		t.Fatalf("requests before threshold = %d, want 1", n)
	}

	h.send(t, runes("j"))
	reqs := recommendRequests(h.backend)
	if len(reqs) != 2 {
		t.Fatalf("requests after reaching threshold = %d, want 2", len(reqs))
	}
	if reqs[1].Page != 2 || reqs[1].Mode != "search" || reqs[1].Query != "heist" {
		t.Fatalf("unexpected page 2 request: %+v", reqs[1])
	}
	if h.model.Reel.Len() != 15 || h.model.Grid.Len() != 15 {
		t.Fatalf("page 2 should reach both views: reel=%d grid=%d", h.model.Reel.Len(), h.model.Grid.Len())
	}
	if h.model.Reel.Cursor() != 7 {
		t.Fatalf("append moved the reel cursor to %d", h.model.Reel.Cursor())
	}

	h.send(t, runes("G"))
	reqs = recommendRequests(h.backend)
	if len(reqs) != 3 || reqs[2].Page != 3 {
		t.Fatalf("expected page 3 request at the last item, got %+v", reqs)
	}
	if h.model.Feed.HasMore() {
		t.Fatalf("empty page 3 should exhaust the feed")
	}

	h.send(t, runes("k"))
	h.send(t, runes("j"))
	if n := len(recommendRequests(h.backend)); n != 3 {
		t.Fatalf("exhausted feed issued another request (%d total)", n)
	}
}

func TestMouseWheelScrollsGridAndLoadsMore(t *testing.T) {
	h := newHarness(t, Options{})
	h.backend.SetPage("movies", 1, pageJSON("space", 20))
	h.search(t, "space opera")

	wheel := tea.MouseMsg{Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress}
	h.send(t, wheel)
	if h.model.Grid.CursorRow() != 1 {
		t.Fatalf("wheel down should move one row, cursor row %d", h.model.Grid.CursorRow())
	}
	h.send(t, wheel)

	reqs := recommendRequests(h.backend)
	if len(reqs) != 2 || reqs[1].Page != 2 {
		t.Fatalf("wheel scrolling near the end should load page 2, got %+v", reqs)
	}

	h.send(t, tea.MouseMsg{Button: tea.MouseButtonWheelUp, Action: tea.MouseActionPress})
	if h.model.Grid.CursorRow() != 1 {
		t.Fatalf("wheel up should move back one row, cursor row %d", h.model.Grid.CursorRow())
	}
}

func TestReelTrailerStartingAfterMoveIsStopped(t *testing.T) {
	h := newHarness(t, Options{View: ViewReel, Autoplay: true})
	h.backend.SetPage("movies", 1, `[{"id":"1","title":"Heat","year":"1995"},{"id":"2","title":"Ronin","year":"1998"}]`)
	h.backend.Trailers["Heat"] = "heatkey"
	h.backend.Trailers["Ronin"] = "roninkey"

	h.search(t, "crime")
	h.send(t, runes("j"))
	if h.model.TrailerSvc.Playing() != "roninkey" {
		t.Fatalf("expected Ronin trailer, playing %q", h.model.TrailerSvc.Playing())
	}

	// Back to Heat: the lookup resolves but the player has not started yet
	found := collect(h.update(runes("k")))
	if len(found) != 1 {
		t.Fatalf("expected one lookup result, got %v", found)
	}
	play := h.update(found[0])
	if play == nil {
		t.Fatalf("expected a play command for Heat")
	}

	// The user moves on before the player launches
	lookup := h.update(runes("j"))

	h.run(t, play)
	if got := h.model.TrailerSvc.Playing(); got != "" {
		t.Fatalf("trailer for an item no longer on screen kept playing: %q", got)
	}

	h.run(t, lookup)
	if got := h.model.TrailerSvc.Playing(); got != "roninkey" {
		t.Fatalf("expected Ronin trailer after returning, playing %q", got)
	}
	if h.model.Reel.TrailerStateFor("2") != components.TrailerPlaying {
		t.Fatalf("reel should mark Ronin as playing")
	}
}

func TestYouTubeSearchFromDetails(t *testing.T) {
	h := newHarness(t, Options{})
	h.backend.SetPage("movies", 1, `[{"id":"1","title":"Heat","year":"1995"}]`)

	h.search(t, "crime")
	h.send(t, tea.KeyMsg{Type: tea.KeyEnter})
	h.send(t, runes("t"))

	opened := h.launcher.Opened()
	if len(opened) != 1 || !strings.Contains(opened[0], "search_query=Heat+1995+movies+trailer") {
		t.Fatalf("unexpected browser URL: %v", opened)
	}
}

func TestParseViewMode(t *testing.T) {
	for in, want := range map[string]ViewMode{"": ViewGrid, "grid": ViewGrid, "Reel": ViewReel} {
		got, err := ParseViewMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseViewMode(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseViewMode("carousel"); err == nil {
		t.Fatalf("expected an error for an unknown view")
	}
}
