package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/mmcdole/neurostream/internal/domain"
)

const (
	defaultFetchTimeout      = 30 * time.Second
	defaultPrefetchThreshold = 2
)

// Outcome classifies how a completed fetch changed the feed
type Outcome int

const (
	// OutcomeStale means the result belonged to a superseded epoch and was dropped
	OutcomeStale Outcome = iota
	// OutcomeAppend means new items were added to the feed
	OutcomeAppend
	// OutcomeEmpty means the first page came back empty
	OutcomeEmpty
	// OutcomeExhausted means a later page came back empty
	OutcomeExhausted
	// OutcomeError means the request failed; hasMore is untouched
	OutcomeError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeStale:
		return "stale"
	case OutcomeAppend:
		return "append"
	case OutcomeEmpty:
		return "empty"
	case OutcomeExhausted:
		return "exhausted"
	case OutcomeError:
		return "error"
	default:
		return "unknown"
	}
}

// FetchRequest describes one page request dispatched by the controller
type FetchRequest struct {
	Epoch  uint64
	Ctx    context.Context
	Params domain.RecommendParams
}

// FetchResult is what came back for a FetchRequest
type FetchResult struct {
	Epoch uint64
	Page  int
	Items []domain.Item
	Err   error
}

// FeedUpdate tells the view what to do after a completion
type FeedUpdate struct {
	Outcome Outcome
	Batch   []domain.Item // items added by this completion
	Reset   bool          // true when Batch is the first page and replaces the view
	Err     error
}

// FeedController runs the fetch/pagination state machine for the active tab.
//
// States: Idle -> Fetching -> (Idle | Exhausted). At most one page request
// is in flight; extra triggers while fetching are dropped, not queued.
// All methods must be called from the UI loop; only Run may be called from
// a command goroutine.
type FeedController struct {
	repo    domain.RecommendRepository
	tracker *RequestTracker
	tabs    *TabStore
	logger  *slog.Logger

	timeout           time.Duration
	prefetchThreshold int

	// Working state of the active tab
	category domain.Category
	items    []domain.Item
	page     int
	hasMore  bool
	fetching bool
	query    string
}

// FeedOption configures a FeedController
type FeedOption func(*FeedController)

// WithFetchTimeout bounds each page request
func WithFetchTimeout(d time.Duration) FeedOption {
	return func(c *FeedController) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithPrefetchThreshold sets how close to the end (rows or items) a cursor
// must be before the next page is requested
func WithPrefetchThreshold(n int) FeedOption {
	return func(c *FeedController) {
		if n >= 0 {
			c.prefetchThreshold = n
		}
	}
}

// NewFeedController creates a controller positioned on the given category
func NewFeedController(
	repo domain.RecommendRepository,
	tracker *RequestTracker,
	category domain.Category,
	logger *slog.Logger,
	opts ...FeedOption,
) *FeedController {
	if logger == nil {
		logger = slog.Default()
	}
	if tracker == nil {
		tracker = NewRequestTracker(context.Background())
	}
	if category == "" {
		category = domain.CategoryMovies
	}
	initial := DefaultTabState()
	c := &FeedController{
		repo:              repo,
		tracker:           tracker,
		tabs:              NewTabStore(),
		logger:            logger,
		timeout:           defaultFetchTimeout,
		prefetchThreshold: defaultPrefetchThreshold,
		category:          category,
		items:             initial.Data,
		page:              initial.Page,
		hasMore:           initial.HasMore,
		query:             initial.Query,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Category returns the active category
func (c *FeedController) Category() domain.Category { return c.category }

// Items returns the accumulated items of the active tab
func (c *FeedController) Items() []domain.Item { return c.items }

// Page returns the page most recently requested
func (c *FeedController) Page() int { return c.page }

// HasMore reports whether further pages may exist
func (c *FeedController) HasMore() bool { return c.hasMore }

// Fetching reports whether a page request is in flight
func (c *FeedController) Fetching() bool { return c.fetching }

// Query returns the live query text
func (c *FeedController) Query() string { return c.query }

// Epoch returns the live request epoch
func (c *FeedController) Epoch() uint64 { return c.tracker.Current() }

// PrefetchThreshold returns the proximity threshold
func (c *FeedController) PrefetchThreshold() int { return c.prefetchThreshold }

// SetQuery mirrors the search field. It does not start a search.
func (c *FeedController) SetQuery(q string) {
	c.query = q
}

// Snapshot returns the live working state as a TabState
func (c *FeedController) Snapshot() TabState {
	return TabState{
		Data:    c.items,
		Page:    c.page,
		HasMore: c.hasMore,
		Query:   c.query,
	}
}

// TriggerSearch starts a new search from page 1. It returns nil when the
// search is rejected (search mode with an empty query).
func (c *FeedController) TriggerSearch(query string, mode domain.Mode) *FetchRequest {
	if mode == "" {
		mode = domain.ModeSearch
	}
	if mode == domain.ModeSearch && query == "" {
		return nil
	}
	if mode == domain.ModeRandom {
		query = ""
	}

	c.tracker.Next()
	c.abandonInFlight()
	c.query = query
	c.page = 1
	c.items = nil
	c.hasMore = true

	c.logger.Info("search triggered", "category", c.category, "mode", mode, "query", query, "epoch", c.tracker.Current())
	return c.fetchPage(mode)
}

// LoadMore requests the next page. It is a no-op before any data has been
// loaded, while a request is in flight, and after the feed is exhausted.
func (c *FeedController) LoadMore() *FetchRequest {
	if len(c.items) == 0 {
		return nil
	}
	if c.fetching || !c.hasMore {
		return nil
	}
	c.page++
	return c.fetchPage(ModeFor(c.query))
}

// NearEnd reports whether a cursor with the given number of rows (or items)
// left before the end of content is close enough to prefetch
func (c *FeedController) NearEnd(remaining int) bool {
	return remaining <= c.prefetchThreshold
}

// fetchPage is the guarded dispatch shared by TriggerSearch and LoadMore
func (c *FeedController) fetchPage(mode domain.Mode) *FetchRequest {
	if c.fetching || !c.hasMore {
		return nil
	}
	c.fetching = true

	req := &FetchRequest{
		Epoch: c.tracker.Current(),
		Ctx:   c.tracker.Context(),
		Params: domain.RecommendParams{
			Type:  c.category,
			Mode:  mode,
			Query: c.query,
			Page:  c.page,
		},
	}
	c.logger.Debug("page requested", "category", c.category, "mode", mode, "page", c.page, "epoch", req.Epoch)
	return req
}

// Run executes a request against the repository. Safe to call from a
// command goroutine: it touches no controller state.
func (c *FeedController) Run(req *FetchRequest) FetchResult {
	ctx := req.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	items, err := c.repo.Recommend(ctx, req.Params)
	return FetchResult{
		Epoch: req.Epoch,
		Page:  req.Params.Page,
		Items: items,
		Err:   err,
	}
}

// Complete applies a fetch result to the working state
func (c *FeedController) Complete(res FetchResult) FeedUpdate {
	if !c.tracker.IsCurrent(res.Epoch) {
		c.logger.Debug("discarding stale page", "epoch", res.Epoch, "current", c.tracker.Current(), "page", res.Page)
		return FeedUpdate{Outcome: OutcomeStale}
	}

	c.fetching = false

	if res.Err != nil {
		c.logger.Error("page request failed", "category", c.category, "page", c.page, "error", res.Err)
		// Step back so the next LoadMore asks for the same page again
		if c.page > 1 {
			c.page--
		}
		return FeedUpdate{Outcome: OutcomeError, Err: res.Err}
	}

	if len(res.Items) == 0 {
		c.hasMore = false
		if c.page == 1 {
			return FeedUpdate{Outcome: OutcomeEmpty}
		}
		c.logger.Info("feed exhausted", "category", c.category, "pages", c.page-1, "items", len(c.items))
		return FeedUpdate{Outcome: OutcomeExhausted}
	}

	reset := c.page == 1
	c.items = append(c.items, res.Items...)
	return FeedUpdate{Outcome: OutcomeAppend, Batch: res.Items, Reset: reset}
}

// SwitchCategory saves the outgoing tab, restores the incoming one and
// invalidates every in-flight request. It never starts a search.
// It returns false when category is already active.
func (c *FeedController) SwitchCategory(category domain.Category) bool {
	if category == c.category {
		return false
	}

	c.tracker.Next()
	c.abandonInFlight()

	c.tabs.Save(c.category, c.Snapshot())

	c.category = category
	saved := c.tabs.Restore(category)
	c.items = saved.Data
	c.page = saved.Page
	c.hasMore = saved.HasMore
	c.query = saved.Query

	c.logger.Info("switched category", "category", category, "items", len(c.items), "epoch", c.tracker.Current())
	return true
}

// abandonInFlight forgets the outstanding request after its epoch has been
// superseded. A later page that never landed is handed back so the next
// LoadMore asks for it again.
func (c *FeedController) abandonInFlight() {
	if c.fetching && c.page > 1 {
		c.page--
	}
	c.fetching = false
}

// Close tears the session down, cancelling any in-flight request
func (c *FeedController) Close() {
	c.tracker.Close()
}

// ModeFor picks the request mode for a live query: an empty field continues
// a "surprise me" browse, anything else is a search
func ModeFor(query string) domain.Mode {
	if query == "" {
		return domain.ModeRandom
	}
	return domain.ModeSearch
}
