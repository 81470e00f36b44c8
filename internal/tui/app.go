package tui

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/neurostream/internal/domain"
	"github.com/mmcdole/neurostream/internal/service"
	"github.com/mmcdole/neurostream/internal/tui/components"
	"github.com/mmcdole/neurostream/internal/tui/styles"
)

// ApplicationState represents the current state of the application
type ApplicationState int

const (
	StateBrowsing ApplicationState = iota
	StateSearching
	StateDetails
	StateHelp
)

// ViewMode selects how the loaded items are presented
type ViewMode int

const (
	ViewGrid ViewMode = iota
	ViewReel
)

func (v ViewMode) String() string {
	if v == ViewReel {
		return "reel"
	}
	return "grid"
}

// ParseViewMode converts a flag or config value into a ViewMode
func ParseViewMode(s string) (ViewMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "grid":
		return ViewGrid, nil
	case "reel":
		return ViewReel, nil
	default:
		return ViewGrid, fmt.Errorf("unknown view %q", s)
	}
}

const (
	suggestionLimit = 6
	statusDuration  = 3 * time.Second
	errorDuration   = 5 * time.Second
)

// Options seeds the model from flags and config
type Options struct {
	View        ViewMode
	GridColumns int
	Autoplay    bool
	Version     string
	Logger      *slog.Logger
}

// Model is the main Bubble Tea model for the application
type Model struct {
	// Application state
	State ApplicationState
	Ready bool

	// Services
	Feed       *service.FeedController
	DetailSvc  *service.DetailService
	TrailerSvc *service.TrailerService
	SuggestSvc *service.SuggestService
	logger     *slog.Logger

	// UI Components
	TabBar    components.TabBar
	SearchBar components.SearchBar
	Grid      components.Grid
	Reel      components.Reel
	Details   components.Details
	Spinner   spinner.Model
	Help      help.Model

	// Dimensions
	Width  int
	Height int

	// UI state
	ViewMode    ViewMode
	Autoplay    bool
	StatusMsg   string
	StatusIsErr bool

	// ID of the reel item whose trailer was last looked up
	reelItemID string
}

// NewModel creates a new application model positioned on the feed's category
func NewModel(
	feed *service.FeedController,
	detailSvc *service.DetailService,
	trailerSvc *service.TrailerService,
	suggestSvc *service.SuggestService,
	opts Options,
) Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	category := feed.Category()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		State:      StateSearching,
		Feed:       feed,
		DetailSvc:  detailSvc,
		TrailerSvc: trailerSvc,
		SuggestSvc: suggestSvc,
		logger:     logger,
		TabBar:     components.NewTabBar(category, opts.Version),
		SearchBar:  components.NewSearchBar(category),
		Grid:       components.NewGrid(),
		Reel:       components.NewReel(),
		Details:    components.NewDetails(),
		Spinner:    sp,
		Help:       help.New(),
		ViewMode:   opts.View,
		Autoplay:   opts.Autoplay,
	}
	m.Grid.SetColumns(opts.GridColumns)
	m.applyTheme()
	m.setEmptyMessage(components.EmptyStateText(category))
	m.TabBar.SetViewLabel(m.ViewMode.String())
	m.SearchBar.Focus()
	m.refreshSuggestions()
	m.updateFocus()
	return m
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.Spinner.Tick,
	)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.updateLayout()
		return m, m.maybeLoadMore()

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.MouseMsg:
		return m.handleMouseMsg(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		m.TabBar.Tick()
		return m, cmd

	case FeedPageMsg:
		return m.handleFeedPage(msg)

	case DetailsLoadedMsg:
		if msg.Err != nil || msg.Detail == nil {
			if m.Details.SetFailed(msg.ItemID) && msg.Err != nil {
				m.logger.Warn("details unavailable", "item", msg.ItemID, "error", msg.Err)
			}
			return m, nil
		}
		if !m.Details.SetDetail(msg.ItemID, *msg.Detail) {
			m.logger.Debug("discarding details for closed modal", "item", msg.ItemID)
		}
		return m, nil

	case TrailerFoundMsg:
		return m.handleTrailerFound(msg)

	case TrailerStartedMsg:
		// The reel moved on while the player was starting
		if msg.FromReel && (m.ViewMode != ViewReel || m.reelItemID != msg.ItemID) {
			m.logger.Debug("stopping trailer for item no longer on screen", "item", msg.ItemID)
			m.TrailerSvc.StopKey(msg.Key)
			return m, nil
		}
		if m.ViewMode == ViewReel {
			if item, ok := m.Reel.SelectedItem(); ok && item.ID == msg.ItemID {
				m.Reel.SetTrailerState(msg.ItemID, components.TrailerPlaying)
			}
		}
		m.StatusMsg = "Playing trailer: " + msg.Title
		m.StatusIsErr = false
		return m, ClearStatusCmd(statusDuration)

	case ErrMsg:
		m.StatusMsg = msg.Error()
		m.StatusIsErr = true
		cmds = append(cmds, ClearStatusCmd(errorDuration))
		return m, tea.Batch(cmds...)

	case StatusMsg:
		m.StatusMsg = msg.Message
		m.StatusIsErr = msg.IsError
		cmds = append(cmds, ClearStatusCmd(statusDuration))
		return m, tea.Batch(cmds...)

	case ClearStatusMsg:
		m.StatusMsg = ""
		m.StatusIsErr = false
		return m, nil
	}

	// Cursor blink and other component messages
	if m.State == StateSearching {
		var cmd tea.Cmd
		m.SearchBar, cmd = m.SearchBar.Update(msg)
		cmds = append(cmds, cmd)
	}
	if m.State == StateBrowsing && m.ViewMode == ViewGrid && m.Grid.IsFilterTyping() {
		var cmd tea.Cmd
		m.Grid, cmd = m.Grid.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// handleFeedPage applies a completed page request to the views
func (m Model) handleFeedPage(msg FeedPageMsg) (tea.Model, tea.Cmd) {
	upd := m.Feed.Complete(msg.Result)
	category := m.Feed.Category()
	count := len(m.Feed.Items())

	var cmds []tea.Cmd
	switch upd.Outcome {
	case service.OutcomeStale:
		return m, nil

	case service.OutcomeError:
		m.TabBar.SetInfo(category, components.TabInfo{Status: components.TabError, Count: count})
		if count == 0 {
			m.setEmptyMessage("Could not reach the recommendation service.")
		}
		m.StatusMsg = "Error connecting to recommendation service: " + upd.Err.Error()
		m.StatusIsErr = true
		cmds = append(cmds, ClearStatusCmd(errorDuration))

	case service.OutcomeEmpty:
		m.Grid.SetItems(nil)
		m.Reel.SetItems(nil)
		m.setEmptyMessage(components.EmptyStateText(category))
		m.TabBar.SetInfo(category, components.TabInfo{Status: components.TabExhausted})

	case service.OutcomeExhausted:
		m.TabBar.SetInfo(category, components.TabInfo{Status: components.TabExhausted, Count: count})
		m.StatusMsg = fmt.Sprintf("End of results (%d %s)", count, category)
		m.StatusIsErr = false
		cmds = append(cmds, ClearStatusCmd(statusDuration))

	case service.OutcomeAppend:
		if upd.Reset {
			m.Grid.SetItems(slices.Clone(upd.Batch))
			m.Reel.SetItems(slices.Clone(upd.Batch))
			m.reelItemID = ""
		} else {
			m.Grid.AppendItems(upd.Batch)
			m.Reel.AppendItems(upd.Batch)
		}
		m.TabBar.SetInfo(category, components.TabInfo{Status: components.TabLoaded, Count: count})
		if m.ViewMode == ViewReel {
			cmds = append(cmds, m.onReelItemChanged())
		}
		// A short page may leave the cursor near the end already
		cmds = append(cmds, m.maybeLoadMore())
	}

	m.syncLoading()
	return m, tea.Batch(cmds...)
}

// handleTrailerFound reacts to a trailer lookup
func (m Model) handleTrailerFound(msg TrailerFoundMsg) (tea.Model, tea.Cmd) {
	itemID := msg.Item.ID
	onScreen := false
	if item, ok := m.Reel.SelectedItem(); ok && m.ViewMode == ViewReel && item.ID == itemID {
		onScreen = true
	}

	if msg.Err != nil {
		m.logger.Warn("trailer lookup failed", "item", itemID, "error", msg.Err)
		if onScreen {
			m.Reel.SetTrailerState(itemID, components.TrailerMissing)
		}
		if msg.Play {
			m.StatusMsg = "Trailer lookup failed: " + msg.Err.Error()
			m.StatusIsErr = true
			return m, ClearStatusCmd(errorDuration)
		}
		return m, nil
	}

	if !msg.Trailer.Found() {
		if onScreen {
			m.Reel.SetTrailerState(itemID, components.TrailerMissing)
		}
		if msg.Play && (onScreen || m.ViewMode == ViewGrid || m.Details.IsVisible()) {
			m.StatusMsg = "No trailer found for " + msg.Item.Title
			m.StatusIsErr = false
			return m, ClearStatusCmd(statusDuration)
		}
		return m, nil
	}

	if onScreen {
		m.Reel.SetTrailerState(itemID, components.TrailerReady)
	}
	if !msg.Play {
		return m, nil
	}
	// An autoplay lookup for an item that already scrolled away is not played
	if m.ViewMode == ViewReel && !onScreen && !m.Details.IsVisible() {
		return m, nil
	}
	fromReel := onScreen && !m.Details.IsVisible()
	return m, PlayTrailerCmd(m.TrailerSvc, msg.Item, msg.Trailer, fromReel)
}

// startSearch resets the feed and requests page 1
func (m *Model) startSearch(query string, mode domain.Mode) tea.Cmd {
	req := m.Feed.TriggerSearch(query, mode)
	if req == nil {
		return nil
	}
	category := m.Feed.Category()

	m.TrailerSvc.Stop()
	m.reelItemID = ""
	m.Grid.SetItems(nil)
	m.Reel.SetItems(nil)
	m.setEmptyMessage("Loading...")
	if mode == domain.ModeSearch {
		m.SuggestSvc.Remember(category, query)
		m.refreshSuggestions()
	}
	m.TabBar.SetInfo(category, components.TabInfo{Status: components.TabLoading})
	m.syncLoading()
	return FetchPageCmd(m.Feed, category, req)
}

// surprise clears the query and browses at random
func (m *Model) surprise() tea.Cmd {
	m.SearchBar.SetValue("")
	m.Feed.SetQuery("")
	m.refreshSuggestions()
	return m.startSearch("", domain.ModeRandom)
}

// maybeLoadMore requests the next page when the cursor is close to the end
func (m *Model) maybeLoadMore() tea.Cmd {
	var remaining int
	if m.ViewMode == ViewReel {
		remaining = m.Reel.ItemsRemaining()
	} else {
		// The filter narrows what is visible; proximity is meaningless while it is on
		if m.Grid.IsFiltering() {
			return nil
		}
		remaining = m.Grid.RowsRemaining()
	}
	if !m.Feed.NearEnd(remaining) {
		return nil
	}

	req := m.Feed.LoadMore()
	if req == nil {
		return nil
	}
	category := m.Feed.Category()
	m.TabBar.SetInfo(category, components.TabInfo{Status: components.TabLoading, Count: len(m.Feed.Items())})
	m.syncLoading()
	return FetchPageCmd(m.Feed, category, req)
}

// switchCategory swaps tabs without starting a search
func (m *Model) switchCategory(category domain.Category) tea.Cmd {
	previous := m.Feed.Category()
	if !m.Feed.SwitchCategory(category) {
		return nil
	}

	// The outgoing request was invalidated, so its tab is no longer loading
	if info := m.TabBar.Info(previous); info.Status == components.TabLoading {
		info.Status = components.TabIdle
		if info.Count > 0 {
			info.Status = components.TabLoaded
		}
		m.TabBar.SetInfo(previous, info)
	}

	m.TrailerSvc.Stop()
	m.reelItemID = ""
	m.Grid.ClearFilter()

	items := m.Feed.Items()
	m.Grid.SetItems(slices.Clone(items))
	m.Reel.SetItems(slices.Clone(items))
	m.setEmptyMessage(components.EmptyStateText(category))

	m.TabBar.SetActive(category)
	m.SearchBar.SetCategory(category)
	m.SearchBar.SetValue(m.Feed.Query())
	m.refreshSuggestions()
	m.applyTheme()
	m.syncLoading()

	if m.ViewMode == ViewReel {
		return m.onReelItemChanged()
	}
	return nil
}

// cycleCategory moves to the next (or previous) tab
func (m *Model) cycleCategory(step int) tea.Cmd {
	idx := slices.Index(domain.Categories, m.Feed.Category())
	n := len(domain.Categories)
	next := domain.Categories[((idx+step)%n+n)%n]
	return m.switchCategory(next)
}

// toggleView swaps grid and reel over the same loaded items
func (m *Model) toggleView() tea.Cmd {
	selected, hasSelection := m.selectedItem()
	idx := -1
	if hasSelection {
		idx = slices.IndexFunc(m.Feed.Items(), func(it domain.Item) bool { return it.ID == selected.ID })
	}

	var cmd tea.Cmd
	if m.ViewMode == ViewReel {
		m.TrailerSvc.Stop()
		m.reelItemID = ""
		m.ViewMode = ViewGrid
		if idx >= 0 {
			m.Grid.ClearFilter()
			m.Grid.SetCursor(idx)
		}
	} else {
		m.ViewMode = ViewReel
		if idx >= 0 {
			m.Reel.SetCursor(idx)
		}
		cmd = m.onReelItemChanged()
	}

	m.TabBar.SetViewLabel(m.ViewMode.String())
	m.updateFocus()
	m.updateLayout()
	return tea.Batch(cmd, m.maybeLoadMore())
}

// onReelItemChanged looks up the trailer for the item now on screen and
// stops the one that belonged to the previous item
func (m *Model) onReelItemChanged() tea.Cmd {
	item, ok := m.Reel.SelectedItem()
	if !ok || item.ID == m.reelItemID {
		return nil
	}
	m.reelItemID = item.ID
	m.TrailerSvc.Stop()
	m.Reel.SetTrailerState(item.ID, components.TrailerSearching)
	return LookupTrailerCmd(m.TrailerSvc, m.Feed.Category(), item, m.Autoplay)
}

// openDetails shows the modal for the selected item and fetches its details
func (m *Model) openDetails() tea.Cmd {
	item, ok := m.selectedItem()
	if !ok {
		return nil
	}
	category := m.Feed.Category()
	m.Details.Show(item, category)
	m.State = StateDetails
	return LoadDetailsCmd(m.DetailSvc, category, item.ID)
}

// quit stops playback and tears the session down
func (m *Model) quit() tea.Cmd {
	m.TrailerSvc.Stop()
	m.Feed.Close()
	return tea.Quit
}

// selectedItem returns the item under the cursor of the active view
func (m Model) selectedItem() (domain.Item, bool) {
	if m.ViewMode == ViewReel {
		return m.Reel.SelectedItem()
	}
	return m.Grid.SelectedItem()
}

// syncLoading mirrors the controller's fetching flag into the views
func (m *Model) syncLoading() {
	fetching := m.Feed.Fetching()
	m.Grid.SetLoadingMore(fetching)
	m.Reel.SetLoadingMore(fetching)
}

func (m *Model) setEmptyMessage(msg string) {
	m.Grid.SetEmptyMessage(msg)
	m.Reel.SetEmptyMessage(msg)
}

func (m *Model) refreshSuggestions() {
	m.SearchBar.SetSuggestions(m.SuggestSvc.Suggest(m.Feed.Category(), m.SearchBar.Value(), suggestionLimit))
}

// theme returns the styles for the active category
func (m Model) theme() styles.Theme {
	if m.Feed.Category() == domain.CategoryGames {
		return styles.GamesTheme
	}
	return styles.MoviesTheme
}

// applyTheme switches every component to the active category's accent
func (m *Model) applyTheme() {
	theme := m.theme()
	m.TabBar.SetTheme(theme)
	m.SearchBar.SetTheme(theme)
	m.Grid.SetTheme(theme)
	m.Reel.SetTheme(theme)
	m.Details.SetTheme(theme)
	m.Spinner.Style = theme.SpinnerStyle
}

// updateFocus gives keyboard focus to the active view unless the search bar has it
func (m *Model) updateFocus() {
	browsing := m.State == StateBrowsing
	m.Grid.SetFocused(browsing && m.ViewMode == ViewGrid)
	m.Reel.SetFocused(browsing && m.ViewMode == ViewReel)
}
