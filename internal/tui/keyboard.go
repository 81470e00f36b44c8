package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/neurostream/internal/domain"
	"github.com/mmcdole/neurostream/internal/tui/components"
)

// handleKeyMsg routes a key press according to the application state
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// ctrl+c always quits, even while typing
	if msg.String() == "ctrl+c" {
		return m, m.quit()
	}

	switch m.State {
	case StateHelp:
		// Any key closes help
		m.State = StateBrowsing
		return m, nil
	case StateDetails:
		return m.handleDetailsKey(msg)
	case StateSearching:
		return m.handleSearchKey(msg)
	}

	// The grid filter input swallows keys while it has focus
	if m.ViewMode == ViewGrid && m.Grid.IsFilterTyping() {
		var cmd tea.Cmd
		m.Grid, cmd = m.Grid.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		return m, m.quit()

	case key.Matches(msg, Keys.Help):
		m.State = StateHelp
		return m, nil

	case key.Matches(msg, Keys.Search):
		m.State = StateSearching
		m.updateFocus()
		return m, m.SearchBar.Focus()

	case key.Matches(msg, Keys.Surprise):
		return m, m.surprise()

	case key.Matches(msg, Keys.NextTab):
		return m, m.cycleCategory(1)

	case key.Matches(msg, Keys.PrevTab):
		return m, m.cycleCategory(-1)

	case key.Matches(msg, Keys.Movies):
		return m, m.switchCategory(domain.CategoryMovies)

	case key.Matches(msg, Keys.Games):
		return m, m.switchCategory(domain.CategoryGames)

	case key.Matches(msg, Keys.ToggleView):
		return m, m.toggleView()

	case key.Matches(msg, Keys.Details):
		return m, m.openDetails()

	case key.Matches(msg, Keys.Play):
		item, ok := m.selectedItem()
		if !ok {
			return m, nil
		}
		return m, LookupTrailerCmd(m.TrailerSvc, m.Feed.Category(), item, true)

	case key.Matches(msg, Keys.StopTrailer):
		if m.TrailerSvc.Playing() == "" {
			return m, nil
		}
		m.TrailerSvc.Stop()
		if item, ok := m.Reel.SelectedItem(); ok && m.ViewMode == ViewReel {
			m.Reel.SetTrailerState(item.ID, components.TrailerReady)
		}
		m.StatusMsg = "Trailer stopped"
		m.StatusIsErr = false
		return m, ClearStatusCmd(statusDuration)

	case key.Matches(msg, Keys.YouTube):
		item, ok := m.selectedItem()
		if !ok {
			return m, nil
		}
		return m, OpenSearchCmd(m.TrailerSvc, m.Feed.Category(), item)

	case key.Matches(msg, Keys.Filter):
		if m.ViewMode != ViewGrid || m.Grid.Len() == 0 {
			return m, nil
		}
		if m.Grid.IsFiltering() {
			var cmd tea.Cmd
			m.Grid, cmd = m.Grid.Update(msg)
			return m, cmd
		}
		m.Grid.ToggleFilter()
		return m, nil
	}

	return m.routeToView(msg)
}

// routeToView forwards navigation to the active view and checks proximity
func (m Model) routeToView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	if m.ViewMode == ViewReel {
		var cmd tea.Cmd
		m.Reel, cmd = m.Reel.Update(msg)
		cmds = append(cmds, cmd, m.onReelItemChanged())
	} else {
		var cmd tea.Cmd
		m.Grid, cmd = m.Grid.Update(msg)
		cmds = append(cmds, cmd)
	}
	cmds = append(cmds, m.maybeLoadMore())
	return m, tea.Batch(cmds...)
}

// handleMouseMsg maps the wheel onto the same navigation as the arrow keys
func (m Model) handleMouseMsg(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress {
		return m, nil
	}

	switch m.State {
	case StateDetails:
		var cmd tea.Cmd
		m.Details, cmd = m.Details.Update(msg)
		return m, cmd
	case StateBrowsing:
	default:
		return m, nil
	}
	if m.ViewMode == ViewGrid && m.Grid.IsFilterTyping() {
		return m, nil
	}

	switch msg.Button {
	case tea.MouseButtonWheelDown:
		return m.routeToView(tea.KeyMsg{Type: tea.KeyDown})
	case tea.MouseButtonWheelUp:
		return m.routeToView(tea.KeyMsg{Type: tea.KeyUp})
	}
	return m, nil
}

// handleSearchKey handles keys while the search bar has focus
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, components.SearchBarKeys.Submit):
		query := m.SearchBar.Accept()
		m.Feed.SetQuery(query)
		cmd := m.startSearch(query, domain.ModeSearch)
		if cmd == nil {
			// Empty query: stay in the search bar
			return m, nil
		}
		m.SearchBar.Blur()
		m.State = StateBrowsing
		m.updateFocus()
		return m, cmd

	case key.Matches(msg, components.SearchBarKeys.Cancel):
		m.SearchBar.Blur()
		m.State = StateBrowsing
		m.updateFocus()
		return m, nil

	case key.Matches(msg, Keys.NextTab):
		return m, m.cycleCategory(1)

	case key.Matches(msg, Keys.PrevTab):
		return m, m.cycleCategory(-1)
	}

	var cmd tea.Cmd
	m.SearchBar, cmd = m.SearchBar.Update(msg)
	m.Feed.SetQuery(m.SearchBar.Value())
	if !key.Matches(msg, components.SearchBarKeys.Next, components.SearchBarKeys.Prev) {
		m.refreshSuggestions()
	}
	return m, cmd
}

// handleDetailsKey handles keys while the details modal is open
func (m Model) handleDetailsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	item := m.Details.Item()
	category := m.Details.Category()

	switch {
	case key.Matches(msg, components.DetailsKeys.Close):
		m.Details.Hide()
		m.State = StateBrowsing
		m.updateFocus()
		return m, nil

	case key.Matches(msg, components.DetailsKeys.Trailer):
		return m, OpenSearchCmd(m.TrailerSvc, category, item)

	case key.Matches(msg, components.DetailsKeys.Play):
		return m, LookupTrailerCmd(m.TrailerSvc, category, item, true)
	}

	var cmd tea.Cmd
	m.Details, cmd = m.Details.Update(msg)
	return m, cmd
}
