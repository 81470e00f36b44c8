package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/neurostream/internal/tui/components"
	"github.com/mmcdole/neurostream/internal/tui/styles"
)

// View renders the application
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	if m.State == StateHelp {
		return m.renderHelp()
	}

	var content string
	if m.ViewMode == ViewReel {
		content = m.Reel.View()
	} else {
		content = m.Grid.View()
	}

	view := lipgloss.JoinVertical(
		lipgloss.Left,
		m.TabBar.View(),
		m.SearchBar.View(),
		content,
		m.renderFooter(),
	)

	// Overlay details modal if visible
	if m.Details.IsVisible() {
		view = components.PlaceOverlay(m.Width, m.Height, m.Details.View())
	}

	return view
}

// renderFooter renders a single-line minimal footer
func (m Model) renderFooter() string {
	// Left side: spinner while fetching, otherwise the status message
	var left string
	switch {
	case m.StatusMsg != "" && m.StatusIsErr:
		left = styles.ErrorStyle.Render(m.StatusMsg)
	case m.Feed.Fetching():
		text := "Loading..."
		if page := m.Feed.Page(); page > 1 {
			text = "Loading page " + strconv.Itoa(page) + "..."
		}
		left = m.Spinner.View() + " " + styles.DimStyle.Render(text)
	case m.StatusMsg != "":
		left = styles.DimStyle.Render(m.StatusMsg)
	}

	// Center section: hints for the current state
	center := m.renderHints()

	// Right side: "? help" hint
	accent := m.Spinner.Style
	right := accent.Render("?") + styles.DimStyle.Render(" help")

	// Layout: left + centered hints + right
	leftWidth := lipgloss.Width(left)
	centerWidth := lipgloss.Width(center)
	rightWidth := lipgloss.Width(right)

	if leftWidth+centerWidth+rightWidth >= m.Width {
		// Not enough space - just left + right
		gap := max(m.Width-leftWidth-rightWidth, 0)
		return left + strings.Repeat(" ", gap) + right
	}

	// Center the hints in available space
	available := m.Width - leftWidth - rightWidth
	leftPad := (available - centerWidth) / 2
	rightPad := available - centerWidth - leftPad

	return left + strings.Repeat(" ", leftPad) + center + strings.Repeat(" ", rightPad) + right
}

func (m Model) renderHints() string {
	accent := m.Spinner.Style
	hint := func(k, desc string) string {
		return accent.Render(k) + styles.DimStyle.Render(" "+desc)
	}

	var hints []string
	switch m.State {
	case StateSearching:
		hints = []string{hint("enter", "search"), hint("↑↓", "suggestions"), hint("esc", "browse")}
	case StateDetails:
		hints = []string{hint("t", "YouTube"), hint("p", "play"), hint("esc", "close")}
	default:
		hints = []string{hint("s", "search"), hint("S", "surprise"), hint("v", "view")}
		if m.TrailerSvc.Playing() != "" {
			hints = append(hints, hint("x", "stop trailer"))
		}
	}
	return strings.Join(hints, "  ")
}

// renderHelp renders the help screen
func (m Model) renderHelp() string {
	h := m.Help
	h.ShowAll = true

	body := styles.TitleStyle.Render("NeuroStream") + "\n\n" +
		h.View(Keys) + "\n\n" +
		styles.DimStyle.Render("Press any key to return...")

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		m.theme().ModalStyle.Render(body))
}
