package tui

// Vertical layout: tab bar, search bar (hero line, bordered input, chips), footer
const (
	TabBarHeight    = 1
	SearchBarHeight = 5
	FooterHeight    = 1

	ChromeHeight = TabBarHeight + SearchBarHeight + FooterHeight

	MinContentHeight = 6
)

// contentHeight returns the rows left for the grid or reel
func (m Model) contentHeight() int {
	return max(m.Height-ChromeHeight, MinContentHeight)
}

// updateLayout updates component sizes based on window size
func (m *Model) updateLayout() {
	if m.Width == 0 || m.Height == 0 {
		return
	}

	height := m.contentHeight()
	m.TabBar.SetWidth(m.Width)
	m.SearchBar.SetWidth(m.Width)
	m.Grid.SetSize(m.Width, height)
	m.Reel.SetSize(m.Width, height)
	m.Details.SetSize(m.Width, m.Height)
	m.Help.Width = m.Width
}
