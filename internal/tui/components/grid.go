package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/neurostream/internal/domain"
	"github.com/mmcdole/neurostream/internal/tui/styles"
)

// Layout constants for grid cards
const (
	// Border adds 1 char on each side (left+right for width, top+bottom for height)
	BorderWidth  = 2
	BorderHeight = 2

	// Padding inside the card border (Padding(0,1) = 1 left + 1 right)
	HorizontalPadding = 2

	// Lines inside a card: poster marker, title, year + rating
	CardLines = 3

	MinCardWidth = 18
	CardHeight   = CardLines + BorderHeight

	// Scroll indicators ("↑ more" and "↓ more") each take 1 line
	ScrollIndicatorLines = 2
)

// Grid shows loaded items as a grid of cards
type Grid struct {
	items []domain.Item

	// Selection (cursor indexes visible items, offset is the first visible row)
	cursor int
	offset int

	// Dimensions
	width       int
	height      int
	columns     int // configured columns, 0 = fit to width
	focused     bool
	theme       styles.Theme
	emptyMsg    string
	loadingMore bool

	filter itemFilter
}

// NewGrid creates a new grid component
func NewGrid() Grid {
	return Grid{
		theme:    styles.MoviesTheme,
		emptyMsg: "No items",
		filter:   newItemFilter(),
	}
}

// SetItems replaces the content and resets the cursor
func (g *Grid) SetItems(items []domain.Item) {
	g.items = items
	g.cursor = 0
	g.offset = 0
	g.filter.clear()
}

// AppendItems adds a page of items, keeping the cursor where it is
func (g *Grid) AppendItems(batch []domain.Item) {
	g.items = append(g.items, batch...)
	if g.filter.active {
		g.filter.apply(g.items)
	}
}

// Len returns the number of loaded items (ignoring the filter)
func (g Grid) Len() int {
	return len(g.items)
}

// SetSize updates the component dimensions
func (g *Grid) SetSize(width, height int) {
	g.width = width
	g.height = height
	g.ensureVisible()
}

// SetColumns fixes the column count. Zero fits as many cards as the width allows.
func (g *Grid) SetColumns(n int) {
	if n < 0 {
		n = 0
	}
	g.columns = n
	g.ensureVisible()
}

// SetTheme switches the accent styles
func (g *Grid) SetTheme(t styles.Theme) {
	g.theme = t
}

// SetEmptyMessage sets the text shown when there is nothing loaded
func (g *Grid) SetEmptyMessage(msg string) {
	g.emptyMsg = msg
}

// SetLoadingMore shows or hides the "loading more" line under the cards
func (g *Grid) SetLoadingMore(loading bool) {
	g.loadingMore = loading
}

// SetFocused sets the focus state
func (g *Grid) SetFocused(focused bool) {
	g.focused = focused
}

// Columns returns the effective number of columns
func (g Grid) Columns() int {
	if g.columns > 0 {
		return g.columns
	}
	inner := g.width - BorderWidth
	cols := inner / (MinCardWidth + BorderWidth + HorizontalPadding)
	if cols < 1 {
		cols = 1
	}
	return cols
}

// visibleRows returns how many card rows fit on screen
func (g Grid) visibleRows() int {
	lines := g.height - BorderHeight - ScrollIndicatorLines
	if g.filter.active {
		lines--
	}
	rows := lines / CardHeight
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (g Grid) count() int {
	return g.filter.count(len(g.items))
}

func (g Grid) totalRows() int {
	cols := g.Columns()
	return (g.count() + cols - 1) / cols
}

// Cursor returns the current cursor position among visible items
func (g Grid) Cursor() int {
	return g.cursor
}

// SetCursor moves the cursor, clamped to the visible items
func (g *Grid) SetCursor(pos int) {
	maxPos := g.count() - 1
	if maxPos < 0 {
		g.cursor = 0
		return
	}
	g.cursor = max(0, min(pos, maxPos))
	g.ensureVisible()
}

// CursorRow returns the row the cursor is on
func (g Grid) CursorRow() int {
	return g.cursor / g.Columns()
}

// RowsRemaining returns the number of rows below the cursor's row
func (g Grid) RowsRemaining() int {
	rows := g.totalRows()
	if rows == 0 {
		return 0
	}
	return rows - 1 - g.CursorRow()
}

// SelectedItem returns the item under the cursor
func (g Grid) SelectedItem() (domain.Item, bool) {
	if g.count() == 0 || g.cursor >= g.count() {
		return domain.Item{}, false
	}
	return g.items[g.filter.mapIndex(g.cursor)], true
}

// ensureVisible scrolls so the cursor's row is on screen
func (g *Grid) ensureVisible() {
	if g.width == 0 {
		return
	}
	row := g.CursorRow()
	rows := g.visibleRows()
	if row < g.offset {
		g.offset = row
	}
	if row >= g.offset+rows {
		g.offset = row - rows + 1
	}
}

// ToggleFilter opens the filter input
func (g *Grid) ToggleFilter() {
	g.filter.open()
}

// IsFiltering returns true if a filter is applied or being typed
func (g Grid) IsFiltering() bool {
	return g.filter.active
}

// IsFilterTyping returns true if the filter input has focus
func (g Grid) IsFilterTyping() bool {
	return g.filter.typing()
}

// ClearFilter shows all items again
func (g *Grid) ClearFilter() {
	g.filter.clear()
	g.SetCursor(g.cursor)
}

// Init initializes the component
func (g Grid) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (g Grid) Update(msg tea.Msg) (Grid, tea.Cmd) {
	if !g.focused {
		return g, nil
	}

	if g.filter.typing() {
		changed, cmd := g.filter.update(msg)
		if changed {
			g.filter.apply(g.items)
			g.cursor = 0
			g.offset = 0
		}
		return g, cmd
	}

	if g.filter.active {
		if km, ok := msg.(tea.KeyMsg); ok {
			switch {
			case key.Matches(km, GridKeys.Escape):
				g.ClearFilter()
				return g, nil
			case key.Matches(km, GridKeys.Filter):
				g.filter.input.Focus()
				return g, nil
			}
		}
	}

	count := g.count()
	if count == 0 {
		return g, nil
	}
	cols := g.Columns()

	if km, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(km, GridKeys.Right):
			if g.cursor < count-1 {
				g.cursor++
			}
		case key.Matches(km, GridKeys.Left):
			if g.cursor > 0 {
				g.cursor--
			}
		case key.Matches(km, GridKeys.Down):
			if g.cursor+cols < count {
				g.cursor += cols
			} else if g.CursorRow() < g.totalRows()-1 {
				// Partial last row: land on its last card
				g.cursor = count - 1
			}
		case key.Matches(km, GridKeys.Up):
			if g.cursor-cols >= 0 {
				g.cursor -= cols
			}
		case key.Matches(km, GridKeys.Home):
			g.cursor = 0
		case key.Matches(km, GridKeys.End):
			g.cursor = count - 1
		case key.Matches(km, GridKeys.PageDown):
			g.cursor = min(g.cursor+g.visibleRows()*cols, count-1)
		case key.Matches(km, GridKeys.PageUp):
			g.cursor = max(g.cursor-g.visibleRows()*cols, 0)
		}
		g.ensureVisible()
	}
	return g, nil
}

// View renders the component
func (g Grid) View() string {
	style := styles.InactiveBorder
	if g.focused {
		style = g.theme.ActiveBorder
	}
	frameW, frameH := style.GetFrameSize()

	return style.
		Width(max(g.width-frameW, 0)).
		Height(max(g.height-frameH, 0)).
		Render(g.renderCards())
}

func (g Grid) renderCards() string {
	count := g.count()
	if count == 0 {
		msg := g.emptyMsg
		if g.filter.active && g.filter.query != "" {
			msg = "No matches"
		}
		content := "\n" + styles.DimStyle.Render(msg)
		if g.filter.active {
			content += "\n\n" + g.filter.view(len(g.items))
		}
		return content
	}

	cols := g.Columns()
	inner := g.width - BorderWidth
	cardWidth := inner/cols - BorderWidth - HorizontalPadding
	if cardWidth < 4 {
		cardWidth = 4
	}

	first := g.offset
	last := min(first+g.visibleRows(), g.totalRows())

	var rows []string
	for r := first; r < last; r++ {
		var cards []string
		for c := 0; c < cols; c++ {
			pos := r*cols + c
			if pos >= count {
				break
			}
			item := g.items[g.filter.mapIndex(pos)]
			cards = append(cards, g.renderCard(item, pos == g.cursor, cardWidth))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}

	// Always reserve the indicator lines to prevent layout shifts
	header := " "
	if first > 0 {
		header = styles.DimStyle.Render("↑ more")
	}
	footer := " "
	if last < g.totalRows() {
		footer = styles.DimStyle.Render("↓ more")
	} else if g.loadingMore {
		footer = g.theme.AccentStyle.Render("Loading more...")
	}

	content := header + "\n" + strings.Join(rows, "\n") + "\n" + footer
	if g.filter.active {
		content += "\n" + g.filter.view(len(g.items))
	}
	return content
}

func (g Grid) renderCard(item domain.Item, selected bool, width int) string {
	style := styles.CardStyle
	if selected {
		style = g.theme.CardSelected
	}

	poster := styles.DimStyle.Render(styles.Truncate("▒ no poster", width))
	if item.HasPoster() {
		poster = g.theme.AccentStyle.Render(styles.Truncate("▣ poster", width))
	}

	title := styles.Truncate(item.Title, width)
	if selected {
		title = styles.TitleStyle.Render(title)
	} else {
		title = styles.SubtitleStyle.Render(title)
	}

	meta := item.DisplayYear()
	if meta == "" {
		meta = "N/A"
	}
	rating := styles.RatingStyle.Render(fmt.Sprintf("★ %.1f", item.VoteAverage))
	metaLine := styles.DimStyle.Render(styles.Pad(meta, max(width-6, 0))) + rating

	return style.Width(width + HorizontalPadding).Render(strings.Join([]string{poster, title, metaLine}, "\n"))
}
