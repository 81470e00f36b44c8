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

// TrailerState describes what the reel knows about the current item's trailer
type TrailerState int

const (
	TrailerUnknown TrailerState = iota
	TrailerSearching
	TrailerReady
	TrailerPlaying
	TrailerMissing
)

// Reel shows one item per screen, like a vertical video feed
type Reel struct {
	items  []domain.Item
	cursor int

	width   int
	height  int
	focused bool
	theme   styles.Theme

	emptyMsg    string
	loadingMore bool

	// Trailer state is keyed by item so a late lookup never decorates the wrong item
	trailerItem  string
	trailerState TrailerState
}

// NewReel creates a new reel component
func NewReel() Reel {
	return Reel{
		theme:    styles.MoviesTheme,
		emptyMsg: "No items",
	}
}

// SetItems replaces the content and resets the cursor
func (r *Reel) SetItems(items []domain.Item) {
	r.items = items
	r.cursor = 0
	r.trailerItem = ""
	r.trailerState = TrailerUnknown
}

// AppendItems adds a page of items, keeping the cursor where it is
func (r *Reel) AppendItems(batch []domain.Item) {
	r.items = append(r.items, batch...)
}

// Len returns the number of loaded items
func (r Reel) Len() int { return len(r.items) }

func (r *Reel) SetSize(width, height int) { r.width, r.height = width, height }
func (r *Reel) SetTheme(t styles.Theme) { r.theme = t }
func (r *Reel) SetFocused(focused bool) { r.focused = focused }
func (r *Reel) SetEmptyMessage(msg string) { r.emptyMsg = msg }
func (r *Reel) SetLoadingMore(loading bool) { r.loadingMore = loading }

// Cursor returns the index of the item on screen
func (r Reel) Cursor() int { return r.cursor }

// SetCursor moves to the given item, clamped to the loaded range
func (r *Reel) SetCursor(pos int) {
	if len(r.items) == 0 {
		r.cursor = 0
		return
	}
	r.cursor = max(0, min(pos, len(r.items)-1))
}

// ItemsRemaining returns how many items follow the one on screen
func (r Reel) ItemsRemaining() int {
	if len(r.items) == 0 {
		return 0
	}
	return len(r.items) - 1 - r.cursor
}

// SelectedItem returns the item on screen
func (r Reel) SelectedItem() (domain.Item, bool) {
	if r.cursor >= len(r.items) {
		return domain.Item{}, false
	}
	return r.items[r.cursor], true
}

// SetTrailerState records the trailer state for an item
func (r *Reel) SetTrailerState(itemID string, state TrailerState) {
	r.trailerItem = itemID
	r.trailerState = state
}

// TrailerStateFor returns the trailer state if it belongs to itemID
func (r Reel) TrailerStateFor(itemID string) TrailerState {
	if r.trailerItem != itemID {
		return TrailerUnknown
	}
	return r.trailerState
}

// Update handles messages
func (r Reel) Update(msg tea.Msg) (Reel, tea.Cmd) {
	if !r.focused || len(r.items) == 0 {
		return r, nil
	}
	if km, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(km, GridKeys.Down, GridKeys.Right):
			r.SetCursor(r.cursor + 1)
		case key.Matches(km, GridKeys.Up, GridKeys.Left):
			r.SetCursor(r.cursor - 1)
		case key.Matches(km, GridKeys.Home):
			r.cursor = 0
		case key.Matches(km, GridKeys.End):
			r.cursor = len(r.items) - 1
		}
	}
	return r, nil
}

// View renders the component
func (r Reel) View() string {
	style := styles.InactiveBorder
	if r.focused {
		style = r.theme.ActiveBorder
	}
	frameW, frameH := style.GetFrameSize()
	innerW := max(r.width-frameW, 0)
	innerH := max(r.height-frameH, 0)

	content := r.renderItem(max(innerW-4, 10), innerH)
	return style.Width(innerW).Height(innerH).Render(
		lipgloss.Place(innerW, innerH, lipgloss.Center, lipgloss.Center, content),
	)
}

func (r Reel) renderItem(width, height int) string {
	item, ok := r.SelectedItem()
	if !ok {
		return styles.DimStyle.Render(r.emptyMsg)
	}

	var b strings.Builder

	position := fmt.Sprintf("%d / %d", r.cursor+1, len(r.items))
	b.WriteString(styles.DimStyle.Render(position))
	b.WriteString("\n\n")

	b.WriteString(r.theme.HeroStyle.Render(styles.Truncate(item.Title, width)))
	b.WriteString("\n")

	year := item.DisplayYear()
	if year == "" {
		year = "N/A"
	}
	b.WriteString(styles.SubtitleStyle.Render(year))
	b.WriteString("  ")
	b.WriteString(styles.RatingStyle.Render(fmt.Sprintf("★ %.1f", item.VoteAverage)))
	b.WriteString("\n\n")

	// Leave room for the header, meta, trailer line and hints
	maxLines := max(height-10, 1)
	overview := item.Overview
	if overview == "" {
		overview = "No overview available."
	}
	for _, line := range styles.Wrap(overview, width, maxLines) {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(r.trailerLine(item.ID))

	if r.loadingMore && r.ItemsRemaining() == 0 {
		b.WriteString("\n")
		b.WriteString(r.theme.AccentStyle.Render("Loading more..."))
	}

	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(b.String())
}

func (r Reel) trailerLine(itemID string) string {
	switch r.TrailerStateFor(itemID) {
	case TrailerSearching:
		return r.theme.AccentStyle.Render("Searching for trailer...")
	case TrailerReady:
		return styles.SuccessStyle.Render("Trailer found") + styles.DimStyle.Render("  p to play")
	case TrailerPlaying:
		return r.theme.AccentStyle.Render("▶ Playing trailer") + styles.DimStyle.Render("  x to stop")
	case TrailerMissing:
		return styles.DimStyle.Render("No trailer found  t to search YouTube")
	default:
		return styles.DimStyle.Render("p play trailer  t search YouTube")
	}
}
