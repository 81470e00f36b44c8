package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/neurostream/internal/domain"
	"github.com/mmcdole/neurostream/internal/tui/styles"
)

// Modal layout constants
const (
	DetailsMaxWidth    = 90
	DetailsMarginX     = 4
	DetailsMarginY     = 2
	detailsHeaderLines = 4 // title, meta line, blank, scroll hint
)

// Details is the modal showing one item and its supplementary record.
// It opens with the item's own fields and fills in the rest when the
// detail lookup for that same item arrives.
type Details struct {
	visible  bool
	item     domain.Item
	category domain.Category
	detail   *domain.Detail
	loading  bool
	failed   bool

	viewport viewport.Model
	theme    styles.Theme

	width  int
	height int
}

// NewDetails creates a new details modal
func NewDetails() Details {
	return Details{
		viewport: viewport.New(0, 0),
		theme:    styles.MoviesTheme,
	}
}

// Show opens the modal for item with only its passive fields filled in
func (d *Details) Show(item domain.Item, category domain.Category) {
	d.visible = true
	d.item = item
	d.category = category
	d.detail = nil
	d.loading = true
	d.failed = false
	d.refresh()
	d.viewport.GotoTop()
}

// SetDetail applies a detail record. It reports false and changes nothing
// when the modal is closed or now shows a different item.
func (d *Details) SetDetail(itemID string, detail domain.Detail) bool {
	if !d.visible || d.item.ID != itemID {
		return false
	}
	d.detail = &detail
	d.loading = false
	d.refresh()
	return true
}

// SetFailed marks the lookup for itemID as failed; placeholders stay in place
func (d *Details) SetFailed(itemID string) bool {
	if !d.visible || d.item.ID != itemID {
		return false
	}
	d.loading = false
	d.failed = true
	d.refresh()
	return true
}

// Hide closes the modal
func (d *Details) Hide() {
	d.visible = false
	d.detail = nil
	d.loading = false
}

// IsVisible returns whether the modal is open
func (d Details) IsVisible() bool { return d.visible }

// Item returns the item the modal shows
func (d Details) Item() domain.Item { return d.item }

// Category returns the category of the shown item
func (d Details) Category() domain.Category { return d.category }

// Loading reports whether the detail lookup is still outstanding
func (d Details) Loading() bool { return d.loading }

// SetTheme switches the accent styles
func (d *Details) SetTheme(t styles.Theme) {
	d.theme = t
}

// SetSize updates the available screen size
func (d *Details) SetSize(width, height int) {
	d.width = width
	d.height = height
	w, h := d.innerSize()
	d.viewport.Width = w
	d.viewport.Height = max(h-detailsHeaderLines, 1)
	d.refresh()
}

func (d Details) innerSize() (int, int) {
	frameW, frameH := d.theme.ModalStyle.GetFrameSize()
	w := min(d.width-2*DetailsMarginX, DetailsMaxWidth) - frameW
	h := d.height - 2*DetailsMarginY - frameH
	return max(w, 20), max(h, 5)
}

func (d *Details) refresh() {
	d.viewport.SetContent(d.renderBody(d.viewport.Width))
}

// Update scrolls the body
func (d Details) Update(msg tea.Msg) (Details, tea.Cmd) {
	if !d.visible {
		return d, nil
	}
	var cmd tea.Cmd
	d.viewport, cmd = d.viewport.Update(msg)
	return d, cmd
}

// View renders the modal box (the caller centers it)
func (d Details) View() string {
	if !d.visible {
		return ""
	}
	w, _ := d.innerSize()

	var b strings.Builder
	title := d.item.Title
	if d.detail != nil && d.detail.Title != "" {
		title = d.detail.Title
	}
	b.WriteString(d.theme.HeroStyle.Render(styles.Truncate(title, w)))
	b.WriteString("\n")
	b.WriteString(d.metaLine())
	b.WriteString("\n\n")
	b.WriteString(d.viewport.View())
	b.WriteString("\n")

	hint := "j/k scroll  t YouTube trailer  p play  esc close"
	if d.viewport.TotalLineCount() > d.viewport.Height {
		hint = fmt.Sprintf("%3.f%%  %s", d.viewport.ScrollPercent()*100, hint)
	}
	b.WriteString(styles.DimStyle.Render(styles.Truncate(hint, w)))

	return d.theme.ModalStyle.Width(w).Render(b.String())
}

func (d Details) metaLine() string {
	year := d.item.DisplayYear()
	if d.detail != nil && d.detail.Year > 0 {
		year = fmt.Sprintf("%d", d.detail.Year)
	}
	if year == "" {
		year = "N/A"
	}
	rating := d.item.VoteAverage
	if d.detail != nil && d.detail.VoteAverage > 0 {
		rating = d.detail.VoteAverage
	}
	parts := []string{
		styles.SubtitleStyle.Render(year),
		styles.RatingStyle.Render(fmt.Sprintf("★ %.1f", rating)),
	}
	if d.detail != nil {
		if rt := d.detail.FormattedRuntime(); rt != "" {
			parts = append(parts, styles.SubtitleStyle.Render(rt))
		}
		if len(d.detail.Genres) > 0 {
			parts = append(parts, styles.DimStyle.Render(strings.Join(d.detail.Genres, ", ")))
		}
	}
	return strings.Join(parts, styles.DimStyle.Render(" · "))
}

func (d Details) renderBody(width int) string {
	if width <= 0 {
		return ""
	}
	var b strings.Builder

	if d.detail != nil && d.detail.Tagline != "" {
		b.WriteString(d.theme.AccentStyle.Italic(true).Render(d.detail.Tagline))
		b.WriteString("\n\n")
	}

	overview := d.item.Overview
	if d.detail != nil && d.detail.Overview != "" {
		overview = d.detail.Overview
	}
	if overview == "" {
		overview = "No overview available."
	}
	b.WriteString(strings.Join(styles.Wrap(overview, width, 0), "\n"))
	b.WriteString("\n\n")

	switch {
	case d.loading:
		b.WriteString(d.theme.AccentStyle.Render("Loading details..."))
		return b.String()
	case d.failed || d.detail == nil:
		b.WriteString(styles.DimStyle.Render("Details unavailable."))
		return b.String()
	}

	rows := movieRows(*d.detail)
	if d.category == domain.CategoryGames {
		rows = gameRows(*d.detail)
	}
	for _, r := range rows {
		b.WriteString(styles.LabelStyle.Render(r[0]))
		b.WriteString(styles.Truncate(r[1], max(width-12, 1)))
		b.WriteString("\n")
	}

	if d.category != domain.CategoryGames {
		b.WriteString("\n")
		b.WriteString(styles.TitleStyle.Render("Cast"))
		b.WriteString("\n")
		b.WriteString(strings.Join(styles.Wrap(castText(d.detail.Cast), width, 0), "\n"))
	}
	return b.String()
}

func movieRows(detail domain.Detail) [][2]string {
	return [][2]string{
		{"Status", orDefault(detail.Status, "Released")},
		{"Runtime", orDefault(detail.FormattedRuntime(), "N/A")},
		{"Budget", FormatMoney(detail.Budget)},
		{"Revenue", FormatMoney(detail.Revenue)},
		{"Language", orDefault(strings.ToUpper(detail.OriginalLanguage), "N/A")},
		{"Studio", firstOr(detail.Companies, "N/A")},
		{"Director", joinOr(detail.Director, "N/A")},
		{"Music", joinOr(detail.Music, "N/A")},
		{"Collection", orDefault(detail.Collection, "N/A")},
		{"Streaming", joinOr(detail.Providers, "N/A")},
		{"Link", orDefault(detail.Link, "N/A")},
	}
}

func gameRows(detail domain.Detail) [][2]string {
	rating := "N/A"
	if detail.VoteAverage > 0 {
		rating = fmt.Sprintf("%.1f / 10", detail.VoteAverage)
		if detail.VoteCount > 0 {
			rating += fmt.Sprintf(" (%d votes)", detail.VoteCount)
		}
	}
	return [][2]string{
		{"Developer", orDefault(detail.Developer, "Unknown")},
		{"Publisher", orDefault(detail.Publisher, "Unknown")},
		{"Rating", rating},
	}
}

// FormatMoney renders a dollar amount in millions, or "N/A" when unknown
func FormatMoney(amount int64) string {
	if amount <= 0 {
		return "N/A"
	}
	return fmt.Sprintf("$%.1fM", float64(amount)/1_000_000)
}

func castText(cast []string) string {
	if len(cast) == 0 {
		return "Unavailable"
	}
	return strings.Join(cast, ", ")
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func firstOr(list []string, fallback string) string {
	if len(list) == 0 {
		return fallback
	}
	return list[0]
}

func joinOr(list []string, fallback string) string {
	if len(list) == 0 {
		return fallback
	}
	return strings.Join(list, ", ")
}

// PlaceOverlay centers the modal over the given screen size
func PlaceOverlay(width, height int, modal string) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, modal,
		lipgloss.WithWhitespaceChars(" "))
}
