package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/neurostream/internal/domain"
	"github.com/mmcdole/neurostream/internal/tui/styles"
)

// TabStatus is the load state shown next to a tab label
type TabStatus int

const (
	TabIdle TabStatus = iota
	TabLoading
	TabLoaded
	TabExhausted
	TabError
)

// TabInfo is what the bar knows about one category
type TabInfo struct {
	Status TabStatus
	Count  int
}

// Spinner frames for the loading indicator
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// TabBar shows the category tabs and the active view mode
type TabBar struct {
	active  domain.Category
	info    map[domain.Category]TabInfo
	view    string
	frame   int
	width   int
	theme   styles.Theme
	version string
}

// NewTabBar creates a tab bar with active selected
func NewTabBar(active domain.Category, version string) TabBar {
	return TabBar{
		active:  active,
		info:    make(map[domain.Category]TabInfo),
		theme:   styles.MoviesTheme,
		version: version,
	}
}

func (t *TabBar) SetActive(c domain.Category) { t.active = c }
func (t *TabBar) SetTheme(th styles.Theme) { t.theme = th }
func (t *TabBar) SetWidth(width int) { t.width = width }
func (t *TabBar) SetViewLabel(label string) { t.view = label }

// SetInfo updates the status of one tab
func (t *TabBar) SetInfo(c domain.Category, info TabInfo) {
	t.info[c] = info
}

// Info returns the status of one tab
func (t TabBar) Info(c domain.Category) TabInfo {
	return t.info[c]
}

// Tick advances the loading animation
func (t *TabBar) Tick() {
	t.frame++
}

// View renders the bar
func (t TabBar) View() string {
	logo := styles.TitleStyle.Render("NEURO") + t.theme.AccentStyle.Bold(true).Render("STREAM")

	tabs := make([]string, 0, len(domain.Categories))
	for i, c := range domain.Categories {
		label := fmt.Sprintf("%d %s%s", i+1, c.Label(), t.suffix(c))
		if c == t.active {
			tabs = append(tabs, t.theme.TabActive.Render(label))
		} else {
			tabs = append(tabs, styles.TabInactive.Render(label))
		}
	}

	left := logo + "  " + strings.Join(tabs, " ")
	right := styles.DimStyle.Render(t.view)
	if t.version != "" {
		right += styles.DimStyle.Render("  v" + t.version)
	}

	gap := t.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + right
}

func (t TabBar) suffix(c domain.Category) string {
	info := t.info[c]
	switch info.Status {
	case TabLoading:
		return " " + spinnerFrames[t.frame%len(spinnerFrames)]
	case TabLoaded:
		return fmt.Sprintf(" (%d)", info.Count)
	case TabExhausted:
		return fmt.Sprintf(" (%d ✓)", info.Count)
	case TabError:
		return " ✗"
	default:
		return ""
	}
}
