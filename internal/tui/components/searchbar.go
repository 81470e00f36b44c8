package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/neurostream/internal/domain"
	"github.com/mmcdole/neurostream/internal/tui/styles"
)

// HeroTitle returns the headline shown above the search bar
func HeroTitle(category domain.Category) string {
	if category == domain.CategoryGames {
		return "What are we playing today?"
	}
	return "Find your next obsession."
}

// Placeholder returns the search input placeholder
func Placeholder(category domain.Category) string {
	if category == domain.CategoryGames {
		return "E.g., 'Open world RPG with story'..."
	}
	return "Describe the vibe (e.g. 'Dark sci-fi')..."
}

// EmptyStateText returns the text shown before anything has been loaded
func EmptyStateText(category domain.Category) string {
	if category == domain.CategoryGames {
		return "Enter a game vibe to start."
	}
	return "Enter a mood above to start streaming."
}

// SearchBar holds the live query and offers suggestions below it
type SearchBar struct {
	input       textinput.Model
	category    domain.Category
	suggestions []string
	selected    int // -1 = typed text, otherwise index into suggestions
	prevValue   string

	width int
	theme styles.Theme
}

// NewSearchBar creates a search bar for category
func NewSearchBar(category domain.Category) SearchBar {
	ti := textinput.New()
	ti.CharLimit = 200
	ti.Prompt = "❯ "
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	ti.PlaceholderStyle = styles.DimStyle

	s := SearchBar{input: ti, selected: -1}
	s.SetCategory(category)
	return s
}

// SetCategory switches placeholder and colors to category
func (s *SearchBar) SetCategory(category domain.Category) {
	s.category = category
	s.input.Placeholder = Placeholder(category)
	s.selected = -1
}

// SetTheme switches the accent styles
func (s *SearchBar) SetTheme(t styles.Theme) {
	s.theme = t
	s.input.PromptStyle = t.PromptStyle
	s.input.Cursor.Style = t.AccentStyle
}

// SetWidth updates the component width
func (s *SearchBar) SetWidth(width int) {
	s.width = width
	s.input.Width = max(width-6, 10)
}

// Focus gives the input keyboard focus
func (s *SearchBar) Focus() tea.Cmd {
	return s.input.Focus()
}

// Blur removes keyboard focus
func (s *SearchBar) Blur() {
	s.input.Blur()
	s.selected = -1
}

// Focused reports whether the input has focus
func (s SearchBar) Focused() bool {
	return s.input.Focused()
}

// Value returns the text in the input
func (s SearchBar) Value() string {
	return s.input.Value()
}

// SetValue replaces the text in the input
func (s *SearchBar) SetValue(v string) {
	s.input.SetValue(v)
	s.input.CursorEnd()
	s.prevValue = v
	s.selected = -1
}

// SetSuggestions replaces the offered suggestions
func (s *SearchBar) SetSuggestions(list []string) {
	s.suggestions = list
	if s.selected >= len(list) {
		s.selected = -1
	}
}

// Suggestions returns the offered suggestions
func (s SearchBar) Suggestions() []string {
	return s.suggestions
}

// Accept resolves the query to submit: the highlighted suggestion if any,
// otherwise the typed text. The input is updated to match.
func (s *SearchBar) Accept() string {
	if s.selected >= 0 && s.selected < len(s.suggestions) {
		s.SetValue(s.suggestions[s.selected])
	}
	return strings.TrimSpace(s.input.Value())
}

// ValueChanged reports whether the text changed since the last call
func (s *SearchBar) ValueChanged() bool {
	v := s.input.Value()
	if v != s.prevValue {
		s.prevValue = v
		return true
	}
	return false
}

// Update handles keys while focused
func (s SearchBar) Update(msg tea.Msg) (SearchBar, tea.Cmd) {
	if !s.input.Focused() {
		return s, nil
	}
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "down", "ctrl+n":
			if len(s.suggestions) > 0 {
				s.selected = (s.selected + 1) % len(s.suggestions)
			}
			return s, nil
		case "up", "ctrl+p":
			if len(s.suggestions) > 0 {
				s.selected--
				if s.selected < -1 {
					s.selected = len(s.suggestions) - 1
				}
			}
			return s, nil
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	if s.ValueChanged() {
		s.selected = -1
	}
	return s, cmd
}

// View renders the hero line, the input and the suggestion chips
func (s SearchBar) View() string {
	var b strings.Builder

	b.WriteString(s.theme.HeroStyle.Render(HeroTitle(s.category)))
	b.WriteString("\n")

	box := styles.InactiveBorder
	if s.input.Focused() {
		box = s.theme.ActiveBorder
	}
	frameW, _ := box.GetFrameSize()
	b.WriteString(box.Width(max(s.width-frameW, 0)).Render(s.input.View()))
	b.WriteString("\n")

	b.WriteString(s.renderChips())
	return b.String()
}

func (s SearchBar) renderChips() string {
	chips := []string{styles.DimStyle.Render("Try:")}
	used := runeWidth(chips[0])
	for i, text := range s.suggestions {
		style := styles.ChipStyle
		if i == s.selected {
			style = s.theme.SuggestSelected
		}
		chip := style.Render(styles.Truncate(text, 32))
		w := runeWidth(chip) + 1
		if s.width > 0 && used+w > s.width-len(" S surprise me")-2 {
			break
		}
		chips = append(chips, chip)
		used += w
	}
	chips = append(chips, s.theme.AccentStyle.Render("S surprise me"))
	return strings.Join(chips, " ")
}

func runeWidth(s string) int {
	return lipgloss.Width(s)
}
