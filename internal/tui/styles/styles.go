package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Color palette
var (
	NeuroRed   = lipgloss.Color("#e50914") // movies accent
	NeuroCyan  = lipgloss.Color("#00ffcc") // games accent
	Ink        = lipgloss.Color("#141414")
	SlateDark  = lipgloss.Color("#1F2937")
	SlateLight = lipgloss.Color("#374151")
	DimGray    = lipgloss.Color("#6B7280")
	LightGray  = lipgloss.Color("#9CA3AF")
	White      = lipgloss.Color("#F9FAFB")
	Gold       = lipgloss.Color("#F5C518")
	Green      = lipgloss.Color("#10B981")
	Red        = lipgloss.Color("#EF4444")
)

// Theme carries the styles that follow the active category's accent
type Theme struct {
	Accent lipgloss.Color

	AccentStyle     lipgloss.Style
	ActiveBorder    lipgloss.Style
	CardSelected    lipgloss.Style
	TabActive       lipgloss.Style
	HeroStyle       lipgloss.Style
	ModalStyle      lipgloss.Style
	PromptStyle     lipgloss.Style
	SuggestSelected lipgloss.Style
	SpinnerStyle    lipgloss.Style
}

// NewTheme builds a theme around an accent color
func NewTheme(accent lipgloss.Color) Theme {
	return Theme{
		Accent:      accent,
		AccentStyle: lipgloss.NewStyle().Foreground(accent),
		ActiveBorder: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent),
		CardSelected: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1),
		TabActive: lipgloss.NewStyle().
			Foreground(Ink).
			Background(accent).
			Bold(true).
			Padding(0, 2),
		HeroStyle: lipgloss.NewStyle().
			Foreground(White).
			Bold(true),
		ModalStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 2).
			Background(SlateDark),
		PromptStyle: lipgloss.NewStyle().
			Foreground(accent).
			Bold(true),
		SuggestSelected: lipgloss.NewStyle().
			Foreground(Ink).
			Background(accent).
			Padding(0, 1),
		SpinnerStyle: lipgloss.NewStyle().Foreground(accent),
	}
}

// Prebuilt themes per category
var (
	MoviesTheme = NewTheme(NeuroRed)
	GamesTheme  = NewTheme(NeuroCyan)
)

// Borders
var (
	InactiveBorder = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(DimGray)
)

// Text styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(LightGray)

	DimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Green)

	RatingStyle = lipgloss.NewStyle().
			Foreground(Gold)

	LabelStyle = lipgloss.NewStyle().
			Foreground(DimGray).
			Width(12)
)

// Tab and chip styles
var (
	TabInactive = lipgloss.NewStyle().
			Foreground(LightGray).
			Padding(0, 2)

	ChipStyle = lipgloss.NewStyle().
			Foreground(LightGray).
			Background(SlateLight).
			Padding(0, 1)
)

// Card style for grid cells
var (
	CardStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(SlateLight).
		Padding(0, 1)
)

// Help styles
var (
	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(DimGray)
)

// Helper functions

// Truncate shortens s to the given display width, adding an ellipsis when cut
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 3 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, "...")
}

// Pad pads or cuts s to exactly the given display width
func Pad(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return runewidth.Truncate(s, width, "")
	}
	return s + strings.Repeat(" ", width-w)
}

// Wrap word-wraps text to width and returns at most maxLines lines.
// The last kept line gets an ellipsis when text was dropped.
func Wrap(text string, width, maxLines int) []string {
	if width <= 0 {
		return nil
	}
	var lines []string
	var line string
	for _, word := range strings.Fields(text) {
		switch {
		case line == "":
			line = word
		case runewidth.StringWidth(line)+1+runewidth.StringWidth(word) <= width:
			line += " " + word
		default:
			lines = append(lines, Truncate(line, width))
			line = word
		}
	}
	if line != "" {
		lines = append(lines, Truncate(line, width))
	}
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[:maxLines]
		lines[maxLines-1] = Truncate(lines[maxLines-1]+" ...", width)
	}
	return lines
}
