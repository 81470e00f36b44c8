package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"github.com/mmcdole/neurostream/internal/domain"
	"github.com/mmcdole/neurostream/internal/tui/styles"
)

// titleSource implements fuzzy.Source over lowercase item titles
type titleSource []string

func (t titleSource) String(i int) string { return t[i] }
func (t titleSource) Len() int            { return len(t) }

// itemFilter narrows the loaded items by title. It only changes what a view
// shows; the underlying items are never touched.
type itemFilter struct {
	active  bool
	input   textinput.Model
	query   string
	indexes []int // indices into the item slice, nil = unfiltered
}

func newItemFilter() itemFilter {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.TitleStyle
	ti.CharLimit = 80
	return itemFilter{input: ti}
}

func (f *itemFilter) open() {
	f.active = true
	f.input.Focus()
}

func (f *itemFilter) clear() {
	f.active = false
	f.query = ""
	f.indexes = nil
	f.input.SetValue("")
	f.input.Blur()
}

func (f itemFilter) typing() bool {
	return f.active && f.input.Focused()
}

// apply recomputes matches for the current input against items
func (f *itemFilter) apply(items []domain.Item) {
	f.query = f.input.Value()
	if f.query == "" {
		f.indexes = nil
		return
	}

	titles := make(titleSource, len(items))
	for i, it := range items {
		titles[i] = strings.ToLower(it.Title)
	}
	matches := fuzzy.FindFrom(strings.ToLower(f.query), titles)

	f.indexes = make([]int, len(matches))
	for i, m := range matches {
		f.indexes[i] = m.Index
	}
}

// count returns the number of visible items
func (f itemFilter) count(total int) int {
	if f.indexes != nil {
		return len(f.indexes)
	}
	return total
}

// mapIndex maps a visible position to an index in the item slice
func (f itemFilter) mapIndex(i int) int {
	if f.indexes != nil && i < len(f.indexes) {
		return f.indexes[i]
	}
	return i
}

// update handles keys while the filter input is focused. It reports whether
// the matches may have changed.
func (f *itemFilter) update(msg tea.Msg) (bool, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "esc":
			f.clear()
			return true, nil
		case "enter":
			// Accept filter, blur input to allow navigation
			f.input.Blur()
			return false, nil
		case "backspace":
			if f.input.Value() == "" {
				f.clear()
				return true, nil
			}
		}
	}
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return true, cmd
}

func (f itemFilter) view(total int) string {
	out := f.input.View()
	if f.query != "" {
		out += styles.DimStyle.Render(fmt.Sprintf(" [%d/%d]", f.count(total), total))
	}
	return out
}
