package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/stormgraph/pkg/selection"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listLastStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
)

// =============================================================================
// Key Bindings
// =============================================================================

// pickerKeys are the cities picker bindings.
type pickerKeys struct {
	Up        key.Binding
	Down      key.Binding
	Toggle    key.Binding
	Select    key.Binding
	ToggleAll key.Binding
	Filter    key.Binding
	Done      key.Binding
	Quit      key.Binding
}

func defaultPickerKeys() pickerKeys {
	return pickerKeys{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle:    key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "toggle")),
		Select:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "select")),
		ToggleAll: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "all/none")),
		Filter:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		Done:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("⏎", "done")),
		Quit:      key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k pickerKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Toggle, k.Select, k.ToggleAll, k.Filter, k.Done, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k pickerKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down}, {k.Toggle, k.Select, k.ToggleAll}, {k.Filter, k.Done, k.Quit}}
}

// =============================================================================
// CityPickerModel - Interactive city selection
// =============================================================================

// CityPickerModel is the bubbletea model for choosing cities. Every key
// press goes through the selection state, so the picker follows the same
// rules as clicks on the live graph.
type CityPickerModel struct {
	State     *selection.State
	Cursor    int
	Offset    int
	Height    int
	Confirmed bool

	keys      pickerKeys
	help      help.Model
	filter    textinput.Model
	filtering bool
	visible   []string
}

// NewCityPickerModel creates a picker over an initialised selection state.
func NewCityPickerModel(state *selection.State) CityPickerModel {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.CharLimit = 50
	ti.Width = 30

	m := CityPickerModel{
		State:  state,
		Height: 15,
		keys:   defaultPickerKeys(),
		help:   help.New(),
		filter: ti,
	}
	m.applyFilter()
	return m
}

func (m CityPickerModel) Init() tea.Cmd {
	return nil
}

func (m CityPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.filtering {
			return m.updateFiltering(msg)
		}
		return m.updateNormal(msg)
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
		m.help.Width = msg.Width
	}
	return m, nil
}

func (m CityPickerModel) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Done):
		m.Confirmed = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.move(-1)
	case key.Matches(msg, m.keys.Down):
		m.move(1)
	case key.Matches(msg, m.keys.Toggle):
		if city, ok := m.current(); ok {
			_ = m.State.Toggle(city)
		}
	case key.Matches(msg, m.keys.Select):
		if city, ok := m.current(); ok {
			_ = m.State.Select(city)
		}
	case key.Matches(msg, m.keys.ToggleAll):
		m.State.ToggleSelectAll()
	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
		m.filter.SetValue("")
		m.filter.Focus()
		m.applyFilter()
	}
	return m, nil
}

func (m CityPickerModel) updateFiltering(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.filtering = false
		m.filter.SetValue("")
		m.filter.Blur()
		m.applyFilter()
		return m, nil
	case "enter":
		m.filtering = false
		m.filter.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return m, cmd
}

// applyFilter recomputes the visible cities and clamps the cursor.
func (m *CityPickerModel) applyFilter() {
	q := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	m.visible = m.visible[:0]
	for _, c := range m.State.AllCities() {
		if q == "" || strings.Contains(strings.ToLower(c), q) {
			m.visible = append(m.visible, c)
		}
	}
	m.Cursor = min(m.Cursor, max(len(m.visible)-1, 0))
	m.Offset = min(m.Offset, m.Cursor)
}

func (m *CityPickerModel) move(delta int) {
	next := m.Cursor + delta
	if next < 0 || next >= len(m.visible) {
		return
	}
	m.Cursor = next
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m CityPickerModel) current() (string, bool) {
	if m.Cursor >= len(m.visible) {
		return "", false
	}
	return m.visible[m.Cursor], true
}

func (m CityPickerModel) View() string {
	var b strings.Builder
	snap := m.State.Snapshot()

	b.WriteString(StyleTitle.Render("Select Cities"))
	b.WriteString("\n")
	if m.filtering || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
	}
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.visible))
	for i := m.Offset; i < end; i++ {
		city := m.visible[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		mark := "[ ]"
		if snap.IsSelected(city) {
			mark = "[x]"
		}
		line := fmt.Sprintf("%s%s %s", cursor, mark, city)
		switch {
		case city == snap.LastSelected:
			b.WriteString(listLastStyle.Render(line))
		case i == m.Cursor:
			b.WriteString(listSelectedStyle.Render(line))
		case snap.IsSelected(city):
			b.WriteString(listNormalStyle.Render(line))
		default:
			b.WriteString(listDimStyle.Render(line))
		}
		b.WriteString("\n")
	}
	if len(m.visible) == 0 {
		b.WriteString(listDimStyle.Render("  no matching cities"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %d of %d selected", len(snap.Selected), len(snap.AllCities))))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}
