package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"

	"github.com/f3rmion/kakha/internal/alphabet"
)

const alphabetCellWidth = 12

var (
	alphabetCellStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#f1faee")).
				Padding(0, 1)

	alphabetCellActiveStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#ffe66d")).
				Background(lipgloss.Color("#2d3436")).
				Padding(0, 1)

	alphabetSearchBoxStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#ffe66d")).
				Padding(0, 1)
)

var alphabetFilters = []struct {
	label    string
	category alphabet.Category
}{
	{label: "All", category: ""},
	{label: "Consonants", category: alphabet.Consonant},
	{label: "Vowels", category: alphabet.Vowel},
}

// AlphabetModel is the letter grid.
type AlphabetModel struct {
	table   *alphabet.Table
	speaker Speaker

	filter   int
	visible  []alphabet.Character
	selected int

	searchInput textinput.Model
	searching   bool
	searchTerm  string

	status   string
	statusID int

	width  int
	height int
}

// NewAlphabetModel creates the grid over table.
func NewAlphabetModel(table *alphabet.Table, speaker Speaker) AlphabetModel {
	ti := textinput.New()
	ti.Placeholder = "ka, water, moon..."
	ti.CharLimit = 32
	ti.Width = 30

	m := AlphabetModel{
		table:       table,
		speaker:     speaker,
		searchInput: ti,
	}
	m.applyFilter()
	return m
}

// SetSize updates the view dimensions.
func (m *AlphabetModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Capturing reports whether keystrokes go to the search box.
func (m AlphabetModel) Capturing() bool {
	return m.searching
}

// Visible returns the characters currently shown.
func (m AlphabetModel) Visible() []alphabet.Character {
	return m.visible
}

// Selected returns the highlighted character.
func (m AlphabetModel) Selected() (alphabet.Character, bool) {
	if m.selected < 0 || m.selected >= len(m.visible) {
		return alphabet.Character{}, false
	}
	return m.visible[m.selected], true
}

// Update handles messages.
func (m AlphabetModel) Update(msg tea.Msg) (AlphabetModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateGrid(msg)

	case SpokeMsg:
		if superseded(msg.Outcome) {
			return m, nil
		}
		m.statusID++
		m.status = fmt.Sprintf("%s  %s", msg.Glyph, outcomeText(msg.Outcome))
		return m, clearStatusAfter(m.statusID, 2*time.Second)

	case clearStatusMsg:
		if msg.id == m.statusID {
			m.status = ""
		}
	}
	return m, nil
}

func (m AlphabetModel) updateSearch(msg tea.KeyMsg) (AlphabetModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searching = false
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		m.searchTerm = ""
		m.applyFilter()
		return m, nil
	case "enter":
		m.searching = false
		m.searchInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	if term := m.searchInput.Value(); term != m.searchTerm {
		m.searchTerm = term
		m.applyFilter()
	}
	return m, cmd
}

func (m AlphabetModel) updateGrid(msg tea.KeyMsg) (AlphabetModel, tea.Cmd) {
	cols := m.columns()
	n := len(m.visible)

	switch msg.String() {
	case "right", "l":
		if m.selected < n-1 {
			m.selected++
		}
	case "left", "h":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected+cols < n {
			m.selected += cols
		}
	case "up", "k":
		if m.selected-cols >= 0 {
			m.selected -= cols
		}
	case "f":
		m.filter = (m.filter + 1) % len(alphabetFilters)
		m.applyFilter()
	case "/":
		m.searching = true
		m.searchInput.Focus()
		return m, textinput.Blink
	case " ":
		if c, ok := m.Selected(); ok {
			return m, SpeakCmd(m.speaker, c.Glyph, CharacterRequest(c))
		}
	case "enter":
		if c, ok := m.Selected(); ok {
			list := append([]alphabet.Character(nil), m.visible...)
			return m, func() tea.Msg { return OpenCharacterMsg{Glyph: c.Glyph, List: list} }
		}
	}
	return m, nil
}

// applyFilter recomputes the visible characters from the category tab
// and the search term.
func (m *AlphabetModel) applyFilter() {
	chars := m.table.Filter(alphabetFilters[m.filter].category)

	if term := strings.TrimSpace(m.searchTerm); term != "" {
		chars = search(chars, term)
	}

	m.visible = chars
	if m.selected >= len(chars) {
		m.selected = max(len(chars)-1, 0)
	}
}

// search ranks chars by fuzzy match against their reading and example
// meanings. An exact glyph match always comes first.
func search(chars []alphabet.Character, term string) []alphabet.Character {
	var out []alphabet.Character
	for _, c := range chars {
		if c.Glyph == term || strings.TrimSuffix(c.Glyph, "་") == term {
			out = append(out, c)
		}
	}
	if len(out) > 0 {
		return out
	}

	source := make([]string, len(chars))
	for i, c := range chars {
		source[i] = strings.ToLower(strings.Join([]string{
			c.Pronunciation, c.ExampleMeaning, c.ExampleMeaningFr,
		}, " "))
	}
	for _, match := range fuzzy.Find(strings.ToLower(term), source) {
		out = append(out, chars[match.Index])
	}
	return out
}

func (m AlphabetModel) columns() int {
	if m.width <= 0 {
		return 3
	}
	return max(1, m.width/alphabetCellWidth)
}

// View renders the grid.
func (m AlphabetModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Alphabet"))
	b.WriteString("  ")
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	if m.searching || m.searchTerm != "" {
		b.WriteString(alphabetSearchBoxStyle.Render(m.searchInput.View()))
		b.WriteString("\n\n")
	}

	if len(m.visible) == 0 {
		b.WriteString(mutedStyle.Render("No letters match " + fmt.Sprintf("%q", m.searchTerm)))
	} else {
		b.WriteString(m.renderGrid())
	}
	b.WriteString("\n\n")

	if m.status != "" {
		b.WriteString(successStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(helpLine("arrows: move", "space: listen", "enter: open", "f: filter", "/: search"))
	return b.String()
}

func (m AlphabetModel) renderTabs() string {
	var tabs []string
	for i, f := range alphabetFilters {
		label := fmt.Sprintf("%s %d", f.label, m.table.Count(f.category))
		if i == m.filter {
			tabs = append(tabs, tabActiveStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m AlphabetModel) renderGrid() string {
	cols := m.columns()
	var rows []string
	var row strings.Builder

	for i, c := range m.visible {
		cell := runewidth.FillRight(c.Glyph, 4) + runewidth.FillRight(c.Pronunciation, alphabetCellWidth-6)
		if i == m.selected {
			row.WriteString(alphabetCellActiveStyle.Render(cell))
		} else {
			row.WriteString(alphabetCellStyle.Render(cell))
		}
		if (i+1)%cols == 0 {
			rows = append(rows, row.String())
			row.Reset()
		}
	}
	if row.Len() > 0 {
		rows = append(rows, row.String())
	}
	return strings.Join(rows, "\n")
}
