package views

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/f3rmion/kakha/internal/alphabet"
	"github.com/f3rmion/kakha/internal/clipboard"
	"github.com/f3rmion/kakha/internal/llm"
	"github.com/f3rmion/kakha/internal/tui/bigchar"
)

var (
	learnProgressStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#888888"))

	learnCategoryStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#1a1a2e")).
				Background(lipgloss.Color("#4ecdc4")).
				Padding(0, 1)

	learnHintStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#FF6B6B")).
			Padding(0, 1).
			Margin(1, 0)

	copiedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a8e6cf")).
			Bold(true)
)

// ErrNoHinter is shown when hints are requested without an API key.
var ErrNoHinter = errors.New("hints need ANTHROPIC_API_KEY")

type hintResultMsg struct {
	glyph    string
	hint     string
	rendered string
	err      error
}

type learnClearCopiedMsg struct{}

// LearnModel is the character detail view.
type LearnModel struct {
	table   *alphabet.Table
	speaker Speaker
	hinter  Hinter
	big     *bigchar.Renderer
	copy    func(string) error

	list    []alphabet.Character
	current int
	lang    string

	hints      map[string]hintResultMsg
	generating bool
	copied     bool
	status     string
	statusID   int

	width  int
	height int
}

// NewLearnModel creates the detail view. hinter and big may be nil.
func NewLearnModel(table *alphabet.Table, speaker Speaker, hinter Hinter, big *bigchar.Renderer, lang string) LearnModel {
	if lang == "" {
		lang = "en"
	}
	return LearnModel{
		table:   table,
		speaker: speaker,
		hinter:  hinter,
		big:     big,
		copy:    clipboard.Write,
		list:    table.All(),
		lang:    lang,
		hints:   make(map[string]hintResultMsg),
	}
}

// SetSize updates the view dimensions.
func (m *LearnModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetCharacter shows glyph, walking list with prev/next. An empty list
// walks the whole table.
func (m *LearnModel) SetCharacter(glyph string, list []alphabet.Character) tea.Cmd {
	if len(list) == 0 {
		list = m.table.All()
	}
	m.list = list
	m.current = 0
	for i, c := range list {
		if c.Glyph == glyph {
			m.current = i
			break
		}
	}
	m.copied = false
	return m.learned()
}

// Current returns the character on screen.
func (m LearnModel) Current() (alphabet.Character, bool) {
	if m.current < 0 || m.current >= len(m.list) {
		return alphabet.Character{}, false
	}
	return m.list[m.current], true
}

// Language returns the meaning language.
func (m LearnModel) Language() string {
	return m.lang
}

func (m LearnModel) learned() tea.Cmd {
	c, ok := m.Current()
	if !ok {
		return nil
	}
	return func() tea.Msg { return LearnedMsg{Glyph: c.Glyph} }
}

// Update handles messages.
func (m LearnModel) Update(msg tea.Msg) (LearnModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.updateKeys(msg)

	case hintResultMsg:
		if msg.glyph != "" {
			m.generating = false
			m.hints[msg.glyph] = msg
		}
		return m, nil

	case SpokeMsg:
		if superseded(msg.Outcome) {
			return m, nil
		}
		m.statusID++
		m.status = outcomeText(msg.Outcome)
		return m, clearStatusAfter(m.statusID, 2*time.Second)

	case clearStatusMsg:
		if msg.id == m.statusID {
			m.status = ""
		}
		return m, nil

	case learnClearCopiedMsg:
		m.copied = false
		return m, nil
	}
	return m, nil
}

func (m LearnModel) updateKeys(msg tea.KeyMsg) (LearnModel, tea.Cmd) {
	c, ok := m.Current()
	if !ok {
		return m, nil
	}

	switch msg.String() {
	case " ", "enter":
		return m, SpeakCmd(m.speaker, c.Glyph, CharacterRequest(c))
	case "e":
		if c.HasExample() {
			return m, SpeakCmd(m.speaker, c.ExampleWord, ExampleRequest(c))
		}
	case "right", "l", "n":
		if m.current < len(m.list)-1 {
			m.current++
			m.copied = false
			return m, m.learned()
		}
	case "left", "h", "p":
		if m.current > 0 {
			m.current--
			m.copied = false
			return m, m.learned()
		}
	case "m":
		m.lang = nextLanguage(m.lang)
	case "g":
		if m.generating {
			return m, nil
		}
		if m.hinter == nil {
			m.hints[c.Glyph] = hintResultMsg{glyph: c.Glyph, err: ErrNoHinter}
			return m, nil
		}
		m.generating = true
		return m, m.generateHint(c)
	case "y":
		text := c.Glyph
		if h, ok := m.hints[c.Glyph]; ok && h.hint != "" {
			text = c.Glyph + "\n\n" + h.hint
		}
		if err := m.copy(text); err == nil {
			m.copied = true
			return m, tea.Tick(2*time.Second, func(time.Time) tea.Msg { return learnClearCopiedMsg{} })
		}
	}
	return m, nil
}

func (m LearnModel) generateHint(c alphabet.Character) tea.Cmd {
	hinter := m.hinter
	width := m.hintWidth()
	req := llm.HintRequest{
		Glyph:          c.Glyph,
		Pronunciation:  c.Pronunciation,
		Category:       string(c.Category),
		ExampleWord:    c.ExampleWord,
		ExampleMeaning: c.ExampleMeaning,
		Language:       m.lang,
	}

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		hint, err := hinter.GenerateHint(ctx, req)
		if err != nil {
			return hintResultMsg{glyph: c.Glyph, err: err}
		}
		return hintResultMsg{glyph: c.Glyph, hint: hint, rendered: renderMarkdown(hint, width)}
	}
}

func (m LearnModel) hintWidth() int {
	width := 70
	if m.width > 0 && m.width-10 < width {
		width = max(m.width-10, 20)
	}
	return width
}

// renderMarkdown renders a hint for the terminal, falling back to plain
// wrapped text.
func renderMarkdown(md string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return wrap(md, width)
	}
	out, err := r.Render(md)
	if err != nil {
		return wrap(md, width)
	}
	return strings.Trim(out, "\n")
}

// View renders the detail view.
func (m LearnModel) View() string {
	c, ok := m.Current()
	if !ok {
		return helpStyle.Render("No letters to show")
	}

	contentWidth := max(m.width-4, 40)
	var b strings.Builder

	b.WriteString(learnProgressStyle.Render(fmt.Sprintf("Letter %d of %d", m.current+1, len(m.list))))
	b.WriteString("\n\n")

	glyph := glyphStyle.Render(c.Glyph)
	if art := m.big.Render(c.Glyph, 24, 10); art != "" {
		glyph = pronunciationStyle.Render(art)
	}
	b.WriteString(centered(contentWidth, lipgloss.JoinVertical(lipgloss.Center,
		glyph,
		pronunciationStyle.Render(c.Pronunciation),
		learnCategoryStyle.Render(string(c.Category)),
	)))
	b.WriteString("\n\n")

	if c.HasExample() {
		var rows []string
		rows = append(rows, renderRow("Example:", c.ExampleWord))
		if mean := meaning(c, m.lang); mean != "" {
			rows = append(rows, renderRow("Meaning:", wrap(mean, contentWidth-20)))
		}
		if c.ImagePath != "" {
			rows = append(rows, renderRow("Picture:", mutedStyle.Render(c.ImagePath)))
		}
		b.WriteString(boxStyle.Render(subtitleStyle.Render("Example word") + "\n\n" + strings.Join(rows, "\n")))
		b.WriteString("\n")
	}

	b.WriteString(m.renderHint(c))

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(successStyle.Render(m.status))
	}

	b.WriteString("\n\n")
	items := []string{"space: listen"}
	if c.HasExample() {
		items = append(items, "e: example")
	}
	items = append(items, "←/→: prev/next", "m: "+strings.ToUpper(m.lang), "g: hint", "y: copy")
	b.WriteString(helpLine(items...))
	return b.String()
}

func (m LearnModel) renderHint(c alphabet.Character) string {
	if m.generating {
		return "\n" + loadingStyle.Render("Thinking of a hint...")
	}
	h, ok := m.hints[c.Glyph]
	if !ok {
		if m.copied {
			return "\n" + copiedStyle.Render("Copied!")
		}
		return ""
	}
	if h.err != nil {
		return "\n" + errorStyle.Render(h.err.Error())
	}

	header := subtitleStyle.Render("Memory hint")
	if m.copied {
		header += "  " + copiedStyle.Render("Copied!")
	}
	body := h.rendered
	if body == "" {
		body = wrap(h.hint, m.hintWidth()-4)
	}
	return learnHintStyle.Width(m.hintWidth()).Render(header + "\n" + body)
}
