package views

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/f3rmion/kakha/internal/tui/bigchar"
)

var (
	homeGreetingStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FF6B6B"))

	homeActionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3d5a80")).
			Padding(0, 2).
			Width(36)

	homeActionActiveStyle = homeActionStyle.
				BorderForeground(lipgloss.Color("#ffe66d")).
				Bold(true)

	homeGoalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#a8e6cf")).
			Padding(0, 2).
			Width(36)
)

type homeAction struct {
	title string
	desc  string
	page  Page
}

var homeActions = []homeAction{
	{title: "Start Learning", desc: "Learn the alphabet and words", page: PageAlphabet},
	{title: "Play Games", desc: "Test your knowledge", page: PageQuiz},
}

// HomeModel is the start page.
type HomeModel struct {
	big      *bigchar.Renderer
	goal     int
	learned  map[string]bool
	selected int

	width  int
	height int
}

// NewHomeModel creates the home page. goal is the number of letters to
// look at per session; zero hides the goal.
func NewHomeModel(big *bigchar.Renderer, goal int) HomeModel {
	return HomeModel{
		big:     big,
		goal:    goal,
		learned: make(map[string]bool),
	}
}

// SetSize updates the view dimensions.
func (m *HomeModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Learned returns how many distinct letters were looked at.
func (m HomeModel) Learned() int {
	return len(m.learned)
}

// Update handles messages.
func (m HomeModel) Update(msg tea.Msg) (HomeModel, tea.Cmd) {
	switch msg := msg.(type) {
	case LearnedMsg:
		m.learned[msg.Glyph] = true

	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			m.selected = min(m.selected+1, len(homeActions)-1)
		case "k", "up":
			m.selected = max(m.selected-1, 0)
		case "enter", " ":
			page := homeActions[m.selected].page
			return m, func() tea.Msg { return NavigateMsg{Page: page} }
		}
	}
	return m, nil
}

// View renders the home page.
func (m HomeModel) View() string {
	var b strings.Builder

	if art := m.big.Render("ཀ", 16, 7); art != "" {
		b.WriteString(pronunciationStyle.Render(art))
	} else {
		b.WriteString(glyphStyle.Render("ཀ"))
	}
	b.WriteString("\n\n")
	b.WriteString(homeGreetingStyle.Render("Tashi Delek!"))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("Ready to learn the beautiful Tibetan language?"))
	b.WriteString("\n\n")

	for i, a := range homeActions {
		style := homeActionStyle
		if i == m.selected {
			style = homeActionActiveStyle
		}
		b.WriteString(style.Render(a.title + "\n" + mutedStyle.Render(a.desc)))
		b.WriteString("\n")
	}

	if m.goal > 0 {
		b.WriteString("\n")
		b.WriteString(homeGoalStyle.Render(m.goalText()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpLine("↑/↓: choose", "enter: open"))
	return b.String()
}

func (m HomeModel) goalText() string {
	done := len(m.learned)
	if done >= m.goal {
		return successStyle.Render("Daily Goal") + "\n" +
			fmt.Sprintf("You looked at %d letters today. Well done!", done)
	}
	return successStyle.Render("Daily Goal") + "\n" +
		fmt.Sprintf("Learn %d new letters today! (%d/%d)", m.goal, done, m.goal)
}
